package mattershandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"defensoria/internal/domain/audit"
	"defensoria/internal/domain/auth"
	"defensoria/internal/domain/matters"
	"defensoria/internal/transport/http/api"
	"defensoria/internal/transport/http/middleware"
	"defensoria/internal/transport/http/shared"
)

type Handler struct {
	Service *matters.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
}

func NewHandler(service *matters.Service, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/matters", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermMattersRead, h.Perms)).Get("/critical", h.handleCritical)
		r.With(middleware.RequirePermission(auth.PermMattersRead, h.Perms)).Get("/statistics", h.handleStatistics)
		r.With(middleware.RequirePermission(auth.PermMattersRead, h.Perms)).Get("/{matterID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermMattersWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermMattersWrite, h.Perms)).Put("/{matterID}", h.handleUpdate)
	})
}

// parseFilter reads the listing filters shared by the critical and
// statistics endpoints. On a bad value it writes the failure response
// and reports false.
func (h *Handler) parseFilter(w http.ResponseWriter, r *http.Request) (matters.Filter, bool) {
	q := r.URL.Query()
	filter := matters.Filter{
		IncludeOverdue: q.Get("includeOverdue") != "false",
		OnlyDetained:   q.Get("onlyDetained") == "true",
		DefenderID:     q.Get("defenderId"),
		AreaOfLaw:      q.Get("areaOfLaw"),
	}
	if raw := q.Get("lookaheadDays"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			api.Fail(w, http.StatusBadRequest, "invalid_lookahead", "lookaheadDays must be a positive number", middleware.GetRequestID(r.Context()))
			return matters.Filter{}, false
		}
		filter.LookaheadDays = days
	}
	if raw := q.Get("status"); raw != "" {
		for _, status := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(status); trimmed != "" {
				filter.Statuses = append(filter.Statuses, strings.ToUpper(trimmed))
			}
		}
	}
	return filter, true
}

func (h *Handler) handleCritical(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	classified, err := h.Service.Critical(r.Context(), user.TenantID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "matters_critical_failed", "failed to classify matters", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, classified, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	summary, err := h.Service.Statistics(r.Context(), user.TenantID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "matters_statistics_failed", "failed to compute statistics", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	m, err := h.Service.Get(r.Context(), user.TenantID, chi.URLParam(r, "matterID"))
	if errors.Is(err, matters.ErrMatterNotFound) {
		api.Fail(w, http.StatusNotFound, "matter_not_found", "matter not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "matter_get_failed", "failed to load matter", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, m, middleware.GetRequestID(r.Context()))
}

type matterRequest struct {
	CaseNumber         string `json:"caseNumber"`
	DefendantName      string `json:"defendantName"`
	AreaOfLaw          string `json:"areaOfLaw"`
	Status             string `json:"status"`
	Detained           bool   `json:"detained"`
	DueDate            string `json:"dueDate"`
	DeadlineType       string `json:"deadlineType"`
	AssignedDefenderID string `json:"assignedDefenderId"`
}

func (h *Handler) parseMatter(w http.ResponseWriter, r *http.Request) (matters.Matter, bool) {
	var payload matterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return matters.Matter{}, false
	}

	v := shared.NewValidator()
	v.Required("caseNumber", payload.CaseNumber, "case number is required")
	v.Required("defendantName", payload.DefendantName, "defendant name is required")
	v.Enum("status", payload.Status, []string{matters.StatusOpen, matters.StatusSuspended, matters.StatusArchived}, "unknown status")
	m := matters.Matter{
		CaseNumber:         payload.CaseNumber,
		DefendantName:      payload.DefendantName,
		AreaOfLaw:          strings.ToUpper(strings.TrimSpace(payload.AreaOfLaw)),
		Status:             strings.ToUpper(strings.TrimSpace(payload.Status)),
		Detained:           payload.Detained,
		DeadlineType:       payload.DeadlineType,
		AssignedDefenderID: payload.AssignedDefenderID,
	}
	if payload.DueDate != "" {
		if due, ok := v.Date("dueDate", payload.DueDate); ok {
			m.DueDate = &due
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return matters.Matter{}, false
	}
	return m, true
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	m, ok := h.parseMatter(w, r)
	if !ok {
		return
	}

	id, err := h.Service.Create(r.Context(), user.TenantID, m)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "matter_create_failed", "failed to create matter", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionCreate, "matter", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, m); err != nil {
		slog.Warn("audit matter create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	m, ok := h.parseMatter(w, r)
	if !ok {
		return
	}

	matterID := chi.URLParam(r, "matterID")
	err := h.Service.Update(r.Context(), user.TenantID, matterID, m)
	if errors.Is(err, matters.ErrMatterNotFound) {
		api.Fail(w, http.StatusNotFound, "matter_not_found", "matter not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "matter_update_failed", "failed to update matter", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionUpdate, "matter", matterID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, m); err != nil {
		slog.Warn("audit matter update failed", "err", err)
	}
	api.Success(w, map[string]string{"id": matterID}, middleware.GetRequestID(r.Context()))
}
