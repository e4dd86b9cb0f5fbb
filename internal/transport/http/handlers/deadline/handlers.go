package deadlinehandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"defensoria/internal/domain/audit"
	"defensoria/internal/domain/auth"
	"defensoria/internal/domain/deadline"
	"defensoria/internal/domain/matters"
	"defensoria/internal/platform/metrics"
	"defensoria/internal/transport/http/api"
	"defensoria/internal/transport/http/middleware"
	"defensoria/internal/transport/http/shared"
)

type Handler struct {
	Service *deadline.Service
	Matters *matters.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
	Metrics *metrics.Collector
}

func NewHandler(service *deadline.Service, mattersSvc *matters.Service, perms middleware.PermissionStore, auditSvc *audit.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Matters: mattersSvc, Perms: perms, Audit: auditSvc, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/deadline-types", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermCatalogRead, h.Perms)).Get("/", h.handleListTypes)
		r.With(middleware.RequirePermission(auth.PermCatalogRead, h.Perms)).Get("/{idOrCode}", h.handleGetType)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Post("/", h.handleCreateType)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Put("/{typeID}", h.handleUpdateType)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Post("/{typeID}/deactivate", h.handleDeactivateType)
	})
	r.Route("/holidays", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermCalendarRead, h.Perms)).Get("/", h.handleListHolidays)
		r.With(middleware.RequirePermission(auth.PermCalendarWrite, h.Perms)).Post("/", h.handleCreateHoliday)
		r.With(middleware.RequirePermission(auth.PermCalendarWrite, h.Perms)).Put("/{holidayID}", h.handleUpdateHoliday)
		r.With(middleware.RequirePermission(auth.PermCalendarWrite, h.Perms)).Delete("/{holidayID}", h.handleDeleteHoliday)
	})
	r.Route("/deadlines", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermDeadlineCalculate, h.Perms)).Post("/calculate", h.handleCalculate)
		r.With(middleware.RequirePermission(auth.PermHistoryRead, h.Perms)).Get("/history/{matterID}", h.handleHistory)
		r.With(middleware.RequirePermission(auth.PermHistoryRead, h.Perms)).Get("/history/record/{recordID}/memo", h.handleMemo)
	})
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	q := r.URL.Query()
	filter := deadline.TypeFilter{
		AreaOfLaw:       q.Get("areaOfLaw"),
		Category:        q.Get("category"),
		Phase:           q.Get("phase"),
		Search:          q.Get("search"),
		IncludeInactive: q.Get("includeInactive") == "true",
	}
	types, err := h.Service.ListTypes(r.Context(), user.TenantID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "catalog_list_failed", "failed to list deadline types", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, types, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetType(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	t, err := h.Service.GetType(r.Context(), user.TenantID, chi.URLParam(r, "idOrCode"))
	if errors.Is(err, deadline.ErrTypeNotFound) {
		api.Fail(w, http.StatusNotFound, "type_not_found", "deadline type not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "catalog_get_failed", "failed to load deadline type", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, t, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateType(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload deadline.DeadlineType
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("code", payload.Code, "code is required")
	v.Required("name", payload.Name, "name is required")
	v.Enum("areaOfLaw", payload.AreaOfLaw, deadline.AreasOfLaw, "unknown area of law")
	if payload.BaseLegalDays < 0 {
		v.Add("baseLegalDays", "must not be negative")
	}
	if payload.PresumedReadingDays < 0 {
		v.Add("presumedReadingDays", "must not be negative")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateType(r.Context(), user.TenantID, payload)
	if errors.Is(err, deadline.ErrDuplicateCode) {
		api.Fail(w, http.StatusConflict, "duplicate_code", "a deadline type with this code already exists", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "catalog_create_failed", "failed to create deadline type", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionCreate, "deadline_type", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit deadline type create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateType(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload deadline.DeadlineType
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	typeID := chi.URLParam(r, "typeID")
	err := h.Service.UpdateType(r.Context(), user.TenantID, typeID, payload)
	if errors.Is(err, deadline.ErrTypeNotFound) {
		api.Fail(w, http.StatusNotFound, "type_not_found", "deadline type not found", middleware.GetRequestID(r.Context()))
		return
	}
	if errors.Is(err, deadline.ErrDuplicateCode) {
		api.Fail(w, http.StatusConflict, "duplicate_code", "a deadline type with this code already exists", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "catalog_update_failed", "failed to update deadline type", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionUpdate, "deadline_type", typeID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit deadline type update failed", "err", err)
	}
	api.Success(w, map[string]string{"id": typeID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeactivateType(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	typeID := chi.URLParam(r, "typeID")
	err := h.Service.DeactivateType(r.Context(), user.TenantID, typeID)
	if errors.Is(err, deadline.ErrTypeNotFound) {
		api.Fail(w, http.StatusNotFound, "type_not_found", "deadline type not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "catalog_deactivate_failed", "failed to deactivate deadline type", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionDelete, "deadline_type", typeID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit deadline type deactivate failed", "err", err)
	}
	api.Success(w, map[string]string{"id": typeID, "status": "inactive"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	q := r.URL.Query()
	filter := deadline.HolidayFilter{
		Scope:        q.Get("scope"),
		State:        q.Get("state"),
		Municipality: q.Get("municipality"),
		Court:        q.Get("court"),
	}
	if raw := q.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_year", "year must be numeric", middleware.GetRequestID(r.Context()))
			return
		}
		filter.Year = year
	}
	v := shared.NewValidator()
	if raw := q.Get("from"); raw != "" {
		if from, ok := v.Date("from", raw); ok {
			filter.From = &from
		}
	}
	if raw := q.Get("to"); raw != "" {
		if to, ok := v.Date("to", raw); ok {
			filter.To = &to
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	entries, err := h.Service.ListHolidays(r.Context(), user.TenantID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "calendar_list_failed", "failed to list holiday entries", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, entries, middleware.GetRequestID(r.Context()))
}

type holidayRequest struct {
	Date             string `json:"date"`
	EndDate          string `json:"endDate"`
	Name             string `json:"name"`
	Kind             string `json:"kind"`
	Scope            string `json:"scope"`
	State            string `json:"state"`
	Municipality     string `json:"municipality"`
	Court            string `json:"court"`
	SuspendsDeadline bool   `json:"suspendsDeadline"`
	OfficeHoursOnly  bool   `json:"officeHoursOnly"`
}

func (h *Handler) parseHoliday(w http.ResponseWriter, r *http.Request) (deadline.HolidayEntry, bool) {
	var payload holidayRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return deadline.HolidayEntry{}, false
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Enum("kind", payload.Kind, []string{deadline.KindHoliday, deadline.KindOptionalNonworking, deadline.KindRecess, deadline.KindSuspension}, "unknown kind")
	v.Enum("scope", payload.Scope, []string{deadline.ScopeNational, deadline.ScopeState, deadline.ScopeMunicipal, deadline.ScopeCourt}, "unknown scope")
	date, dateOK := v.Date("date", payload.Date)
	var endDate *time.Time
	if payload.EndDate != "" {
		if parsed, ok := v.Date("endDate", payload.EndDate); ok {
			endDate = &parsed
			if dateOK {
				v.DateOrder("date", date, "endDate", parsed)
			}
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return deadline.HolidayEntry{}, false
	}

	return deadline.HolidayEntry{
		Date:             date,
		EndDate:          endDate,
		Name:             payload.Name,
		Kind:             payload.Kind,
		Scope:            payload.Scope,
		State:            payload.State,
		Municipality:     payload.Municipality,
		Court:            payload.Court,
		SuspendsDeadline: payload.SuspendsDeadline,
		OfficeHoursOnly:  payload.OfficeHoursOnly,
	}, true
}

func (h *Handler) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	entry, ok := h.parseHoliday(w, r)
	if !ok {
		return
	}

	id, err := h.Service.CreateHoliday(r.Context(), user.TenantID, entry)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "calendar_create_failed", "failed to create holiday entry", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionCreate, "holiday_entry", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, entry); err != nil {
		slog.Warn("audit holiday create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateHoliday(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	entry, ok := h.parseHoliday(w, r)
	if !ok {
		return
	}

	holidayID := chi.URLParam(r, "holidayID")
	err := h.Service.UpdateHoliday(r.Context(), user.TenantID, holidayID, entry)
	if errors.Is(err, deadline.ErrHolidayNotFound) {
		api.Fail(w, http.StatusNotFound, "holiday_not_found", "holiday entry not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "calendar_update_failed", "failed to update holiday entry", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionUpdate, "holiday_entry", holidayID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, entry); err != nil {
		slog.Warn("audit holiday update failed", "err", err)
	}
	api.Success(w, map[string]string{"id": holidayID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	holidayID := chi.URLParam(r, "holidayID")
	err := h.Service.DeleteHoliday(r.Context(), user.TenantID, holidayID)
	if errors.Is(err, deadline.ErrHolidayNotFound) {
		api.Fail(w, http.StatusNotFound, "holiday_not_found", "holiday entry not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "calendar_delete_failed", "failed to delete holiday entry", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionDelete, "holiday_entry", holidayID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit holiday delete failed", "err", err)
	}
	api.Success(w, map[string]string{"id": holidayID, "status": "deleted"}, middleware.GetRequestID(r.Context()))
}

type calculateRequest struct {
	ExpeditionDate      string                `json:"expeditionDate"`
	ReadingDate         string                `json:"readingDate"`
	TypeCode            string                `json:"typeCode"`
	BaseDays            *int                  `json:"baseDays"`
	AreaOfLaw           string                `json:"areaOfLaw"`
	Doubling            *bool                 `json:"doubling"`
	CountInBusinessDays *bool                 `json:"countInBusinessDays"`
	PresumedReadingDays *int                  `json:"presumedReadingDays"`
	Scope               deadline.ScopeContext `json:"scope"`
	MatterID            string                `json:"matterId"`
	Record              bool                  `json:"record"`
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	expedition, _ := v.Date("expeditionDate", payload.ExpeditionDate)
	var reading *time.Time
	if payload.ReadingDate != "" {
		if parsed, ok := v.Date("readingDate", payload.ReadingDate); ok {
			reading = &parsed
		}
	}
	if payload.TypeCode == "" && payload.BaseDays == nil {
		v.Add("typeCode", "either typeCode or baseDays is required")
	}
	v.NonNegative("baseDays", payload.BaseDays, "must not be negative")
	v.NonNegative("presumedReadingDays", payload.PresumedReadingDays, "must not be negative")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	params := deadline.CalculationParams{
		ExpeditionDate:      expedition,
		ReadingDate:         reading,
		TypeCode:            payload.TypeCode,
		BaseDays:            payload.BaseDays,
		AreaOfLaw:           payload.AreaOfLaw,
		Doubling:            payload.Doubling,
		CountInBusinessDays: payload.CountInBusinessDays,
		PresumedReadingDays: payload.PresumedReadingDays,
		Scope:               payload.Scope,
	}

	result, err := h.Service.Calculate(r.Context(), user.TenantID, user.UserID, params, payload.MatterID, payload.Record)
	if err != nil {
		h.failCalculation(w, r, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordCalculation(result.HistoryWarning != "")
	}

	if payload.Record && payload.MatterID != "" && result.HistoryWarning == "" {
		if err := h.Matters.StampDeadline(r.Context(), user.TenantID, payload.MatterID, result.DueDate, payload.TypeCode); err != nil {
			slog.Warn("matter due date stamp failed", "matterId", payload.MatterID, "err", err)
		}
		if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, audit.ActionCalculate, "matter", payload.MatterID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, result); err != nil {
			slog.Warn("audit calculation failed", "err", err)
		}
	}

	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) failCalculation(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, deadline.ErrMissingDayCount):
		api.Fail(w, http.StatusBadRequest, "missing_day_count", "either typeCode or baseDays is required", reqID)
	case errors.Is(err, deadline.ErrInvalidDayCount):
		api.Fail(w, http.StatusBadRequest, "invalid_day_count", "day count must not be negative", reqID)
	case errors.Is(err, deadline.ErrInvalidReadingDate):
		api.Fail(w, http.StatusBadRequest, "invalid_reading_date", "reading date must not precede the expedition date", reqID)
	case errors.Is(err, deadline.ErrTypeNotFound):
		api.Fail(w, http.StatusNotFound, "type_not_found", "deadline type not found and no manual day count given", reqID)
	case errors.Is(err, deadline.ErrIterationLimit):
		api.Fail(w, http.StatusUnprocessableEntity, "computation_error", "calculation exceeded the iteration limit", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "calculation_failed", "failed to calculate deadline", reqID)
	}
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	records, err := h.Service.HistoryByMatter(r.Context(), user.TenantID, chi.URLParam(r, "matterID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "history_list_failed", "failed to list calculation history", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, records, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMemo(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	rec, err := h.Service.HistoryRecord(r.Context(), user.TenantID, chi.URLParam(r, "recordID"))
	if errors.Is(err, deadline.ErrRecordNotFound) {
		api.Fail(w, http.StatusNotFound, "record_not_found", "calculation record not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "memo_failed", "failed to load calculation record", middleware.GetRequestID(r.Context()))
		return
	}

	var buf bytes.Buffer
	if err := deadline.WriteMemoPDF(&buf, rec); err != nil {
		api.Fail(w, http.StatusInternalServerError, "memo_failed", "failed to render memo", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=deadline-memo-"+rec.ID+".pdf")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("memo write failed", "err", err)
	}
}
