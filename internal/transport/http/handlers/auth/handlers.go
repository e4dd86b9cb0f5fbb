package authhandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"defensoria/internal/domain/audit"
	"defensoria/internal/domain/auth"
	"defensoria/internal/transport/http/api"
	"defensoria/internal/transport/http/middleware"
	"defensoria/internal/transport/http/shared"
)

const tokenTTL = 8 * time.Hour

type Handler struct {
	Store  *auth.Store
	Secret string
	Audit  *audit.Service
}

func NewHandler(store *auth.Store, secret string, auditSvc *audit.Service) *Handler {
	return &Handler{Store: store, Secret: secret, Audit: auditSvc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Get("/me", h.handleMe)
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	user, err := h.Store.FindUserByEmail(r.Context(), payload.Email)
	if err != nil || !user.Active {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:   user.ID,
		TenantID: user.TenantID,
		RoleID:   user.RoleID,
		RoleName: user.RoleName,
	}, tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Store.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("update last login failed", "userId", user.ID, "err", err)
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.ID, audit.ActionLogin, "user", user.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit login failed", "err", err)
	}

	api.Success(w, map[string]any{
		"token": token,
		"user": map[string]string{
			"id":       user.ID,
			"tenantId": user.TenantID,
			"roleId":   user.RoleID,
			"role":     user.RoleName,
		},
	}, middleware.GetRequestID(r.Context()))
}

// Tokens are stateless; logout records the event for the audit trail
// and the client discards its copy.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := middleware.GetUser(r.Context()); ok {
		if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "logout", "user", user.UserID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
			slog.Warn("audit logout failed", "err", err)
		}
	}
	api.Success(w, map[string]string{"status": "logged_out"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{
		"id":       user.UserID,
		"tenantId": user.TenantID,
		"roleId":   user.RoleID,
		"role":     user.RoleName,
	}, middleware.GetRequestID(r.Context()))
}
