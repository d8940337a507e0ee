package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skufinder/skufinder/internal/auth"
	"github.com/skufinder/skufinder/internal/handler/dto"
	"github.com/skufinder/skufinder/internal/service"
)

// AdminHandler handles user management endpoints. All routes require an
// admin session; the router enforces that before these run.
type AdminHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *service.AuthService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		svc:    svc,
		logger: logger,
	}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserListResponse(users))
}

// SetActive handles POST /api/admin/users/{id}/active.
func (h *AdminHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.svc.SetUserActive(r.Context(), id, req.Active); err != nil {
		h.handleAdminError(w, err)
		return
	}

	h.logger.Info("user active flag changed",
		slog.String("user_id", id),
		slog.Bool("active", req.Active),
		slog.String("admin", auth.EmailFromContext(r.Context())),
	)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true, "active": req.Active})
}

// ResetPassword handles POST /api/admin/users/{id}/password.
func (h *AdminHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.svc.ResetPassword(r.Context(), id, req.Password); err != nil {
		h.handleAdminError(w, err)
		return
	}

	h.logger.Info("password reset",
		slog.String("user_id", id),
		slog.String("admin", auth.EmailFromContext(r.Context())),
	)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) handleAdminError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownUser):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, auth.ErrPasswordTooShort):
		writeError(w, http.StatusUnprocessableEntity, "WEAK_PASSWORD", "Password does not meet the minimum length")
	default:
		h.logger.Error("admin operation failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
