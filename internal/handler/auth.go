package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/skufinder/skufinder/internal/auth"
	"github.com/skufinder/skufinder/internal/handler/dto"
	"github.com/skufinder/skufinder/internal/service"
)

// AuthHandler handles login, logout, and registration.
type AuthHandler struct {
	svc          *service.AuthService
	logger       *slog.Logger
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. secureCookie should be true
// whenever the app is served over HTTPS.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		svc:          svc,
		logger:       logger,
		secureCookie: secureCookie,
	}
}

// Login handles POST /login. Accepts JSON or a classic form post; form
// logins redirect back to the search page, JSON logins get a JSON body.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, fromForm, err := h.parseCredentials(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "MISSING_CREDENTIALS", "Email and password are required")
		return
	}

	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			h.logger.Warn("login failed",
				slog.String("reason", "invalid_credentials"),
				slog.String("ip", r.RemoteAddr),
			)
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		case errors.Is(err, service.ErrAccountDisabled):
			h.logger.Warn("login failed",
				slog.String("reason", "account_disabled"),
				slog.String("ip", r.RemoteAddr),
			)
			writeError(w, http.StatusForbidden, "ACCOUNT_DISABLED", "Account is disabled")
		default:
			h.logger.Error("login error", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		}
		return
	}

	auth.SetSessionCookie(w, sess.Token, sess.ExpiresAt, h.secureCookie)

	h.logger.Info("login successful",
		slog.String("user_id", sess.UserID),
		slog.String("email", sess.Email),
	)

	if fromForm {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Success: true,
		Email:   sess.Email,
		Role:    string(sess.Role),
	})
}

// LoginPage handles GET /login, the redirect target for expired
// sessions. The UI is rendered client-side; API callers get a hint.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{
		"error": "Authentication required",
		"code":  "UNAUTHORIZED",
		"hint":  "POST /login with email and password",
	})
}

// Logout handles GET /logout. Destroys the session and clears the
// cookie; browsers land back on the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := auth.SessionTokenFromRequest(r); token != "" {
		if err := h.svc.Logout(r.Context(), token); err != nil {
			h.logger.Error("logout error", slog.String("error", err.Error()))
		}
	}
	auth.ClearSessionCookie(w, h.secureCookie)

	if wantsHTML(r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
			return
		}
		req.Email = r.PostFormValue("email")
		req.Password = r.PostFormValue("password")
		req.PasswordConfirm = r.PostFormValue("password_confirm")
	}

	if req.PasswordConfirm != "" && req.PasswordConfirm != req.Password {
		writeError(w, http.StatusBadRequest, "PASSWORD_MISMATCH", "Passwords do not match")
		return
	}

	user, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleRegisterError(w, err)
		return
	}

	h.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)
	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

func (h *AuthHandler) handleRegisterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRegistrationDisabled):
		writeError(w, http.StatusForbidden, "REGISTRATION_DISABLED", "Registration is disabled")
	case errors.Is(err, service.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "Invalid email address")
	case errors.Is(err, auth.ErrPasswordTooShort):
		writeError(w, http.StatusUnprocessableEntity, "WEAK_PASSWORD", "Password does not meet the minimum length")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already registered")
	default:
		h.logger.Error("registration error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// parseCredentials reads credentials from a JSON body or a form post.
// The second return reports whether the request came from a form.
func (h *AuthHandler) parseCredentials(r *http.Request) (dto.LoginRequest, bool, error) {
	var req dto.LoginRequest
	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, false, err
		}
		return req, false, nil
	}
	if err := r.ParseForm(); err != nil {
		return req, true, err
	}
	req.Email = r.PostFormValue("email")
	req.Password = r.PostFormValue("password")
	return req, true, nil
}

// wantsHTML reports whether the client is a browser navigation rather
// than an API caller.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
