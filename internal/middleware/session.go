package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/skufinder/skufinder/internal/auth"
	"github.com/skufinder/skufinder/internal/session"
)

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	Logger *slog.Logger
	Store  session.Store
}

// SessionAuth returns a middleware that authenticates requests via the
// session cookie. API callers get a 401 JSON body; browser navigations
// are redirected to the login page.
func SessionAuth(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.SessionTokenFromRequest(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_session"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeUnauthenticated(w, r)
				return
			}

			sess, err := cfg.Store.Get(r.Context(), token)
			if err != nil {
				reason := "invalid_session"
				if !errors.Is(err, session.ErrNotFound) {
					reason = "store_error"
					cfg.Logger.Error("session store error",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
				}
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeUnauthenticated(w, r)
				return
			}

			ctx := auth.ContextWithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns a middleware that rejects non-admin sessions.
// Must be applied after SessionAuth.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := auth.SessionFromContext(r.Context())
			if sess == nil {
				writeUnauthenticated(w, r)
				return
			}
			if !auth.IsAdmin(r.Context()) {
				logger.Warn("admin access denied",
					slog.String("email", sess.Email),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"success":false,"error":"Admin access required","code":"FORBIDDEN"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeUnauthenticated answers an unauthenticated request. API paths
// get JSON so fetch callers can react; everything else is sent to the
// login page.
func writeUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":"Authentication required","code":"UNAUTHORIZED"}`))
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
