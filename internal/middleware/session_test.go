package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/skufinder/skufinder/internal/auth"
	"github.com/skufinder/skufinder/internal/model"
	"github.com/skufinder/skufinder/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newGate(t *testing.T) (func(http.Handler) http.Handler, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	gate := SessionAuth(SessionConfig{Logger: testLogger(), Store: store})
	return gate, store
}

func protected(gotSession **model.Session) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotSession != nil {
			*gotSession = auth.SessionFromContext(r.Context())
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("protected"))
	})
}

func TestSessionAuth_MissingCookie(t *testing.T) {
	gate, _ := newGate(t)
	h := gate(protected(nil))

	// API path: JSON 401.
	req := httptest.NewRequest(http.MethodPost, "/api/search", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Body.String() == "protected" {
		t.Fatal("protected payload leaked to an unauthenticated request")
	}

	// Browser path: redirect to the login page.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %s", loc)
	}
}

func TestSessionAuth_InvalidAndExpiredTokens(t *testing.T) {
	gate, store := newGate(t)
	h := gate(protected(nil))

	expired := session.New(&model.User{ID: "u1", Email: "user@example.com", Role: model.RoleUser}, -time.Minute)
	_ = store.Create(context.Background(), expired)

	for _, token := range []string{"not-a-real-token", expired.Token} {
		req := httptest.NewRequest(http.MethodPost, "/api/search", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("token %q: expected 401, got %d", token, rec.Code)
		}
	}
}

func TestSessionAuth_ValidSession(t *testing.T) {
	gate, store := newGate(t)

	sess := session.New(&model.User{ID: "u1", Email: "user@example.com", Role: model.RoleUser}, time.Hour)
	if err := store.Create(context.Background(), sess); err != nil {
		t.Fatalf("create session: %v", err)
	}

	var got *model.Session
	h := gate(protected(&got))

	req := httptest.NewRequest(http.MethodPost, "/api/search", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.Email != "user@example.com" {
		t.Errorf("session not injected into context: %+v", got)
	}
}

func TestRequireAdmin(t *testing.T) {
	admin := RequireAdmin(testLogger())
	h := admin(protected(nil))

	// Regular user: 403.
	sess := &model.Session{Token: "t", UserID: "u1", Email: "user@example.com", Role: model.RoleUser}
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req = req.WithContext(auth.ContextWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	// Admin: passes through.
	sess = &model.Session{Token: "t", UserID: "u2", Email: "admin@example.com", Role: model.RoleAdmin}
	req = httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req = req.WithContext(auth.ContextWithSession(req.Context(), sess))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// No session at all: 401.
	req = httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
