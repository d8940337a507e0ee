package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/skufinder/skufinder/internal/auth"
	"github.com/skufinder/skufinder/internal/model"
	"github.com/skufinder/skufinder/internal/repository"
	"github.com/skufinder/skufinder/internal/service"
	"github.com/skufinder/skufinder/internal/session"
)

func newAuthHandler(t *testing.T, registration bool) (*AuthHandler, *session.MemoryStore) {
	t.Helper()
	repo := repository.NewMemory()
	store := session.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &model.User{
		ID:           "01TESTUSER",
		Email:        "user@example.com",
		PasswordHash: hash,
		Role:         model.RoleUser,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	svc := service.NewAuthService(repo, store, time.Hour, registration, nil)
	return NewAuthHandler(svc, testLogger(), false), store
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestLogin_JSON(t *testing.T) {
	h, store := newAuthHandler(t, false)

	body := `{"email":"user@example.com","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected a session cookie")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	if _, err := store.Get(context.Background(), cookie.Value); err != nil {
		t.Errorf("cookie token not backed by a session: %v", err)
	}

	var resp struct {
		Success bool   `json:"success"`
		Email   string `json:"email"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Email != "user@example.com" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestLogin_Form(t *testing.T) {
	h, _ := newAuthHandler(t, false)

	form := url.Values{"email": {"user@example.com"}, "password": {"secret123"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %s", loc)
	}
	if sessionCookie(rec) == nil {
		t.Error("expected a session cookie")
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	h, _ := newAuthHandler(t, false)

	tests := []struct {
		name string
		body string
	}{
		{"wrong password", `{"email":"user@example.com","password":"nope"}`},
		{"unknown email", `{"email":"ghost@example.com","password":"secret123"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.Login(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if sessionCookie(rec) != nil {
				t.Error("failed login must not set a cookie")
			}
		})
	}
}

func TestLogin_MissingCredentials(t *testing.T) {
	h, _ := newAuthHandler(t, false)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":"user@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	h, store := newAuthHandler(t, false)

	sess := session.New(&model.User{ID: "01TESTUSER", Email: "user@example.com", Role: model.RoleUser}, time.Hour)
	if err := store.Create(context.Background(), sess); err != nil {
		t.Fatalf("create session: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	cookie := sessionCookie(rec)
	if cookie == nil || cookie.MaxAge != -1 {
		t.Error("expected the session cookie to be cleared")
	}
	if _, err := store.Get(context.Background(), sess.Token); err == nil {
		t.Error("session must be destroyed on logout")
	}
}

func TestRegister_Handler(t *testing.T) {
	h, _ := newAuthHandler(t, true)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"success", `{"email":"new@example.com","password":"secret123"}`, http.StatusCreated, ""},
		{"duplicate", `{"email":"user@example.com","password":"secret123"}`, http.StatusConflict, "EMAIL_TAKEN"},
		{"weak password", `{"email":"weak@example.com","password":"abc"}`, http.StatusUnprocessableEntity, "WEAK_PASSWORD"},
		{"mismatch", `{"email":"mm@example.com","password":"secret123","password_confirm":"different1"}`, http.StatusBadRequest, "PASSWORD_MISMATCH"},
		{"bad email", `{"email":"not-an-email","password":"secret123"}`, http.StatusBadRequest, "INVALID_EMAIL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.Register(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantCode != "" {
				var resp struct {
					Code string `json:"code"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if resp.Code != tt.wantCode {
					t.Errorf("expected code %s, got %s", tt.wantCode, resp.Code)
				}
			}
		})
	}
}

func TestRegister_DisabledFlag(t *testing.T) {
	h, _ := newAuthHandler(t, false)

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(`{"email":"new@example.com","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
