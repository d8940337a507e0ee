package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubChecker struct {
	err error
}

func (s *stubChecker) Ping(ctx context.Context) error { return s.err }

func TestHealth_AlwaysOK(t *testing.T) {
	// Liveness must not depend on any dependency, even a broken one.
	h := NewHealthHandler(&stubChecker{err: errors.New("down")}, nil, func() bool { return false })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name       string
		users      HealthChecker
		sessions   HealthChecker
		configured bool
		wantStatus int
		wantState  string
	}{
		{"all healthy", &stubChecker{}, &stubChecker{}, true, http.StatusOK, "ok"},
		{"lookup not configured", &stubChecker{}, &stubChecker{}, false, http.StatusOK, "degraded"},
		{"user store down", &stubChecker{err: errors.New("conn refused")}, &stubChecker{}, true, http.StatusServiceUnavailable, "unhealthy"},
		{"session store down", &stubChecker{}, &stubChecker{err: errors.New("conn refused")}, true, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.users, tt.sessions, func() bool { return tt.configured })

			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			rec := httptest.NewRecorder()
			h.Readyz(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}

			var resp HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Status != tt.wantState {
				t.Errorf("expected status %q, got %q", tt.wantState, resp.Status)
			}
		})
	}
}

func TestReadyz_ReportsLookupCheck(t *testing.T) {
	h := NewHealthHandler(&stubChecker{}, &stubChecker{}, func() bool { return false })

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	h.Readyz(rec, req)

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Checks["lookup"] != "not configured" {
		t.Errorf("expected lookup check to report the missing key, got %q", resp.Checks["lookup"])
	}
}
