//go:build e2e

// Package e2e holds smoke tests that run against a live server.
//
// Usage:
//
//	SKUFINDER_BASE_URL=http://localhost:8080 \
//	E2E_EMAIL=admin@skufinder.local E2E_PASSWORD=... \
//	go test -tags e2e ./tests/e2e/
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"testing"
	"time"
)

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{
		Jar:     jar,
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("SKUFINDER_BASE_URL", "http://localhost:8080")
	email := os.Getenv("E2E_EMAIL")
	password := os.Getenv("E2E_PASSWORD")
	if email == "" || password == "" {
		t.Skip("E2E_EMAIL and E2E_PASSWORD are required for e2e tests")
	}

	client := newClient(t)

	// Liveness
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", resp.StatusCode)
	}

	// Unauthenticated API calls are rejected
	resp, err = client.Post(baseURL+"/api/search", "application/json",
		strings.NewReader(`{"sku":"898627001308"}`))
	if err != nil {
		t.Fatalf("unauthenticated search: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated search: expected 401, got %d", resp.StatusCode)
	}

	// Login stores the session cookie in the jar
	creds, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err = client.Post(baseURL+"/login", "application/json", bytes.NewReader(creds))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", resp.StatusCode, body)
	}

	// Authenticated lookup. 503 means the server runs without an
	// upstream key; everything up to the upstream call still worked.
	resp, err = client.Post(baseURL+"/api/search", "application/json",
		strings.NewReader(`{"sku":"898627001308"}`))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var result struct {
			Success bool `json:"success"`
			Product struct {
				Name string `json:"name"`
			} `json:"product"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			t.Fatalf("search: decode: %v", err)
		}
		if !result.Success {
			t.Fatalf("search: expected success, got %s", body)
		}
		if !strings.Contains(result.Product.Name, "Tequila Ocho") {
			t.Errorf("search: unexpected product name %q", result.Product.Name)
		}
	case http.StatusServiceUnavailable:
		t.Log("lookup not configured on the target server, skipping product assertions")
	default:
		t.Fatalf("search: unexpected status %d: %s", resp.StatusCode, body)
	}

	// Logout invalidates the session
	req, _ := http.NewRequest(http.MethodGet, baseURL+"/logout", nil)
	req.Header.Set("Accept", "application/json")
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}

	resp, err = client.Post(baseURL+"/api/search", "application/json",
		strings.NewReader(`{"sku":"898627001308"}`))
	if err != nil {
		t.Fatalf("post-logout search: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("post-logout search: expected 401, got %d", resp.StatusCode)
	}
}

func TestE2EAdminEndpointsRequireAdmin(t *testing.T) {
	baseURL := envOrDefault("SKUFINDER_BASE_URL", "http://localhost:8080")
	client := newClient(t)

	resp, err := client.Get(fmt.Sprintf("%s/api/admin/users", baseURL))
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("admin list without session: expected 401, got %d", resp.StatusCode)
	}
}
