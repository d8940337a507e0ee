package upc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tequilaOchoBody = `{
	"code": "898627001308",
	"codeType": "UPC",
	"product": {
		"name": "Tequila Ocho Plata",
		"description": "Single estate blue agave tequila.",
		"brand": "Tequila Ocho",
		"category": "Alcoholic Beverages",
		"region": "Mexico",
		"imageUrl": "https://img.example.com/898627001308.jpg",
		"specs": [["Volume", "750 ml"], ["ABV", "40%"], ["bad"]]
	},
	"barcodeUrl": "https://img.example.com/barcode/898627001308.png"
}`

// newFixtureServer serves a canned catalog keyed by code and requires the
// expected bearer token.
func newFixtureServer(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+apiKey {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		code := strings.TrimPrefix(r.URL.Path, "/code/")
		switch code {
		case "898627001308":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(tequilaOchoBody))
		case "boom":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestLookup_KnownCode(t *testing.T) {
	srv := newFixtureServer(t, "test-key")
	defer srv.Close()

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	client := New("test-key",
		WithBaseURL(srv.URL),
		WithClock(func() time.Time { return fixed }),
	)

	product, err := client.Lookup(context.Background(), "898627001308")
	require.NoError(t, err)

	assert.Contains(t, product.Name, "Tequila Ocho")
	assert.Equal(t, "898627001308", product.Code)
	assert.Equal(t, "Tequila Ocho", product.Brand)
	assert.Equal(t, "Mexico", product.Region)
	assert.Equal(t, "https://img.example.com/898627001308.jpg", product.ImageURL)
	assert.Equal(t, fixed, product.RetrievedAt)

	// Malformed spec pairs are skipped, valid ones kept in order.
	require.Len(t, product.Specs, 2)
	assert.Equal(t, "Volume", product.Specs[0].Name)
	assert.Equal(t, "750 ml", product.Specs[0].Value)

	// Raw payload is retained verbatim for export.
	assert.JSONEq(t, tequilaOchoBody, string(product.Raw))
}

func TestLookup_UnknownCode(t *testing.T) {
	srv := newFixtureServer(t, "test-key")
	defer srv.Close()

	client := New("test-key", WithBaseURL(srv.URL))

	_, err := client.Lookup(context.Background(), "not-a-real-code")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookup_UpstreamError(t *testing.T) {
	srv := newFixtureServer(t, "test-key")
	defer srv.Close()

	client := New("test-key", WithBaseURL(srv.URL))

	_, err := client.Lookup(context.Background(), "boom")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestLookup_RejectedKey(t *testing.T) {
	srv := newFixtureServer(t, "test-key")
	defer srv.Close()

	client := New("wrong-key", WithBaseURL(srv.URL))

	_, err := client.Lookup(context.Background(), "898627001308")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestLookup_MissingKeyFailsWithoutNetwork(t *testing.T) {
	// Base URL points nowhere; the client must not attempt a connection.
	client := New("", WithBaseURL("http://127.0.0.1:1"))

	_, err := client.Lookup(context.Background(), "898627001308")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, client.Configured())
}

func TestLookup_EmptyProductPayloadIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"000000000000","product":{}}`))
	}))
	defer srv.Close()

	client := New("test-key", WithBaseURL(srv.URL))

	_, err := client.Lookup(context.Background(), "000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithTimeout_ReplacesDefault(t *testing.T) {
	client := New("test-key", WithTimeout(50*time.Millisecond))
	assert.Equal(t, 50*time.Millisecond, client.httpClient.Timeout)

	// Non-positive values keep the default.
	client = New("test-key", WithTimeout(0))
	assert.Equal(t, ClientTimeout, client.httpClient.Timeout)
}

func TestLookup_HonorsConfiguredTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := New("test-key", WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := client.Lookup(context.Background(), "898627001308")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Less(t, time.Since(start), time.Second, "a slow upstream must be cut off at the configured timeout")
}

func TestLookup_NetworkFailureIsUpstreamError(t *testing.T) {
	srv := newFixtureServer(t, "test-key")
	srv.Close() // refuse connections

	client := New("test-key", WithBaseURL(srv.URL))

	_, err := client.Lookup(context.Background(), "898627001308")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.False(t, errors.Is(err, ErrNotFound))
}
