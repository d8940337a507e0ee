// Package upc provides the client for the Go-UPC product database API.
package upc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/skufinder/skufinder/internal/model"
)

// Client timeouts. A slow upstream must not hang a worker indefinitely.
const (
	ClientTimeout         = 10 * time.Second
	DialTimeout           = 5 * time.Second
	TLSHandshakeTimeout   = 5 * time.Second
	ResponseHeaderTimeout = 10 * time.Second

	// maxResponseBytes caps how much of an upstream payload is read.
	maxResponseBytes = 1 << 20
)

// Lookup error taxonomy. Handlers map these to HTTP status codes.
var (
	// ErrNotConfigured means the API key is missing or rejected upstream.
	ErrNotConfigured = errors.New("product lookup is not configured")
	// ErrNotFound means the upstream has no product for the code.
	ErrNotFound = errors.New("product not found")
	// ErrUpstream covers network failures and upstream 5xx responses.
	ErrUpstream = errors.New("product lookup upstream error")
)

// Client issues authenticated lookups against the Go-UPC API.
// Every call is a fresh round trip: no retry, no cache.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the upstream base URL. Used in tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithTimeout overrides the overall per-request timeout. Non-positive
// values keep the default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = newHTTPClient(timeout)
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithClock overrides the timestamp source for retrieved records.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a Client. An empty apiKey is allowed; lookups then fail
// fast with ErrNotConfigured so the rest of the service can still run.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: newHTTPClient(ClientTimeout),
		baseURL:    "https://go-upc.com/api/v1",
		apiKey:     apiKey,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newHTTPClient builds an HTTP client with bounded timeouts at every
// stage of the request.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// Configured reports whether the client has an API key.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// envelope mirrors the upstream response body. Specs arrive as
// two-element [name, value] arrays.
type envelope struct {
	Code     string `json:"code"`
	CodeType string `json:"codeType"`
	Product  struct {
		Name        string     `json:"name"`
		Description string     `json:"description"`
		Brand       string     `json:"brand"`
		Category    string     `json:"category"`
		Region      string     `json:"region"`
		ImageURL    string     `json:"imageUrl"`
		Specs       [][]string `json:"specs"`
	} `json:"product"`
	BarcodeURL string `json:"barcodeUrl"`
}

// Lookup resolves a UPC/SKU code to a normalized product record.
// The code is passed to the upstream verbatim; the upstream is the
// source of truth for validity.
func (c *Client) Lookup(ctx context.Context, code string) (*model.Product, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	url := c.baseURL + "/code/" + code
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Rejected credential is a configuration problem, not a lookup failure.
		return nil, fmt.Errorf("%w: upstream rejected API key (status %d)", ErrNotConfigured, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, fmt.Errorf("%w: upstream status %d", ErrNotFound, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: upstream status %d", ErrUpstream, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if env.Product.Name == "" {
		// A 200 with no product payload still means no match.
		return nil, ErrNotFound
	}

	product := &model.Product{
		Code:        code,
		Name:        env.Product.Name,
		Description: env.Product.Description,
		Brand:       env.Product.Brand,
		Category:    env.Product.Category,
		Region:      env.Product.Region,
		ImageURL:    env.Product.ImageURL,
		BarcodeURL:  env.BarcodeURL,
		Specs:       convertSpecs(env.Product.Specs),
		Raw:         json.RawMessage(body),
		RetrievedAt: c.now().UTC(),
	}
	return product, nil
}

// convertSpecs turns upstream [name, value] pairs into Spec values,
// skipping malformed entries.
func convertSpecs(raw [][]string) []model.Spec {
	if len(raw) == 0 {
		return nil
	}
	specs := make([]model.Spec, 0, len(raw))
	for _, pair := range raw {
		if len(pair) < 2 {
			continue
		}
		specs = append(specs, model.Spec{Name: pair[0], Value: pair[1]})
	}
	if len(specs) == 0 {
		return nil
	}
	return specs
}
