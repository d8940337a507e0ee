package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/skufinder/skufinder/internal/artifact"
)

// downloadTimeout bounds one proxied image fetch.
const downloadTimeout = 30 * time.Second

// DownloadHandler proxies image downloads so the browser gets a
// file-download response instead of navigating to the upstream CDN.
type DownloadHandler struct {
	client *http.Client
	logger *slog.Logger
}

// NewDownloadHandler creates a new DownloadHandler. client may be nil.
func NewDownloadHandler(client *http.Client, logger *slog.Logger) *DownloadHandler {
	if client == nil {
		client = &http.Client{Timeout: downloadTimeout}
	}
	return &DownloadHandler{
		client: client,
		logger: logger,
	}
}

// DownloadImage handles GET /download-image?url=&sku=.
// The response carries a Content-Disposition filename derived from the
// SKU so saved files sort next to their codes.
func (h *DownloadHandler) DownloadImage(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	sku := strings.TrimSpace(r.URL.Query().Get("sku"))

	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "MISSING_URL", "Image URL is required")
		return
	}
	if sku == "" {
		writeError(w, http.StatusBadRequest, "MISSING_SKU", "SKU is required")
		return
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		writeError(w, http.StatusBadRequest, "INVALID_URL", "Image URL must be http or https")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, rawURL, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_URL", "Image URL is invalid")
		return
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; skufinder/1.0)")

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Warn("image download failed",
			slog.String("sku", sku),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "DOWNLOAD_FAILED", "Could not fetch the image")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		h.logger.Warn("image download failed",
			slog.String("sku", sku),
			slog.Int("status", resp.StatusCode),
		)
		writeError(w, http.StatusBadGateway, "DOWNLOAD_FAILED", "Could not fetch the image")
		return
	}

	contentType := resp.Header.Get("Content-Type")
	ext := artifact.ExtensionFor(rawURL, contentType)
	filename := artifact.SanitizeName(sku) + "--Image" + ext

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if length := resp.Header.Get("Content-Length"); length != "" {
		w.Header().Set("Content-Length", length)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		// Headers are already out; all we can do is log the broken pipe.
		h.logger.Warn("image stream interrupted",
			slog.String("sku", sku),
			slog.String("error", err.Error()),
		)
	}
}
