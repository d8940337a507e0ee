// Package artifact materializes product records into on-disk bundles:
// a raw JSON dump, a plain-text summary, and the product image.
package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/skufinder/skufinder/internal/model"
)

// Bundle file names. The folder is keyed by <code>--<sanitized name>.
const (
	JSONFileName = "product_info.json"
	TextFileName = "product_info.txt"
	imageBase    = "image"
)

const (
	downloadTimeout = 15 * time.Second
	// maxImageBytes caps a single image download.
	maxImageBytes = 20 << 20

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// ErrImageDownload marks a partial bundle: the JSON and text files were
// written but the image could not be fetched.
var ErrImageDownload = errors.New("image download failed")

// Materializer writes artifact bundles under a base directory.
// Concurrent writers to the same code's bundle race harmlessly;
// last writer wins by policy.
type Materializer struct {
	baseDir    string
	httpClient *http.Client
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithHTTPClient overrides the image download client.
func WithHTTPClient(hc *http.Client) Option {
	return func(m *Materializer) {
		m.httpClient = hc
	}
}

// New creates a Materializer rooted at baseDir. The directory is created
// on first use.
func New(baseDir string, opts ...Option) *Materializer {
	m := &Materializer{
		baseDir:    baseDir,
		httpClient: &http.Client{Timeout: downloadTimeout},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BaseDir returns the bundle root directory.
func (m *Materializer) BaseDir() string {
	return m.baseDir
}

// Materialize writes the bundle for a product record, overwriting any
// existing bundle for the same code wholesale.
//
// If the image fetch fails the JSON and text files are still written and
// the returned error wraps ErrImageDownload; callers report that as a
// partial success, not a failure.
func (m *Materializer) Materialize(ctx context.Context, product *model.Product) (*model.Bundle, error) {
	folderName := fmt.Sprintf("%s--%s", product.Code, SanitizeName(product.Name))
	folderPath := filepath.Join(m.baseDir, folderName)

	// Overwrite wholesale: no merge, no versioning.
	if err := os.RemoveAll(folderPath); err != nil {
		return nil, fmt.Errorf("remove existing bundle: %w", err)
	}
	if err := os.MkdirAll(folderPath, 0o755); err != nil {
		return nil, fmt.Errorf("create bundle folder: %w", err)
	}

	bundle := &model.Bundle{
		FolderName: folderName,
		FolderPath: folderPath,
		JSONFile:   JSONFileName,
		TextFile:   TextFileName,
	}

	if err := m.writeJSON(folderPath, product); err != nil {
		return nil, err
	}
	if err := m.writeText(folderPath, product); err != nil {
		return nil, err
	}

	if product.ImageURL == "" {
		return bundle, nil
	}

	imageFile, err := m.downloadImage(ctx, product.ImageURL, folderPath)
	if err != nil {
		return bundle, fmt.Errorf("%w: %v", ErrImageDownload, err)
	}
	bundle.ImageFile = imageFile
	return bundle, nil
}

// writeJSON dumps the raw upstream payload, pretty-printed. Output is
// deterministic for a given record so repeat runs are byte-identical.
func (m *Materializer) writeJSON(folderPath string, product *model.Product) error {
	var buf bytes.Buffer
	if len(product.Raw) > 0 {
		if err := json.Indent(&buf, product.Raw, "", "  "); err != nil {
			// Upstream payload was retained unparsed; keep it as-is.
			buf.Reset()
			buf.Write(product.Raw)
		}
	} else {
		data, err := json.MarshalIndent(product, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal product: %w", err)
		}
		buf.Write(data)
	}
	buf.WriteByte('\n')

	if err := os.WriteFile(filepath.Join(folderPath, JSONFileName), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

// writeText renders the human-readable summary with a fixed field order:
// code, name, brand, category, region, description, specifications,
// image URL, retrieval timestamp.
func (m *Materializer) writeText(folderPath string, product *model.Product) error {
	var b strings.Builder
	b.WriteString("PRODUCT INFORMATION\n")
	b.WriteString("==================\n\n")
	fmt.Fprintf(&b, "UPC: %s\n", product.Code)
	fmt.Fprintf(&b, "Name: %s\n", product.Name)
	fmt.Fprintf(&b, "Brand: %s\n", product.Brand)
	fmt.Fprintf(&b, "Category: %s\n", product.Category)
	fmt.Fprintf(&b, "Region: %s\n\n", product.Region)

	if product.Description != "" {
		fmt.Fprintf(&b, "Description:\n%s\n\n", product.Description)
	}

	if len(product.Specs) > 0 {
		b.WriteString("Specifications:\n")
		for _, spec := range product.Specs {
			fmt.Fprintf(&b, "  %s: %s\n", spec.Name, spec.Value)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Image URL: %s\n", product.ImageURL)
	fmt.Fprintf(&b, "Created: %s\n", product.RetrievedAt.UTC().Format("2006-01-02 15:04:05"))

	if err := os.WriteFile(filepath.Join(folderPath, TextFileName), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write text file: %w", err)
	}
	return nil
}

// downloadImage fetches the product image into the bundle folder and
// returns the stored file name.
func (m *Materializer) downloadImage(ctx context.Context, imageURL, folderPath string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	ext := ExtensionFor(imageURL, resp.Header.Get("Content-Type"))
	fileName := imageBase + ext

	f, err := os.Create(filepath.Join(folderPath, fileName))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(resp.Body, maxImageBytes)); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}
	return fileName, nil
}

// ExtensionFor infers an image file extension from the URL path first,
// then the response content type, defaulting to .jpg.
func ExtensionFor(rawURL, contentType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); isImageExt(ext) {
			return ext
		}
	}
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			switch mt {
			case "image/jpeg":
				return ".jpg"
			case "image/png":
				return ".png"
			case "image/gif":
				return ".gif"
			case "image/webp":
				return ".webp"
			case "image/bmp":
				return ".bmp"
			}
		}
	}
	return ".jpg"
}

func isImageExt(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp":
		return true
	}
	return false
}
