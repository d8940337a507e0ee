package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skufinder/skufinder/internal/artifact"
	"github.com/skufinder/skufinder/internal/metrics"
	"github.com/skufinder/skufinder/internal/model"
	"github.com/skufinder/skufinder/internal/upc"
)

// ErrEmptyCode means the caller supplied no SKU at all. Malformed but
// non-empty codes are passed to the upstream verbatim; it is the source
// of truth for validity.
var ErrEmptyCode = errors.New("sku is required")

// Lookuper resolves a code against the upstream product database.
type Lookuper interface {
	Lookup(ctx context.Context, code string) (*model.Product, error)
	Configured() bool
}

// Exporter materializes a product record into an on-disk bundle.
type Exporter interface {
	Materialize(ctx context.Context, product *model.Product) (*model.Bundle, error)
}

// SearchResult is the outcome of one successful lookup, including the
// exported bundle when export is enabled.
type SearchResult struct {
	Product *model.Product
	Bundle  *model.Bundle
	// Partial is true when the lookup succeeded but part of the export
	// (the image download) failed; Warnings carries the details.
	Partial  bool
	Warnings []string
}

// BatchItem is the per-code outcome of a batch search.
type BatchItem struct {
	SKU    string
	Result *SearchResult
	Err    error
}

// ProductService composes the upstream client and the artifact
// materializer. Export is optional; with a nil exporter lookups return
// records only.
type ProductService struct {
	client   Lookuper
	exporter Exporter
	metrics  metrics.Recorder
}

// NewProductService creates a ProductService. exporter may be nil to
// disable artifact export.
func NewProductService(client Lookuper, exporter Exporter, recorder metrics.Recorder) *ProductService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ProductService{
		client:   client,
		exporter: exporter,
		metrics:  recorder,
	}
}

// LookupConfigured reports whether the upstream credential is present.
func (s *ProductService) LookupConfigured() bool {
	return s.client.Configured()
}

// Search resolves one code and, when export is enabled, materializes
// its bundle. An image download failure downgrades the result to a
// reported partial success instead of failing the lookup.
func (s *ProductService) Search(ctx context.Context, code string) (*SearchResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrEmptyCode
	}

	start := time.Now()
	product, err := s.client.Lookup(ctx, code)
	s.metrics.ObserveLookupDuration(time.Since(start))
	if err != nil {
		switch {
		case errors.Is(err, upc.ErrNotFound):
			s.metrics.IncLookupNotFound()
		case errors.Is(err, upc.ErrUpstream):
			s.metrics.IncLookupUpstreamError()
		}
		return nil, err
	}
	s.metrics.IncLookupSuccess()

	result := &SearchResult{Product: product}
	if s.exporter == nil {
		return result, nil
	}

	bundle, err := s.exporter.Materialize(ctx, product)
	if err != nil {
		if errors.Is(err, artifact.ErrImageDownload) && bundle != nil {
			s.metrics.IncImageDownloadFailed()
			result.Bundle = bundle
			result.Partial = true
			result.Warnings = append(result.Warnings, err.Error())
			return result, nil
		}
		return nil, fmt.Errorf("materialize bundle: %w", err)
	}

	s.metrics.IncBundleExported()
	result.Bundle = bundle
	return result, nil
}

// Batch resolves codes sequentially and collects per-code outcomes.
// No parallelism, no deduplication; blank entries are skipped.
func (s *ProductService) Batch(ctx context.Context, codes []string) []BatchItem {
	items := make([]BatchItem, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		result, err := s.Search(ctx, code)
		items = append(items, BatchItem{SKU: code, Result: result, Err: err})
	}
	return items
}
