package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/skufinder/skufinder/internal/handler/dto"
	"github.com/skufinder/skufinder/internal/service"
	"github.com/skufinder/skufinder/internal/upc"
)

// maxBatchSize caps the number of codes accepted in one batch request.
const maxBatchSize = 100

// SearchHandler handles product lookup requests.
type SearchHandler struct {
	svc    *service.ProductService
	logger *slog.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(svc *service.ProductService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		svc:    svc,
		logger: logger,
	}
}

// Search handles POST /api/search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req dto.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	result, err := h.svc.Search(r.Context(), req.SKU)
	if err != nil {
		h.handleLookupError(w, req.SKU, err)
		return
	}

	h.logger.Info("lookup succeeded",
		slog.String("sku", req.SKU),
		slog.String("product", result.Product.Name),
		slog.Bool("partial", result.Partial),
	)
	writeJSON(w, http.StatusOK, dto.ToSearchResponse(result.Product.Code, result))
}

// Batch handles POST /api/batch. Codes are resolved sequentially and
// every code gets its own outcome; one failure never aborts the rest.
func (h *SearchHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if len(req.SKUs) == 0 {
		writeError(w, http.StatusBadRequest, "MISSING_SKUS", "At least one SKU is required")
		return
	}
	if len(req.SKUs) > maxBatchSize {
		writeError(w, http.StatusBadRequest, "BATCH_TOO_LARGE", "Too many SKUs in one request")
		return
	}

	items := h.svc.Batch(r.Context(), req.SKUs)

	results := make([]dto.BatchItemResponse, len(items))
	for i, item := range items {
		if item.Err != nil {
			code, message := classifyLookupError(item.Err)
			results[i] = dto.BatchItemResponse{
				SKU:   item.SKU,
				Error: message,
				Code:  code,
			}
			continue
		}
		results[i] = dto.BatchItemResponse{
			SKU:      item.SKU,
			Success:  true,
			Product:  dto.ToProductResponse(item.Result.Product),
			Export:   dto.ToExportResponse(item.Result.Bundle),
			Partial:  item.Result.Partial,
			Warnings: item.Result.Warnings,
		}
	}

	h.logger.Info("batch lookup finished", slog.Int("count", len(results)))
	writeJSON(w, http.StatusOK, dto.BatchResponse{
		Success: true,
		Count:   len(results),
		Results: results,
	})
}

// handleLookupError maps lookup errors to HTTP responses. The status
// codes distinguish "recheck the code" from "retry later" from
// "credential missing".
func (h *SearchHandler) handleLookupError(w http.ResponseWriter, sku string, err error) {
	code, message := classifyLookupError(err)
	status := http.StatusInternalServerError

	switch code {
	case "MISSING_SKU":
		status = http.StatusBadRequest
	case "NOT_FOUND":
		status = http.StatusNotFound
	case "NOT_CONFIGURED":
		status = http.StatusServiceUnavailable
	case "UPSTREAM_ERROR":
		status = http.StatusBadGateway
	default:
		h.logger.Error("lookup error",
			slog.String("sku", sku),
			slog.String("error", err.Error()),
		)
	}
	writeError(w, status, code, message)
}

// classifyLookupError maps a lookup error to an error code and a
// user-facing message.
func classifyLookupError(err error) (code, message string) {
	switch {
	case errors.Is(err, service.ErrEmptyCode):
		return "MISSING_SKU", "SKU is required"
	case errors.Is(err, upc.ErrNotFound):
		return "NOT_FOUND", "Product not found"
	case errors.Is(err, upc.ErrNotConfigured):
		return "NOT_CONFIGURED", "Product lookup is not configured"
	case errors.Is(err, upc.ErrUpstream):
		return "UPSTREAM_ERROR", "Product database is unavailable, try again later"
	default:
		return "INTERNAL_ERROR", "An internal error occurred"
	}
}
