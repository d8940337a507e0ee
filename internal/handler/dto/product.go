// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"github.com/skufinder/skufinder/internal/model"
	"github.com/skufinder/skufinder/internal/service"
)

// SearchRequest represents the request body for a single lookup.
type SearchRequest struct {
	SKU string `json:"sku"`
}

// BatchRequest represents the request body for a batch lookup.
type BatchRequest struct {
	SKUs []string `json:"skus"`
}

// SpecResponse is one name/value specification pair.
type SpecResponse struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductResponse represents a product record in API responses.
// Field names follow the upstream payload convention.
type ProductResponse struct {
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Brand       string         `json:"brand,omitempty"`
	Category    string         `json:"category,omitempty"`
	Region      string         `json:"region,omitempty"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	BarcodeURL  string         `json:"barcodeUrl,omitempty"`
	Specs       []SpecResponse `json:"specs,omitempty"`
}

// ExportResponse describes the on-disk bundle produced for a lookup.
type ExportResponse struct {
	Folder string   `json:"folder"`
	Files  []string `json:"files"`
}

// SearchResponse represents a single lookup result.
type SearchResponse struct {
	Success  bool             `json:"success"`
	SKU      string           `json:"sku"`
	Product  *ProductResponse `json:"product"`
	Export   *ExportResponse  `json:"export,omitempty"`
	Partial  bool             `json:"partial,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}

// BatchItemResponse is the per-code outcome inside a batch response.
type BatchItemResponse struct {
	SKU      string           `json:"sku"`
	Success  bool             `json:"success"`
	Product  *ProductResponse `json:"product,omitempty"`
	Export   *ExportResponse  `json:"export,omitempty"`
	Partial  bool             `json:"partial,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
	Error    string           `json:"error,omitempty"`
	Code     string           `json:"code,omitempty"`
}

// BatchResponse represents a batch lookup result.
type BatchResponse struct {
	Success bool                `json:"success"`
	Count   int                 `json:"count"`
	Results []BatchItemResponse `json:"results"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// ToProductResponse converts a Product model to ProductResponse DTO.
func ToProductResponse(p *model.Product) *ProductResponse {
	specs := make([]SpecResponse, len(p.Specs))
	for i, s := range p.Specs {
		specs[i] = SpecResponse{Name: s.Name, Value: s.Value}
	}
	return &ProductResponse{
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Brand:       p.Brand,
		Category:    p.Category,
		Region:      p.Region,
		ImageURL:    p.ImageURL,
		BarcodeURL:  p.BarcodeURL,
		Specs:       specs,
	}
}

// ToExportResponse converts a Bundle model to ExportResponse DTO.
// Returns nil for a nil bundle so callers can pass it straight through.
func ToExportResponse(b *model.Bundle) *ExportResponse {
	if b == nil {
		return nil
	}
	files := []string{b.JSONFile, b.TextFile}
	if b.ImageFile != "" {
		files = append(files, b.ImageFile)
	}
	return &ExportResponse{
		Folder: b.FolderName,
		Files:  files,
	}
}

// ToSearchResponse converts a service SearchResult to SearchResponse DTO.
func ToSearchResponse(sku string, result *service.SearchResult) *SearchResponse {
	return &SearchResponse{
		Success:  true,
		SKU:      sku,
		Product:  ToProductResponse(result.Product),
		Export:   ToExportResponse(result.Bundle),
		Partial:  result.Partial,
		Warnings: result.Warnings,
	}
}
