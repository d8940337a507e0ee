package model

import (
	"encoding/json"
	"time"
)

// Spec is a single key/value specification pair as reported upstream.
type Spec struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Product is the normalized result of one upstream lookup.
// It is immutable after creation; Raw retains the complete upstream
// payload for export.
type Product struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Brand       string          `json:"brand,omitempty"`
	Category    string          `json:"category,omitempty"`
	Region      string          `json:"region,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	BarcodeURL  string          `json:"barcodeUrl,omitempty"`
	Specs       []Spec          `json:"specs,omitempty"`
	Raw         json.RawMessage `json:"-"`
	RetrievedAt time.Time       `json:"retrieved_at"`
}

// Bundle describes the on-disk artifact set exported for one product.
// A repeat export for the same code overwrites the bundle wholesale.
type Bundle struct {
	FolderName string `json:"folder_name"`
	FolderPath string `json:"-"`
	JSONFile   string `json:"json_file"`
	TextFile   string `json:"text_file"`
	ImageFile  string `json:"image_file,omitempty"`
}
