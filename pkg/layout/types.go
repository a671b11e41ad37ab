package layout

import "github.com/hector-sherpas/pdftext/pkg/geom"

// Page is one assembled page of extracted text
type Page struct {
	Page     int       `json:"page"`     // Zero-based page index
	Rotation int       `json:"rotation"` // Page rotation in degrees
	Width    float64   `json:"width"`    // Page width in pixels
	Height   float64   `json:"height"`   // Page height in pixels
	BBox     geom.Rect `json:"bbox"`     // Page box
	Blocks   []Block   `json:"blocks"`   // Blocks in model or reading order
}

// Block is a group of lines, usually a paragraph or a column fragment
type Block struct {
	BBox  geom.Rect `json:"bbox"`
	Lines []Line    `json:"lines"`
}

// Line is a row of spans
type Line struct {
	BBox  geom.Rect `json:"bbox"`
	Spans []Span    `json:"spans"`
}

// Span is a run of text with uniform styling
type Span struct {
	BBox  geom.Rect `json:"bbox"`
	Text  string    `json:"text"`
	Chars []Char    `json:"chars,omitempty"` // Only set when characters are kept
}

// Char is a single character and its box
type Char struct {
	BBox geom.Rect `json:"bbox"`
	Char string    `json:"char"`
}
