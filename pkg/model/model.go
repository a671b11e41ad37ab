// Package model defines the records exchanged between glyph extraction,
// inference and assembly.
//
// Everything in this package is in unit-normalized page coordinates
// (geom.NormRect). The hierarchy mirrors what an inference model produces:
//
//	PageResult > Blocks > Lines > Spans > Chars
//
// Blocks, lines and spans also carry transient fields used while the tree is
// being built (centers, fonts, character offsets). None of them survive
// assembly.
package model

import (
	"context"

	"github.com/hector-sherpas/pdftext/pkg/geom"
)

// Font describes the styling of a glyph.
type Font struct {
	Name   string  // Font resource or base font name
	Size   float64 // Font size in points
	Weight int     // Font weight when known (400 regular, 700 bold), 0 otherwise
	Flags  int     // Descriptor flags when known
}

// Glyph is one character drawn on a page.
type Glyph struct {
	Char      string        // UTF-8 text of the glyph
	BBox      geom.NormRect // Normalized glyph box
	Font      Font          // Styling
	Rotation  int           // Rotation in degrees
	Index     int           // Position of the glyph in page order
	Synthetic bool          // Generated space or line break, not drawn in the document
}

// GlyphPage holds the glyphs of one page together with its geometry.
type GlyphPage struct {
	Page     int     // Zero-based page index in the document
	Rotation int     // Page rotation in degrees
	Width    float64 // Page width in pixels
	Height   float64 // Page height in pixels
	Glyphs   []Glyph // Glyphs in content order
}

// PageResult is the inference output for one page.
type PageResult struct {
	Page     int
	Rotation int
	Width    float64
	Height   float64
	BBox     geom.NormRect
	Blocks   []Block
}

// Block is a group of lines.
type Block struct {
	BBox    geom.NormRect
	Lines   []Line
	CenterX float64
	CenterY float64
}

// Line is a group of spans on a shared baseline.
type Line struct {
	BBox    geom.NormRect
	Spans   []Span
	CenterX float64
	CenterY float64
}

// Span is a run of glyphs with uniform styling.
type Span struct {
	BBox      geom.NormRect
	Text      string
	Chars     []Char
	Font      Font
	Rotation  int
	CharStart int // Index of the first glyph
	CharEnd   int // Index of the last glyph
}

// Char is a single character kept inside a span.
type Char struct {
	BBox geom.NormRect
	Char string
}

// Model turns glyph pages into classified page results.
//
// Infer must return exactly one PageResult per input page, in input order.
// Implementations are shared by concurrent workers and must not keep
// per-call state on the receiver.
type Model interface {
	Infer(ctx context.Context, pages []GlyphPage) ([]PageResult, error)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(ctx context.Context, pages []GlyphPage) ([]PageResult, error)

// Infer calls f.
func (f ModelFunc) Infer(ctx context.Context, pages []GlyphPage) ([]PageResult, error) {
	return f(ctx, pages)
}
