// Package geom holds the two bounding box spaces used by the extractor.
//
// Boxes produced by glyph extraction and inference are unit-normalized
// (NormRect, every value relative to the page size). Boxes handed to callers
// are in pixel space (Rect). The two are separate types so that a box can be
// converted exactly once, through Denormalize.
package geom

import (
	"encoding/json"
	"fmt"
)

// NormRect is a box in unit-normalized page coordinates.
// The origin is the top-left corner of the page.
type NormRect struct {
	X0 float64 // Left
	Y0 float64 // Top
	X1 float64 // Right
	Y1 float64 // Bottom
}

// Rect is a box in pixel coordinates with a top-left origin.
type Rect struct {
	X0 float64 // Left
	Y0 float64 // Top
	X1 float64 // Right
	Y1 float64 // Bottom
}

// Denormalize scales a normalized box to pixel space.
// Values slightly outside [0,1] are scaled as-is; no clamping happens.
func Denormalize(b NormRect, width, height float64) Rect {
	return Rect{
		X0: b.X0 * width,
		Y0: b.Y0 * height,
		X1: b.X1 * width,
		Y1: b.Y1 * height,
	}
}

// Normalize converts a pixel box into page-relative coordinates.
// A zero width or height yields a zero box.
func Normalize(r Rect, width, height float64) NormRect {
	if width == 0 || height == 0 {
		return NormRect{}
	}
	return NormRect{
		X0: r.X0 / width,
		Y0: r.Y0 / height,
		X1: r.X1 / width,
		Y1: r.Y1 / height,
	}
}

// Union returns the smallest box containing both a and b.
func (a NormRect) Union(b NormRect) NormRect {
	return NormRect{
		X0: min(a.X0, b.X0),
		Y0: min(a.Y0, b.Y0),
		X1: max(a.X1, b.X1),
		Y1: max(a.Y1, b.Y1),
	}
}

// Center returns the center point of the box.
func (a NormRect) Center() (x, y float64) {
	return (a.X0 + a.X1) / 2, (a.Y0 + a.Y1) / 2
}

// Width of the box.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height of the box.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// VerticalOverlap returns the length of the intersection of the two boxes'
// vertical ranges, or 0 when they do not intersect.
func (r Rect) VerticalOverlap(o Rect) float64 {
	top := max(r.Y0, o.Y0)
	bottom := min(r.Y1, o.Y1)
	if bottom <= top {
		return 0
	}
	return bottom - top
}

// Array returns the box as [x0, y0, x1, y1].
func (r Rect) Array() [4]float64 {
	return [4]float64{r.X0, r.Y0, r.X1, r.Y1}
}

// String formats the box the way hOCR titles do.
func (r Rect) String() string {
	return fmt.Sprintf("bbox %d %d %d %d", round(r.X0), round(r.Y0), round(r.X1), round(r.Y1))
}

// MarshalJSON encodes the box as a four element array.
func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Array())
}

// UnmarshalJSON decodes a four element array.
func (r *Rect) UnmarshalJSON(data []byte) error {
	var arr [4]float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("bbox must be [x0, y0, x1, y1]: %w", err)
	}
	*r = Rect{X0: arr[0], Y0: arr[1], X1: arr[2], Y1: arr[3]}
	return nil
}

func round(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}
