package inference

import (
	"github.com/hector-sherpas/pdftext/pkg/geom"
	"github.com/hector-sherpas/pdftext/pkg/model"
)

// FeatureCount is the width of a feature row
const FeatureCount = 19

// Feature positions within a Row
const (
	FeatBlockCenterX = iota // glyph center x - block center x
	FeatBlockRight          // glyph x0 - block x1
	FeatBlockLeft           // glyph x0 - block x0
	FeatBlockCenterY        // glyph center y - block center y
	FeatBlockBottom         // glyph y0 - block y1
	FeatBlockTop            // glyph y0 - block y0
	FeatFontMatch           // 1 when font and rotation equal the previous glyph's
	FeatLineBreak           // 1 when the glyph is a line break
	FeatSpace               // 1 when the glyph is a space or tab
	FeatLineCenterX         // glyph center x - line center x
	FeatLineRight           // glyph x0 - line x1
	FeatLineLeft            // glyph x0 - line x0
	FeatLineCenterY         // glyph center y - line center y
	FeatLineBottom          // glyph y0 - line y1
	FeatLineTop             // glyph y0 - line y0
	FeatGapX                // glyph x0 - previous x1
	FeatSpanX               // glyph x1 - previous x0
	FeatGapY                // glyph y0 - previous y1
	FeatSpanY               // glyph y1 - previous y0
)

// Row describes one glyph relative to the previous glyph and to the block
// and line being built.
type Row [FeatureCount]float64

// Probs are the class probabilities predicted for a row
type Probs [3]float64

// Class positions within Probs
const (
	ClassSame     = iota // Glyph continues the current line
	ClassNewLine         // Glyph starts a new line
	ClassNewBlock        // Glyph starts a new block
)

// accum tracks the running box of a line or block.
type accum struct {
	bbox    geom.NormRect
	set     bool
	centerX float64
	centerY float64
}

func (a *accum) add(b geom.NormRect) {
	if !a.set {
		a.bbox = b
		a.set = true
	} else {
		a.bbox = a.bbox.Union(b)
	}
	a.centerX, a.centerY = a.bbox.Center()
}

func isLineBreak(s string) bool {
	switch s {
	case "\n", "\r", "\r\n", "\f", "\u2028", "\u2029":
		return true
	}
	return false
}

func isSpace(s string) bool {
	switch s {
	case " ", "\t", "\u00a0", "\u2002", "\u2003", "\u2009", "\u3000":
		return true
	}
	return false
}

func featureRow(g, prev model.Glyph, block, line *accum) Row {
	b, p := g.BBox, prev.BBox
	cx, cy := b.Center()

	var r Row
	r[FeatBlockCenterX] = cx - block.centerX
	r[FeatBlockRight] = b.X0 - block.bbox.X1
	r[FeatBlockLeft] = b.X0 - block.bbox.X0
	r[FeatBlockCenterY] = cy - block.centerY
	r[FeatBlockBottom] = b.Y0 - block.bbox.Y1
	r[FeatBlockTop] = b.Y0 - block.bbox.Y0
	r[FeatFontMatch] = boolFeature(fontKeyOf(g) == fontKeyOf(prev))
	r[FeatLineBreak] = boolFeature(isLineBreak(g.Char))
	r[FeatSpace] = boolFeature(isSpace(g.Char))
	r[FeatLineCenterX] = cx - line.centerX
	r[FeatLineRight] = b.X0 - line.bbox.X1
	r[FeatLineLeft] = b.X0 - line.bbox.X0
	r[FeatLineCenterY] = cy - line.centerY
	r[FeatLineBottom] = b.Y0 - line.bbox.Y1
	r[FeatLineTop] = b.Y0 - line.bbox.Y0
	r[FeatGapX] = b.X0 - p.X1
	r[FeatSpanX] = b.X1 - p.X0
	r[FeatGapY] = b.Y0 - p.Y1
	r[FeatSpanY] = b.Y1 - p.Y0
	return r
}

func boolFeature(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

// fontKey identifies a span's styling; a change starts a new span.
type fontKey struct {
	name     string
	size     float64
	weight   int
	flags    int
	rotation int
}

func fontKeyOf(g model.Glyph) fontKey {
	return fontKey{
		name:     g.Font.Name,
		size:     g.Font.Size,
		weight:   g.Font.Weight,
		flags:    g.Font.Flags,
		rotation: g.Rotation,
	}
}
