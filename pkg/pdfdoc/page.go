package pdfdoc

import (
	"context"
	"fmt"
	"math"
	"strings"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/hector-sherpas/pdftext/pkg/geom"
	"github.com/hector-sherpas/pdftext/pkg/model"
)

// Layout constants, in multiples of the font size
const (
	ascent        = 0.8  // Baseline to glyph top
	advance       = 0.5  // Estimated advance when the font has no widths
	spaceAdvance  = 0.28 // Estimated advance of a space
	spaceGap      = 0.15 // Horizontal gap read as a word break
	maxSpaceWidth = 0.3  // Width cap of a synthesized space
	baselineShift = 0.5  // Vertical move read as a line break
)

// Default page size (US Letter) for pages without a usable MediaBox
const (
	defaultWidth  = 612.0
	defaultHeight = 792.0
)

// pageGeom maps PDF user space to top-left display coordinates.
type pageGeom struct {
	x0, y0   float64 // MediaBox origin
	w, h     float64 // Unrotated size
	rotation int     // Clockwise display rotation, a multiple of 90
}

// size returns the displayed page size.
func (g pageGeom) size() (float64, float64) {
	if g.rotation == 90 || g.rotation == 270 {
		return g.h, g.w
	}
	return g.w, g.h
}

// point maps a user space point to display coordinates.
func (g pageGeom) point(x, y float64) (float64, float64) {
	u := x - g.x0
	v := g.h - (y - g.y0)
	switch g.rotation {
	case 90:
		return g.h - v, u
	case 180:
		return g.w - u, g.h - v
	case 270:
		return v, g.w - u
	}
	return u, v
}

// box maps a user space rectangle to a normalized display box.
func (g pageGeom) box(x0, y0, x1, y1 float64) geom.NormRect {
	ax, ay := g.point(x0, y0)
	bx, by := g.point(x1, y1)
	w, h := g.size()
	return geom.Normalize(geom.Rect{
		X0: min(ax, bx),
		Y0: min(ay, by),
		X1: max(ax, bx),
		Y1: max(ay, by),
	}, w, h)
}

// inherited looks key up on the page and its ancestors.
func inherited(p lpdf.Page, key string) lpdf.Value {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		if r := v.Key(key); !r.IsNull() {
			return r
		}
	}
	return lpdf.Value{}
}

func readGeom(p lpdf.Page) pageGeom {
	g := pageGeom{w: defaultWidth, h: defaultHeight}

	mb := inherited(p, "MediaBox")
	if mb.Kind() == lpdf.Array && mb.Len() == 4 {
		x0, y0 := mb.Index(0).Float64(), mb.Index(1).Float64()
		x1, y1 := mb.Index(2).Float64(), mb.Index(3).Float64()
		if w, h := math.Abs(x1-x0), math.Abs(y1-y0); w > 0 && h > 0 {
			g = pageGeom{x0: min(x0, x1), y0: min(y0, y1), w: w, h: h}
		}
	}

	rot := int(inherited(p, "Rotate").Int64()) % 360
	if rot < 0 {
		rot += 360
	}
	if rot%90 == 0 {
		g.rotation = rot
	}
	return g
}

// rawGlyph is a character in PDF user space with its baseline origin.
type rawGlyph struct {
	s         string
	font      string
	size      float64
	x, y, w   float64
	synthetic bool
}

// Glyphs extracts the glyphs of the given zero-based pages, in request order.
func (d *Document) Glyphs(ctx context.Context, pages []int) ([]model.GlyphPage, error) {
	out := make([]model.GlyphPage, 0, len(pages))
	for _, n := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if n < 0 || n >= d.pages {
			return nil, fmt.Errorf("page %d out of range [0, %d)", n, d.pages)
		}

		var gp model.GlyphPage
		err := guard(fmt.Sprintf("page %d", n), func() { gp = d.page(n) })
		if err != nil {
			return nil, err
		}
		out = append(out, gp)
	}
	return out, nil
}

func (d *Document) page(n int) model.GlyphPage {
	p := d.reader.Page(n + 1)
	g := readGeom(p)
	w, h := g.size()

	raw := contentGlyphs(p.Content().Text)
	if d.forms != nil {
		raw = append(raw, d.forms.pages[n]...)
	}
	raw = withBreaks(raw)

	gp := model.GlyphPage{
		Page:     n,
		Rotation: g.rotation,
		Width:    w,
		Height:   h,
		Glyphs:   make([]model.Glyph, 0, len(raw)),
	}
	for _, r := range raw {
		gp.Glyphs = append(gp.Glyphs, model.Glyph{
			Char:      r.s,
			BBox:      g.box(r.x, r.y-(1-ascent)*r.size, r.x+r.w, r.y+ascent*r.size),
			Font:      fontOf(r.font, r.size),
			Rotation:  g.rotation,
			Index:     len(gp.Glyphs),
			Synthetic: r.synthetic,
		})
	}
	return gp
}

// contentGlyphs converts text records to raw glyphs. Records without a
// width that share the origin of the previous record are laid out after it.
func contentGlyphs(texts []lpdf.Text) []rawGlyph {
	out := make([]rawGlyph, 0, len(texts))
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		size := t.FontSize
		if size <= 0 {
			size = 1
		}
		r := rawGlyph{s: t.S, font: t.Font, size: size, x: t.X, y: t.Y, w: t.W}
		if r.w <= 0 {
			r.w = estimateAdvance(t.S, size)
			if n := len(out); n > 0 {
				prev := out[n-1]
				if sameOrigin(prev, t) {
					r.x = prev.x + prev.w
				}
			}
		}
		out = append(out, r)
	}
	return out
}

// sameOrigin reports whether t was drawn at the origin prev was drawn at,
// which the PDF library does for fonts without width tables.
func sameOrigin(prev rawGlyph, t lpdf.Text) bool {
	if math.Abs(prev.y-t.Y) > 0.01 {
		return false
	}
	// prev.x already includes earlier advances.
	return t.X <= prev.x+0.01
}

func estimateAdvance(s string, size float64) float64 {
	if strings.TrimSpace(s) == "" {
		return spaceAdvance * size
	}
	return advance * size
}

// withBreaks inserts space glyphs across word gaps and line break glyphs
// where the baseline moves.
func withBreaks(raw []rawGlyph) []rawGlyph {
	if len(raw) == 0 {
		return raw
	}
	out := make([]rawGlyph, 0, len(raw)+len(raw)/4)
	out = append(out, raw[0])
	for _, r := range raw[1:] {
		prev := out[len(out)-1]
		size := min(prev.size, r.size)
		end := prev.x + prev.w

		switch {
		case math.Abs(r.y-prev.y) > baselineShift*size || r.x < prev.x-size:
			if prev.s != "\n" {
				out = append(out, rawGlyph{s: "\n", font: prev.font, size: prev.size, x: end, y: prev.y, synthetic: true})
			}
		case r.x-end > spaceGap*size && !isBlank(prev.s) && !isBlank(r.s):
			w := min(r.x-end, maxSpaceWidth*size)
			out = append(out, rawGlyph{s: " ", font: prev.font, size: prev.size, x: end, y: prev.y, w: w, synthetic: true})
		}
		out = append(out, r)
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func fontOf(name string, size float64) model.Font {
	f := model.Font{Name: name, Size: size, Weight: 400}
	lower := strings.ToLower(name)
	if strings.Contains(lower, "bold") || strings.Contains(lower, "black") || strings.Contains(lower, "heavy") {
		f.Weight = 700
	}
	if strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
		f.Flags |= 1 << 6
	}
	return f
}
