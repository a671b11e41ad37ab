// Package extracttest provides an in-memory extract.Document for tests.
package extracttest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hector-sherpas/pdftext/pkg/extract"
	"github.com/hector-sherpas/pdftext/pkg/geom"
	"github.com/hector-sherpas/pdftext/pkg/model"
)

// Document serves one line of text per page. Page i reads "page <i>".
type Document struct {
	Pages     int
	Width     float64
	Height    float64
	FailPage  int   // Glyphs fails when this page is requested; -1 disables
	FailErr   error // Error returned for FailPage
	Flattened bool  // Set by FlattenForms and carried to reopened handles

	stats *Stats
}

// Stats counts handle activity across a document and its reopened copies.
type Stats struct {
	Reopens atomic.Int32
	Closes  atomic.Int32
	Flats   atomic.Int32

	mu        sync.Mutex
	Requested [][]int
}

// New returns a document with n pages of 100x200 pixels.
func New(n int) *Document {
	return &Document{Pages: n, Width: 100, Height: 200, FailPage: -1, stats: &Stats{}}
}

// Stats returns the counters shared with reopened handles.
func (d *Document) Stats() *Stats { return d.stats }

func (d *Document) PageCount() int { return d.Pages }

func (d *Document) Glyphs(ctx context.Context, pages []int) ([]model.GlyphPage, error) {
	d.stats.mu.Lock()
	d.stats.Requested = append(d.stats.Requested, append([]int(nil), pages...))
	d.stats.mu.Unlock()

	out := make([]model.GlyphPage, 0, len(pages))
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p == d.FailPage {
			return nil, d.FailErr
		}
		if p < 0 || p >= d.Pages {
			return nil, fmt.Errorf("page %d out of range", p)
		}
		out = append(out, model.GlyphPage{
			Page:   p,
			Width:  d.Width,
			Height: d.Height,
			Glyphs: TextGlyphs(fmt.Sprintf("page %d", p), 0.1, 0.1, 0.02, 0.03),
		})
	}
	return out, nil
}

func (d *Document) Reopen() (extract.Document, error) {
	d.stats.Reopens.Add(1)
	cp := *d
	return &cp, nil
}

func (d *Document) Close() error {
	d.stats.Closes.Add(1)
	return nil
}

func (d *Document) FlattenForms() error {
	d.stats.Flats.Add(1)
	d.Flattened = true
	return nil
}

// TextGlyphs lays out s as one row of glyphs starting at (x, y), each w wide
// and h tall, in normalized coordinates.
func TextGlyphs(s string, x, y, w, h float64) []model.Glyph {
	var glyphs []model.Glyph
	for _, r := range s {
		glyphs = append(glyphs, model.Glyph{
			Char:  string(r),
			BBox:  geom.NormRect{X0: x, Y0: y, X1: x + w, Y1: y + h},
			Font:  model.Font{Name: "Helvetica", Size: 10},
			Index: len(glyphs),
		})
		x += w
	}
	return glyphs
}

// EchoModel returns one block per page holding the page's glyph text as a
// single span.
var EchoModel = model.ModelFunc(func(ctx context.Context, pages []model.GlyphPage) ([]model.PageResult, error) {
	out := make([]model.PageResult, 0, len(pages))
	for _, gp := range pages {
		var text string
		box := geom.NormRect{X0: 1, Y0: 1}
		for _, g := range gp.Glyphs {
			text += g.Char
			box = box.Union(g.BBox)
		}
		span := model.Span{BBox: box, Text: text}
		out = append(out, model.PageResult{
			Page:   gp.Page,
			Width:  gp.Width,
			Height: gp.Height,
			BBox:   geom.NormRect{X1: 1, Y1: 1},
			Blocks: []model.Block{{
				BBox:  box,
				Lines: []model.Line{{BBox: box, Spans: []model.Span{span}}},
			}},
		})
	}
	return out, nil
})
