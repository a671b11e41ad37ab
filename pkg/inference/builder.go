package inference

import (
	"strings"

	"github.com/hector-sherpas/pdftext/pkg/geom"
	"github.com/hector-sherpas/pdftext/pkg/model"
)

// pageBuilder groups the glyphs of one page into blocks, lines and spans.
//
// The first glyph is placed without a prediction. Every following glyph
// yields a feature row through pending, and is placed once apply receives
// the classifier's answer for it.
type pageBuilder struct {
	page      model.GlyphPage
	threshold float64
	next      int

	result model.PageResult
	block  model.Block
	line   model.Line
	chars  []model.Glyph

	blockBox accum
	lineBox  accum
	prev     model.Glyph
}

func newPageBuilder(page model.GlyphPage, blockThreshold float64) *pageBuilder {
	b := &pageBuilder{
		page:      page,
		threshold: blockThreshold,
		result: model.PageResult{
			Page:     page.Page,
			Rotation: page.Rotation,
			Width:    page.Width,
			Height:   page.Height,
			BBox:     geom.NormRect{X1: 1, Y1: 1},
		},
	}
	if len(page.Glyphs) > 0 {
		b.place(page.Glyphs[0])
		b.next = 1
	}
	return b
}

// pending returns the feature row for the next unplaced glyph.
func (b *pageBuilder) pending() (Row, bool) {
	if b.next >= len(b.page.Glyphs) {
		return Row{}, false
	}
	return featureRow(b.page.Glyphs[b.next], b.prev, &b.blockBox, &b.lineBox), true
}

// apply places the pending glyph according to p.
func (b *pageBuilder) apply(p Probs) {
	g := b.page.Glyphs[b.next]
	fontChanged := fontKeyOf(g) != fontKeyOf(b.prev)

	switch {
	case p[ClassSame] >= 0.5:
		if fontChanged {
			b.closeSpan()
		}
	case p[ClassNewBlock] > b.threshold:
		b.closeSpan()
		b.closeLine()
		b.closeBlock()
	case isLineBreak(b.prev.Char):
		b.closeSpan()
		b.closeLine()
	case fontChanged:
		b.closeSpan()
	}

	b.place(g)
	b.next++
}

// finish closes the open span, line and block and returns the page.
func (b *pageBuilder) finish() model.PageResult {
	b.closeSpan()
	if len(b.line.Spans) > 0 {
		b.closeLine()
	}
	if len(b.block.Lines) > 0 {
		b.closeBlock()
	}
	return b.result
}

func (b *pageBuilder) place(g model.Glyph) {
	b.chars = append(b.chars, g)
	b.lineBox.add(g.BBox)
	b.blockBox.add(g.BBox)
	b.prev = g
}

func (b *pageBuilder) closeSpan() {
	if len(b.chars) == 0 {
		return
	}
	first, last := b.chars[0], b.chars[len(b.chars)-1]

	span := model.Span{
		BBox:      first.BBox,
		Chars:     make([]model.Char, 0, len(b.chars)),
		Font:      first.Font,
		Rotation:  first.Rotation,
		CharStart: first.Index,
		CharEnd:   last.Index,
	}
	var text strings.Builder
	for _, c := range b.chars {
		span.BBox = span.BBox.Union(c.BBox)
		span.Chars = append(span.Chars, model.Char{BBox: c.BBox, Char: c.Char})
		text.WriteString(c.Char)
	}
	span.Text = text.String()

	b.line.Spans = append(b.line.Spans, span)
	b.chars = nil
}

func (b *pageBuilder) closeLine() {
	b.line.BBox = b.lineBox.bbox
	b.line.CenterX, b.line.CenterY = b.lineBox.centerX, b.lineBox.centerY
	b.block.Lines = append(b.block.Lines, b.line)
	b.line = model.Line{}
	b.lineBox = accum{}
}

func (b *pageBuilder) closeBlock() {
	b.block.BBox = b.blockBox.bbox
	b.block.CenterX, b.block.CenterY = b.blockBox.centerX, b.blockBox.centerY
	b.result.Blocks = append(b.result.Blocks, b.block)
	b.block = model.Block{}
	b.blockBox = accum{}
}
