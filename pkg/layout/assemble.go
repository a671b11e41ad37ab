// Package layout turns raw inference output into the page tree handed to
// callers, and renders it as plain text.
//
// Assembly is the only place where normalized boxes are scaled to pixel
// space. Output types carry no classification state, so whatever the model
// attached to its blocks never reaches the caller.
package layout

import (
	"strings"
	"unicode"

	"github.com/hector-sherpas/pdftext/pkg/geom"
	"github.com/hector-sherpas/pdftext/pkg/model"
	"github.com/hector-sherpas/pdftext/pkg/textclean"
)

// AssembleOptions controls structured assembly
type AssembleOptions struct {
	KeepChars  bool    // Keep per-character boxes on spans
	Sort       bool    // Reorder top-level blocks into reading order
	RowOverlap float64 // Row grouping tolerance used when sorting
}

// TextOptions controls flat text rendering
type TextOptions struct {
	Sort        bool    // Reorder blocks into reading order before joining
	KeepHyphens bool    // Keep hyphens at line ends instead of rejoining words
	RowOverlap  float64 // Row grouping tolerance used when sorting
}

// Assemble converts one page of inference output into an output page.
func Assemble(pr model.PageResult, opts AssembleOptions) Page {
	w, h := pr.Width, pr.Height

	page := Page{
		Page:     pr.Page,
		Rotation: pr.Rotation,
		Width:    w,
		Height:   h,
		BBox:     geom.Denormalize(pr.BBox, w, h),
		Blocks:   make([]Block, 0, len(pr.Blocks)),
	}

	for _, mb := range pr.Blocks {
		block := Block{
			BBox:  geom.Denormalize(mb.BBox, w, h),
			Lines: make([]Line, 0, len(mb.Lines)),
		}
		for _, ml := range mb.Lines {
			line := Line{
				BBox:  geom.Denormalize(ml.BBox, w, h),
				Spans: make([]Span, 0, len(ml.Spans)),
			}
			for _, ms := range ml.Spans {
				line.Spans = append(line.Spans, assembleSpan(ms, w, h, opts.KeepChars))
			}
			block.Lines = append(block.Lines, line)
		}
		page.Blocks = append(page.Blocks, block)
	}

	if opts.Sort {
		page.Blocks = SortBlocks(page.Blocks, opts.RowOverlap)
	}
	return page
}

func assembleSpan(ms model.Span, w, h float64, keepChars bool) Span {
	span := Span{
		BBox: geom.Denormalize(ms.BBox, w, h),
		Text: textclean.Clean(ms.Text),
	}
	if !keepChars {
		return span
	}
	span.Chars = make([]Char, 0, len(ms.Chars))
	for _, c := range ms.Chars {
		span.Chars = append(span.Chars, Char{
			BBox: geom.Denormalize(c.BBox, w, h),
			Char: c.Char,
		})
	}
	return span
}

// PageText renders one page of inference output as plain text.
//
// Lines end with a line break and blocks with a blank line. Hyphenated line
// ends are rejoined unless KeepHyphens is set.
func PageText(pr model.PageResult, opts TextOptions) string {
	blocks := pr.Blocks
	if opts.Sort {
		boxes := make([]geom.Rect, len(blocks))
		for i, b := range blocks {
			boxes[i] = geom.Denormalize(b.BBox, pr.Width, pr.Height)
		}
		sorted := make([]model.Block, 0, len(blocks))
		for _, i := range readingOrder(boxes, opts.RowOverlap) {
			sorted = append(sorted, blocks[i])
		}
		blocks = sorted
	}

	texts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		lines := make([]string, 0, len(b.Lines))
		for _, l := range b.Lines {
			lines = append(lines, lineText(l))
		}
		texts = append(texts, trimRight(textclean.JoinLines(lines, opts.KeepHyphens)))
	}
	return strings.TrimSpace(strings.Join(texts, "\n\n"))
}

func lineText(l model.Line) string {
	var sb strings.Builder
	for _, s := range l.Spans {
		sb.WriteString(s.Text)
	}
	return trimRight(textclean.NormalizeWhitespace(sb.String()))
}

func trimRight(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
