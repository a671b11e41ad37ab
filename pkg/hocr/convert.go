package hocr

import (
	"strings"

	"github.com/hector-sherpas/pdftext/pkg/geom"
	"github.com/hector-sherpas/pdftext/pkg/layout"
	"github.com/hector-sherpas/pdftext/pkg/textclean"
)

// LayoutPages converts the document back to assembled pages. Every
// paragraph becomes a block; lines found directly under an area are grouped
// into one block, lines directly under a page get a block each. Words of a
// line are separated by a single space.
func (h *HOCR) LayoutPages() []layout.Page {
	pages := make([]layout.Page, 0, len(h.Pages))
	for _, p := range h.Pages {
		page := layout.Page{
			Page:     p.PageNumber,
			Rotation: p.Rotation,
			Width:    p.BBox.X1,
			Height:   p.BBox.Y1,
			BBox:     p.BBox,
			Blocks:   []layout.Block{},
		}

		for _, area := range p.Areas {
			for _, par := range area.Paragraphs {
				page.Blocks = append(page.Blocks, toBlock(par.BBox, par.Lines))
			}
			if len(area.Lines) > 0 {
				page.Blocks = append(page.Blocks, toBlock(area.BBox, area.Lines))
			}
		}
		for _, par := range p.Paragraphs {
			page.Blocks = append(page.Blocks, toBlock(par.BBox, par.Lines))
		}
		for _, line := range p.Lines {
			page.Blocks = append(page.Blocks, toBlock(line.BBox, []Line{line}))
		}
		pages = append(pages, page)
	}
	return pages
}

func toBlock(bbox geom.Rect, lines []Line) layout.Block {
	block := layout.Block{BBox: bbox, Lines: make([]layout.Line, 0, len(lines))}
	for _, l := range lines {
		line := layout.Line{BBox: l.BBox, Spans: make([]layout.Span, 0, len(l.Words))}
		for i, w := range l.Words {
			text := w.Text
			if i < len(l.Words)-1 {
				text += " "
			}
			line.Spans = append(line.Spans, layout.Span{BBox: w.BBox, Text: text})
		}
		block.Lines = append(block.Lines, line)
	}
	return block
}

// Text extracts the plain text of the document. Lines are separated by
// newlines, blocks by a blank line and pages by a newline. Words split
// across lines are rejoined unless keepHyphens is set.
func Text(doc *HOCR, keepHyphens bool) string {
	var pages []string
	for _, p := range doc.LayoutPages() {
		var blocks []string
		for _, b := range p.Blocks {
			var lines []string
			for _, l := range b.Lines {
				var sb strings.Builder
				for _, s := range l.Spans {
					sb.WriteString(s.Text)
				}
				lines = append(lines, strings.TrimSpace(sb.String()))
			}
			if text := strings.TrimSpace(textclean.JoinLines(lines, keepHyphens)); text != "" {
				blocks = append(blocks, text)
			}
		}
		pages = append(pages, strings.Join(blocks, "\n\n"))
	}
	return strings.Join(pages, "\n")
}
