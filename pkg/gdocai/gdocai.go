// Package gdocai is a layout model backed by Google Document AI.
//
// Document AI reads the PDF itself, so the Model is bound to the document's
// bytes when it is created. Infer only uses the page numbers and sizes of
// the glyph pages it receives: it asks Document AI for exactly those pages
// and maps the returned blocks, lines and tokens into page results. Each
// token becomes a span; Document AI reports no character boxes, so a
// token's characters share its box in equal slices.
//
// Usage requirements:
//
// - Google Cloud project with Document AI API enabled
// - Document AI processor configured for OCR or layout parsing
// - Authentication via GOOGLE_APPLICATION_CREDENTIALS or default credentials
package gdocai

import (
	"context"
	"fmt"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/sirupsen/logrus"

	"github.com/hector-sherpas/pdftext/pkg/geom"
	"github.com/hector-sherpas/pdftext/pkg/model"
)

// Model implements model.Model with Document AI. It is safe for
// concurrent use when its Processor is.
type Model struct {
	processor Processor
	name      string
	pdf       []byte
	logger    logrus.FieldLogger
}

// NewModel returns a model that sends pages of pdf to the processor with
// resource name name (see ProcessorName).
func NewModel(p Processor, name string, pdf []byte, logger logrus.FieldLogger) *Model {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Model{processor: p, name: name, pdf: pdf, logger: logger}
}

// Infer implements model.Model
func (m *Model) Infer(ctx context.Context, pages []model.GlyphPage) ([]model.PageResult, error) {
	if len(pages) == 0 {
		return nil, nil
	}

	numbers := make([]int32, len(pages))
	for i, p := range pages {
		numbers[i] = int32(p.Page + 1)
	}

	doc, err := m.processor.Process(ctx, processRequest(m.name, m.pdf, numbers))
	if err != nil {
		return nil, err
	}
	m.logger.WithFields(logrus.Fields{
		"requested": len(pages),
		"returned":  len(doc.GetPages()),
	}).Debug("document ai response")

	byNumber := make(map[int32]*documentaipb.Document_Page, len(doc.GetPages()))
	for _, p := range doc.GetPages() {
		byNumber[p.PageNumber] = p
	}

	text := []rune(doc.GetText())
	results := make([]model.PageResult, len(pages))
	for i, gp := range pages {
		dp, ok := byNumber[numbers[i]]
		if !ok && len(doc.GetPages()) == len(pages) {
			dp, ok = doc.GetPages()[i], true
		}
		if !ok {
			return nil, fmt.Errorf("document ai returned no result for page %d", gp.Page)
		}
		results[i] = pageResult(gp, dp, text)
	}
	return results, nil
}

func pageResult(gp model.GlyphPage, page *documentaipb.Document_Page, text []rune) model.PageResult {
	pr := model.PageResult{
		Page:     gp.Page,
		Rotation: gp.Rotation,
		Width:    gp.Width,
		Height:   gp.Height,
		BBox:     geom.NormRect{X1: 1, Y1: 1},
	}

	assigned := make([]bool, len(page.Lines))
	for _, b := range page.Blocks {
		block := model.Block{}
		if box, ok := layoutBox(b.Layout, page.Dimension); ok {
			block.BBox = box
		}
		for li, l := range page.Lines {
			if assigned[li] || !isElementInParent(l.Layout, b.Layout) {
				continue
			}
			assigned[li] = true
			block.Lines = append(block.Lines, convertLine(l, page, text, gp))
		}
		if len(block.Lines) == 0 {
			continue
		}
		block.CenterX, block.CenterY = block.BBox.Center()
		pr.Blocks = append(pr.Blocks, block)
	}

	// Lines outside every block each get a block of their own.
	for li, l := range page.Lines {
		if assigned[li] {
			continue
		}
		line := convertLine(l, page, text, gp)
		pr.Blocks = append(pr.Blocks, model.Block{
			BBox:    line.BBox,
			Lines:   []model.Line{line},
			CenterX: line.CenterX,
			CenterY: line.CenterY,
		})
	}
	return pr
}

func convertLine(l *documentaipb.Document_Page_Line, page *documentaipb.Document_Page, text []rune, gp model.GlyphPage) model.Line {
	line := model.Line{}
	if box, ok := layoutBox(l.Layout, page.Dimension); ok {
		line.BBox = box
	}
	line.CenterX, line.CenterY = line.BBox.Center()

	for _, t := range page.Tokens {
		if !isElementInParent(t.Layout, l.Layout) {
			continue
		}
		box, _ := layoutBox(t.Layout, page.Dimension)
		tokenText := textFromLayout(t.Layout, text)
		start, _, _ := textRange(t.Layout)

		line.Spans = append(line.Spans, model.Span{
			BBox:      box,
			Text:      tokenText,
			Chars:     splitChars(tokenText, box),
			Font:      model.Font{Name: "documentai", Size: (box.Y1 - box.Y0) * gp.Height},
			Rotation:  gp.Rotation,
			CharStart: int(start),
			CharEnd:   int(start) + len([]rune(tokenText)) - 1,
		})
	}
	return line
}

// splitChars divides a token box evenly between its characters.
func splitChars(s string, box geom.NormRect) []model.Char {
	runes := []rune(s)
	if len(runes) == 0 {
		return nil
	}
	step := (box.X1 - box.X0) / float64(len(runes))
	chars := make([]model.Char, len(runes))
	for i, r := range runes {
		x := box.X0 + step*float64(i)
		chars[i] = model.Char{
			BBox: geom.NormRect{X0: x, Y0: box.Y0, X1: x + step, Y1: box.Y1},
			Char: string(r),
		}
	}
	return chars
}
