package textlayer

import (
	"fmt"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/hector-sherpas/pdftext/pkg/geom"
	"github.com/hector-sherpas/pdftext/pkg/layout"
)

// layerTitle formats the per-page layer name
func layerTitle(base string, pageNum int) string {
	return fmt.Sprintf("%s (Page %d)", base, pageNum)
}

// drawLayer draws the text of one page onto its own layer. transform maps
// page pixel coordinates to PDF user space.
func drawLayer(
	pdf *fpdf.Fpdf,
	page layout.Page,
	cfg Config,
	pageNum int,
	transform func(x, y float64) (float64, float64),
) error {
	layer := pdf.AddLayer(layerTitle(cfg.LayerName, pageNum), true)
	pdf.BeginLayer(layer)
	pdf.SetFont(cfg.Font.Name, cfg.Font.Style, cfg.Font.Size)

	if cfg.Debug {
		pdf.SetTextColor(255, 0, 0) // highlight text in red
	} else {
		pdf.SetAlpha(0.0, "Normal") // hide text from normal view
	}

	encodingErrors := 0
	wordCount := 0
	for _, block := range page.Blocks {
		for _, line := range block.Lines {
			for _, span := range line.Spans {
				text := strings.TrimSpace(span.Text)
				if text == "" {
					continue
				}
				if !drawWord(pdf, text, span.BBox, transform, cfg) {
					encodingErrors++
				}
				wordCount++
			}
		}
	}

	if !cfg.Debug {
		pdf.SetAlpha(1.0, "Normal")
	}
	pdf.EndLayer()

	// Report encoding errors if more than a threshold
	if wordCount > 0 && encodingErrors > wordCount/10 {
		return fmt.Errorf("character encoding issues in %d of %d words",
			encodingErrors, wordCount)
	}
	return nil
}

// drawWord renders a single word stretched over its box. It reports
// whether the text encoded to ISO-8859-1 without replacements.
func drawWord(pdf *fpdf.Fpdf, text string, box geom.Rect,
	transform func(x, y float64) (float64, float64), cfg Config) bool {

	x, y := transform(box.X0, box.Y0)
	x2, y2 := transform(box.X1, box.Y1)
	wordWidth := x2 - x

	// Core fonts only cover a single-byte encoding
	encoded, err := charmap.ISO8859_1.NewEncoder().String(text)
	ok := err == nil
	if !ok {
		encoded, _ = encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder()).String(text)
	}

	strWidth := pdf.GetStringWidth(encoded)
	if strWidth > 0 && wordWidth > 0 {
		pdf.SetFontSize(cfg.Font.Size * wordWidth / strWidth)
	}

	fontSize, _ := pdf.GetFontSize()
	baseline := y + fontSize*cfg.Font.AscentRatio

	pdf.Text(x, baseline, encoded)
	pdf.SetFontSize(cfg.Font.Size)

	if cfg.Debug {
		pdf.Rect(x, y, wordWidth, y2-y, "D")
	}
	return ok
}
