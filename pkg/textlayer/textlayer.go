// Package textlayer makes PDFs searchable by drawing extracted text as an
// invisible layer over the original pages.
//
// The text is positioned word by word at the boxes of the extracted spans,
// so it can be searched and selected where it appears on the page. Each
// page's text lives in its own optional content group, which compatible
// readers can toggle.
//
// The source of the text is either assembled pages or hOCR (raw or parsed).
// A PDF that already carries a layer with the configured name is rejected
// unless Config.Force is set.
package textlayer

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
	"github.com/sirupsen/logrus"

	"github.com/hector-sherpas/pdftext/pkg/hocr"
	"github.com/hector-sherpas/pdftext/pkg/layout"
)

// ErrLayerExists is returned when the PDF already has the text layer
var ErrLayerExists = errors.New("text layer already exists")

// Apply draws the text of source onto a copy of the PDF and returns the new
// document. source is []layout.Page, hocr.HOCR, *hocr.HOCR or raw hOCR
// ([]byte). Pages are matched to PDF pages through their page index and
// cfg.StartPage; PDF pages without text are copied unchanged.
func Apply(pdfData []byte, source interface{}, cfg Config) ([]byte, error) {
	pages, err := pagesOf(source)
	if err != nil {
		return nil, err
	}

	if len(pdfData) == 0 {
		return nil, fmt.Errorf("input PDF data is empty")
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("text layer source contains no pages")
	}
	if cfg.StartPage < 1 {
		return nil, fmt.Errorf("start page must be at least 1, got %d", cfg.StartPage)
	}
	if cfg.LayerName == "" {
		return nil, fmt.Errorf("layer name is empty")
	}
	if cfg.Font.Name == "" {
		cfg.Font = DefaultFont
	}
	log := cfg.logger()

	check, err := CheckExistingLayers(pdfData, cfg.LayerName)
	if err != nil {
		return nil, fmt.Errorf("layer detection failed: %w", err)
	}
	if len(check.Layers) > 0 {
		log.WithField("layers", check.Layers).Debug("existing layers detected")
	}
	for _, warning := range check.Warnings {
		log.Warn(warning)
	}

	// Enforce safety check unless force override is requested
	if check.HasLayer && !cfg.Force {
		return nil, fmt.Errorf("%w: %q, use force to reapply", ErrLayerExists, check.LayerName)
	} else if check.HasLayer {
		log.WithField("layer", check.LayerName).Warn("reapplying text layer; the PDF will hold duplicate text")
	}

	out, err := overlay(pdfData, pages, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("error modifying existing PDF: %w", err)
	}
	return out, nil
}

// pagesOf converts any accepted source to layout pages
func pagesOf(source interface{}) ([]layout.Page, error) {
	switch s := source.(type) {
	case []layout.Page:
		return s, nil
	case []byte:
		doc, err := hocr.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("failed to parse hOCR data: %w", err)
		}
		return doc.LayoutPages(), nil
	case *hocr.HOCR:
		if s == nil {
			return nil, fmt.Errorf("hOCR document is nil")
		}
		return s.LayoutPages(), nil
	case hocr.HOCR:
		return s.LayoutPages(), nil
	default:
		return nil, fmt.Errorf("unsupported text layer source type: %T", source)
	}
}

// overlay imports every page of the PDF and draws the text layer of the
// pages that have one
func overlay(pdfData []byte, pages []layout.Page, cfg Config, log logrus.FieldLogger) (out []byte, err error) {
	// gofpdi panics on documents it cannot read
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("cannot import PDF: %v", r)
		}
	}()

	pdf := fpdf.New("P", "pt", "", "")
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(pdfData))

	tpl := importer.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
	sizes := importer.GetPageSizes()
	count := len(sizes)

	byNumber := make(map[int]layout.Page, len(pages))
	for _, p := range pages {
		n := p.Page + cfg.StartPage
		if n < 1 || n > count {
			return nil, fmt.Errorf("page %d is outside the PDF (%d pages)", n, count)
		}
		byNumber[n] = p
	}

	for n := 1; n <= count; n++ {
		if n > 1 {
			tpl = importer.ImportPageFromStream(pdf, &rs, n, "/MediaBox")
		}
		w, h := sizes[n]["/MediaBox"]["w"], sizes[n]["/MediaBox"]["h"]

		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
		importer.UseImportedTemplate(pdf, tpl, 0, 0, w, h)

		page, ok := byNumber[n]
		if !ok {
			continue
		}
		sx, sy := 1.0, 1.0
		if page.Width > 0 && page.Height > 0 {
			sx, sy = w/page.Width, h/page.Height
		}
		scale := func(x, y float64) (float64, float64) {
			return x * sx, y * sy
		}
		if err := drawLayer(pdf, page, cfg, n, scale); err != nil {
			return nil, fmt.Errorf("failed to draw text layer for page %d: %w", n, err)
		}
		log.WithFields(logrus.Fields{"page": n, "blocks": len(page.Blocks)}).Debug("text layer drawn")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
