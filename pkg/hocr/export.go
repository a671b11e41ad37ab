package hocr

import (
	"fmt"
	"strings"

	"github.com/hector-sherpas/pdftext/pkg/layout"
)

// System is the ocr-system name written into generated documents
const System = "pdftext"

// Options control document level metadata of FromPages
type Options struct {
	Title    string // Document title, usually the source file name
	Language string // Document language, empty for none
}

// FromPages builds an hOCR document from assembled pages. Each block
// becomes an area holding a single paragraph, each span a word. Spans
// without visible text are dropped.
func FromPages(pages []layout.Page, opts Options) *HOCR {
	doc := &HOCR{
		Title:    opts.Title,
		Language: opts.Language,
		Metadata: map[string]string{
			"ocr-system":          System,
			"ocr-capabilities":    "ocr_page ocr_carea ocr_par ocr_line ocrx_word",
			"ocr-number-of-pages": fmt.Sprint(len(pages)),
		},
	}

	for i, p := range pages {
		n := i + 1
		page := Page{
			ID:         fmt.Sprintf("page_%d", n),
			PageNumber: p.Page,
			Rotation:   p.Rotation,
			BBox:       p.BBox,
		}

		var lineCount, wordCount int
		for bi, b := range p.Blocks {
			par := Paragraph{
				ID:   fmt.Sprintf("par_%d_%d", n, bi+1),
				BBox: b.BBox,
			}
			for _, l := range b.Lines {
				lineCount++
				line := Line{
					ID:   fmt.Sprintf("line_%d_%d", n, lineCount),
					BBox: l.BBox,
				}
				for _, s := range l.Spans {
					text := strings.TrimSpace(s.Text)
					if text == "" {
						continue
					}
					wordCount++
					line.Words = append(line.Words, Word{
						ID:   fmt.Sprintf("word_%d_%d", n, wordCount),
						Text: text,
						BBox: s.BBox,
					})
				}
				par.Lines = append(par.Lines, line)
			}
			page.Areas = append(page.Areas, Area{
				ID:         fmt.Sprintf("block_%d_%d", n, bi+1),
				BBox:       b.BBox,
				Paragraphs: []Paragraph{par},
			})
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc
}
