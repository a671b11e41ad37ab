package hocr

import (
	"reflect"
	"strings"
	"testing"

	"github.com/hector-sherpas/pdftext/pkg/geom"
	"github.com/hector-sherpas/pdftext/pkg/layout"
)

func samplePages() []layout.Page {
	return []layout.Page{{
		Page:     3,
		Rotation: 90,
		Width:    600,
		Height:   800,
		BBox:     geom.Rect{X1: 600, Y1: 800},
		Blocks: []layout.Block{
			{
				BBox: geom.Rect{X0: 10, Y0: 20, X1: 300, Y1: 60},
				Lines: []layout.Line{
					{
						BBox: geom.Rect{X0: 10, Y0: 20, X1: 300, Y1: 40},
						Spans: []layout.Span{
							{BBox: geom.Rect{X0: 10, Y0: 20, X1: 100, Y1: 40}, Text: "Hello "},
							{BBox: geom.Rect{X0: 110, Y0: 20, X1: 300, Y1: 40}, Text: "world"},
						},
					},
					{
						BBox: geom.Rect{X0: 10, Y0: 40, X1: 200, Y1: 60},
						Spans: []layout.Span{
							{BBox: geom.Rect{X0: 10, Y0: 40, X1: 200, Y1: 60}, Text: "A & B <c>"},
						},
					},
				},
			},
			{
				BBox: geom.Rect{X0: 10, Y0: 700, X1: 90, Y1: 720},
				Lines: []layout.Line{{
					BBox:  geom.Rect{X0: 10, Y0: 700, X1: 90, Y1: 720},
					Spans: []layout.Span{{BBox: geom.Rect{X0: 10, Y0: 700, X1: 90, Y1: 720}, Text: "Footer"}},
				}},
			},
		},
	}}
}

func TestRoundTrip(t *testing.T) {
	doc := FromPages(samplePages(), Options{Title: "doc.pdf", Language: "en"})

	out, err := Generate(doc)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, want := range []string{
		`class="ocr_page" id="page_1" title="bbox 0 0 600 800; ppageno 3; textangle 90"`,
		`class="ocrx_word" id="word_1_3" title="bbox 10 40 200 60">A &amp; B &lt;c&gt;</span>`,
		`<meta name="ocr-system" content="pdftext"/>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	parsed, err := Parse([]byte(out))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Title != "doc.pdf" || parsed.Language != "en" {
		t.Errorf("title/lang = %q/%q", parsed.Title, parsed.Language)
	}
	if got := parsed.Metadata["ocr-number-of-pages"]; got != "1" {
		t.Errorf("ocr-number-of-pages = %q, want 1", got)
	}

	got := parsed.LayoutPages()
	if want := samplePages(); !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", got, want)
	}
}

func TestFromPages_DropsBlankSpans(t *testing.T) {
	pages := []layout.Page{{
		BBox: geom.Rect{X1: 100, Y1: 100},
		Blocks: []layout.Block{{
			Lines: []layout.Line{{
				Spans: []layout.Span{{Text: "a"}, {Text: " \n"}, {Text: "b"}},
			}},
		}},
	}}
	doc := FromPages(pages, Options{})

	words := doc.Pages[0].Areas[0].Paragraphs[0].Lines[0].Words
	if len(words) != 2 || words[0].Text != "a" || words[1].Text != "b" {
		t.Errorf("words = %+v", words)
	}
	if words[1].ID != "word_1_2" {
		t.Errorf("second word id = %q", words[1].ID)
	}
}

func TestParse_Latin1(t *testing.T) {
	data := []byte("<html><head><meta http-equiv=\"Content-Type\" content=\"text/html; charset=ISO-8859-1\"></head><body>" +
		"<div class='ocr_page' title='bbox 0 0 100 100'>" +
		"<span class='ocr_line' title='bbox 0 0 50 10'><span class='ocrx_word' title='bbox 0 0 50 10'>caf\xe9</span></span>" +
		"</div></body></html>")

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Pages) != 1 || len(doc.Pages[0].Lines) != 1 {
		t.Fatalf("pages = %+v", doc.Pages)
	}
	if got := doc.Pages[0].Lines[0].Words[0].Text; got != "caf\u00e9" {
		t.Errorf("word = %q", got)
	}

	pages := doc.LayoutPages()
	if len(pages[0].Blocks) != 1 || pages[0].Width != 100 {
		t.Errorf("layout pages = %+v", pages)
	}
}

func TestParse_NoPages(t *testing.T) {
	if _, err := Parse([]byte("<html><body><p>nothing</p></body></html>")); err == nil {
		t.Fatal("expected error for document without ocr_page")
	}
}

func TestGenerate_Nil(t *testing.T) {
	if _, err := Generate(nil); err == nil {
		t.Fatal("expected error for nil document")
	}
}

func TestParseBoundingBoxFromTitle(t *testing.T) {
	tests := []struct {
		title string
		want  *geom.Rect
	}{
		{"bbox 1 2 3 4; x_wconf 95", &geom.Rect{X0: 1, Y0: 2, X1: 3, Y1: 4}},
		{"x_wconf 95; bbox 1.5 2 3 4", &geom.Rect{X0: 1.5, Y0: 2, X1: 3, Y1: 4}},
		{"bbox 1 2 3", nil},
		{"bbox a b c d", nil},
		{"", nil},
	}
	for _, tt := range tests {
		if got := ParseBoundingBoxFromTitle(tt.title); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseBoundingBoxFromTitle(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func TestText(t *testing.T) {
	doc := &HOCR{Pages: []Page{
		{Paragraphs: []Paragraph{{Lines: []Line{
			{Words: []Word{{Text: "The"}, {Text: "exam-"}}},
			{Words: []Word{{Text: "ple"}, {Text: "shows"}}},
		}}}},
		{Lines: []Line{{Words: []Word{{Text: "Second"}}}}},
	}}

	if got := Text(doc, false); got != "The example shows\nSecond" {
		t.Errorf("Text = %q", got)
	}
	if got := Text(doc, true); got != "The exam-\nple shows\nSecond" {
		t.Errorf("Text keep = %q", got)
	}
}
