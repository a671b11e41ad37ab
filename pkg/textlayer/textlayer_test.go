package textlayer

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/hector-sherpas/pdftext/pkg/geom"
	"github.com/hector-sherpas/pdftext/pkg/hocr"
	"github.com/hector-sherpas/pdftext/pkg/layout"
)

var pageObject = regexp.MustCompile(`/Type\s*/Page\b`)

// letterPDF builds a two page US Letter document
func letterPDF(t *testing.T) []byte {
	t.Helper()
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPage()
	pdf.Text(72, 100, "Cover")
	pdf.AddPage()
	pdf.Text(72, 100, "Hello")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("build PDF: %v", err)
	}
	return buf.Bytes()
}

// secondPage is the text of page index 1 at half the PDF resolution
func secondPage() []layout.Page {
	box := geom.Rect{X0: 36, Y0: 45, X1: 75, Y1: 52}
	return []layout.Page{{
		Page:   1,
		Width:  306,
		Height: 396,
		BBox:   geom.Rect{X1: 306, Y1: 396},
		Blocks: []layout.Block{{
			BBox: box,
			Lines: []layout.Line{{
				BBox:  box,
				Spans: []layout.Span{{BBox: box, Text: "Hello"}},
			}},
		}},
	}}
}

func quietConfig() (Config, *test.Hook) {
	logger, hook := test.NewNullLogger()
	cfg := DefaultConfig()
	cfg.Logger = logger
	return cfg, hook
}

func TestApply_LayoutPages(t *testing.T) {
	cfg, hook := quietConfig()
	src := letterPDF(t)

	out, err := Apply(src, secondPage(), cfg)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if n := len(pageObject.FindAll(out, -1)); n != 2 {
		t.Errorf("output has %d pages, want 2", n)
	}

	check, err := CheckExistingLayers(out, cfg.LayerName)
	if err != nil {
		t.Fatalf("CheckExistingLayers: %v", err)
	}
	if !check.HasLayer || check.LayerName != "Extracted Text (Page 2)" {
		t.Errorf("layer check = %+v", check)
	}

	if _, err := Apply(out, secondPage(), cfg); !errors.Is(err, ErrLayerExists) {
		t.Fatalf("second Apply error = %v, want ErrLayerExists", err)
	}

	cfg.Force = true
	if _, err := Apply(out, secondPage(), cfg); err != nil {
		t.Fatalf("forced Apply: %v", err)
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.WarnLevel {
		t.Errorf("expected a warning when reapplying, got %+v", entry)
	}
}

func TestApply_HOCRBytes(t *testing.T) {
	cfg, _ := quietConfig()
	doc := hocr.FromPages(secondPage(), hocr.Options{Title: "letter.pdf"})
	html, err := hocr.Generate(doc)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	out, err := Apply(letterPDF(t), []byte(html), cfg)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	layers, err := DetectLayers(out)
	if err != nil {
		t.Fatalf("DetectLayers: %v", err)
	}
	if len(layers) != 1 || layers[0] != "Extracted Text (Page 2)" {
		t.Errorf("layers = %q", layers)
	}
}

func TestApply_Errors(t *testing.T) {
	cfg, _ := quietConfig()
	src := letterPDF(t)

	outside := secondPage()
	outside[0].Page = 5

	zeroStart := cfg
	zeroStart.StartPage = 0

	tests := []struct {
		name   string
		pdf    []byte
		source interface{}
		cfg    Config
		want   string
	}{
		{"unsupported source", src, 42, cfg, "unsupported text layer source type: int"},
		{"nil hocr", src, (*hocr.HOCR)(nil), cfg, "nil"},
		{"bad hocr", src, []byte("<html></html>"), cfg, "failed to parse hOCR"},
		{"empty pdf", nil, secondPage(), cfg, "input PDF data is empty"},
		{"no pages", src, []layout.Page{}, cfg, "no pages"},
		{"start page", src, secondPage(), zeroStart, "start page"},
		{"page outside", src, outside, cfg, "outside the PDF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(tt.pdf, tt.source, tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Apply error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestApply_UnreadablePDF(t *testing.T) {
	cfg, _ := quietConfig()
	if _, err := Apply([]byte("%PDF-1.4 garbage"), secondPage(), cfg); err == nil {
		t.Fatal("expected error for unreadable PDF")
	}
}

func TestCheckExistingLayers(t *testing.T) {
	data := []byte("1 0 obj\n<</Type /OCG /Name (Extracted Text \\(Page 3\\))>>\nendobj\n" +
		"2 0 obj\n<</Type /OCG /Name (\xfe\xff\x00O\x00C\x00R)>>\nendobj\n" +
		"3 0 obj\n<</Type /Font /Name (F1)>>\nendobj\n")

	layers, err := DetectLayers(data)
	if err != nil {
		t.Fatalf("DetectLayers: %v", err)
	}
	if len(layers) != 2 || layers[0] != "Extracted Text (Page 3)" || layers[1] != "OCR" {
		t.Fatalf("layers = %q", layers)
	}

	check, err := CheckExistingLayers(data, "Extracted Text")
	if err != nil {
		t.Fatalf("CheckExistingLayers: %v", err)
	}
	if !check.HasLayer || check.LayerName != "Extracted Text (Page 3)" {
		t.Errorf("check = %+v", check)
	}

	other, err := CheckExistingLayers(data, "Other")
	if err != nil {
		t.Fatalf("CheckExistingLayers: %v", err)
	}
	if other.HasLayer || len(other.Warnings) != 2 {
		t.Errorf("check = %+v, want two warnings and no layer", other)
	}

	if _, err := DetectLayers(nil); err == nil {
		t.Error("expected error for empty data")
	}
}

func TestReadLiteral(t *testing.T) {
	data := []byte("a\\(b\\) (nested) \\101\\nz) tail")
	got, end := readLiteral(data, 0)
	if string(got) != "a(b) (nested) A\nz" {
		t.Errorf("readLiteral = %q", got)
	}
	if string(data[end:]) != " tail" {
		t.Errorf("rest = %q", data[end:])
	}

	if _, end := readLiteral([]byte("unterminated"), 0); end != -1 {
		t.Errorf("end = %d, want -1", end)
	}
}
