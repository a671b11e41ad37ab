package hocr

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"golang.org/x/net/html"
)

//go:embed templates/hocr.tmpl
var templateFS embed.FS

var hocrTemplate = template.Must(template.New("hocr.tmpl").Funcs(template.FuncMap{
	"esc": html.EscapeString,
}).ParseFS(templateFS, "templates/hocr.tmpl"))

// Generate creates an hOCR HTML document from the HOCR struct
func Generate(doc *HOCR) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("HOCR document is nil")
	}

	var buf bytes.Buffer
	if err := hocrTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("error rendering hOCR template: %w", err)
	}
	return buf.String(), nil
}
