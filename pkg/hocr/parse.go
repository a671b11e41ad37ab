package hocr

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/hector-sherpas/pdftext/pkg/geom"
)

// Parse converts raw hOCR data into a structured HOCR object.
func Parse(data []byte) (HOCR, error) {
	result := HOCR{Metadata: make(map[string]string)}

	if dec := decoderFor(declaredCharset(data)); dec != nil {
		decoded, err := dec.Bytes(data)
		if err != nil {
			return result, fmt.Errorf("failed to decode hOCR: %w", err)
		}
		data = decoded
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return result, fmt.Errorf("failed to parse hOCR: %w", err)
	}

	extractDocumentMeta(&result, doc)

	var findPages func(*html.Node)
	findPages = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocr_page") {
			result.Pages = append(result.Pages, processPage(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findPages(c)
		}
	}
	findPages(doc)

	if len(result.Pages) == 0 {
		return result, fmt.Errorf("no ocr_page elements found in hOCR data")
	}
	return result, nil
}

// declaredCharset returns the lower-cased charset named by the first
// charset= declaration, or "utf-8" when there is none
func declaredCharset(data []byte) string {
	const marker = "charset="
	i := bytes.Index(bytes.ToLower(data), []byte(marker))
	if i < 0 {
		return "utf-8"
	}
	rest := data[i+len(marker):]
	end := bytes.IndexAny(rest, "\"';> \t\r\n/")
	if end < 0 {
		end = len(rest)
	}
	enc := strings.ToLower(strings.Trim(string(rest[:end]), " "))
	if enc == "" {
		return "utf-8"
	}
	return enc
}

// decoderFor returns the decoder of a single-byte charset, nil for UTF-8
// and charsets html.Parse handles as-is
func decoderFor(charset string) *encoding.Decoder {
	switch charset {
	case "iso-8859-1", "latin1", "latin-1", "l1":
		return charmap.ISO8859_1.NewDecoder()
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder()
	}
	return nil
}

// ParseTitle breaks down an hOCR title attribute into its components
// Example input: "bbox 100 200 300 400; x_wconf 95"
func ParseTitle(title string) map[string][]string {
	result := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(part)
		if len(items) > 0 {
			result[items[0]] = items[1:]
		}
	}
	return result
}

// ParseBoundingBoxFromTitle extracts a bounding box from a title string
// Returns nil if the title carries no valid bbox
func ParseBoundingBoxFromTitle(title string) *geom.Rect {
	bbox, ok := ParseTitle(title)["bbox"]
	if !ok || len(bbox) < 4 {
		return nil
	}
	var v [4]float64
	for i := range v {
		f, err := strconv.ParseFloat(bbox[i], 64)
		if err != nil {
			return nil
		}
		v[i] = f
	}
	return &geom.Rect{X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]}
}

// extractDocumentMeta extracts document-level metadata from the head section
func extractDocumentMeta(result *HOCR, doc *html.Node) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "html":
				if lang := getAttrVal(n, "lang"); lang != "" {
					result.Language = lang
				} else if lang := getAttrVal(n, "xml:lang"); lang != "" {
					result.Language = lang
				}
			case "title":
				result.Title = extractTextContent(n)
			case "meta":
				name := getAttrVal(n, "name")
				content := getAttrVal(n, "content")
				if strings.HasPrefix(name, "ocr-") && content != "" {
					result.Metadata[name] = content
				}
			case "body":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
}

// processPage extracts page information and its children
func processPage(n *html.Node) Page {
	page := Page{ID: getAttrVal(n, "id")}

	title := getAttrVal(n, "title")
	if bbox := ParseBoundingBoxFromTitle(title); bbox != nil {
		page.BBox = *bbox
	}
	props := ParseTitle(title)
	if v, ok := props["ppageno"]; ok && len(v) > 0 {
		page.PageNumber, _ = strconv.Atoi(v[0])
	}
	if v, ok := props["textangle"]; ok && len(v) > 0 {
		page.Rotation, _ = strconv.Atoi(v[0])
	}

	for _, c := range collect(n, "ocr_carea", "ocr_par", "ocr_line") {
		switch {
		case hasClass(c, "ocr_carea"):
			page.Areas = append(page.Areas, processArea(c))
		case hasClass(c, "ocr_par"):
			page.Paragraphs = append(page.Paragraphs, processParagraph(c))
		default:
			page.Lines = append(page.Lines, processLine(c))
		}
	}
	return page
}

// processArea extracts area information and its children
func processArea(n *html.Node) Area {
	area := Area{ID: getAttrVal(n, "id")}
	if bbox := ParseBoundingBoxFromTitle(getAttrVal(n, "title")); bbox != nil {
		area.BBox = *bbox
	}

	for _, c := range collect(n, "ocr_par", "ocr_line") {
		if hasClass(c, "ocr_par") {
			area.Paragraphs = append(area.Paragraphs, processParagraph(c))
		} else {
			area.Lines = append(area.Lines, processLine(c))
		}
	}
	return area
}

// processParagraph extracts paragraph information and its lines
func processParagraph(n *html.Node) Paragraph {
	paragraph := Paragraph{ID: getAttrVal(n, "id")}
	if bbox := ParseBoundingBoxFromTitle(getAttrVal(n, "title")); bbox != nil {
		paragraph.BBox = *bbox
	}

	for _, c := range collect(n, "ocr_line") {
		paragraph.Lines = append(paragraph.Lines, processLine(c))
	}
	return paragraph
}

// processLine extracts line information and its words
func processLine(n *html.Node) Line {
	line := Line{ID: getAttrVal(n, "id")}
	if bbox := ParseBoundingBoxFromTitle(getAttrVal(n, "title")); bbox != nil {
		line.BBox = *bbox
	}

	for _, c := range collect(n, "ocrx_word") {
		word := Word{ID: getAttrVal(c, "id"), Text: extractTextContent(c)}
		if bbox := ParseBoundingBoxFromTitle(getAttrVal(c, "title")); bbox != nil {
			word.BBox = *bbox
		}
		line.Words = append(line.Words, word)
	}
	return line
}

// collect returns the outermost descendants of n carrying one of the
// classes, in document order
func collect(n *html.Node, classes ...string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			for _, class := range classes {
				if hasClass(node, class) {
					found = append(found, node)
					return
				}
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return found
}

// hasClass reports whether the node's class attribute lists class
func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttrVal(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// extractTextContent gets all text from a node and its children
func extractTextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// Get the value of a specific attribute from a node
func getAttrVal(n *html.Node, attrName string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrName {
			return attr.Val
		}
	}
	return ""
}
