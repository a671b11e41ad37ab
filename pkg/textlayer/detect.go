package textlayer

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	ocgName = regexp.MustCompile(`/Name\s*\(`)
	ocgType = regexp.MustCompile(`/Type\s*/OCG\b`)
)

// DetectLayers finds the names of optional content groups in raw PDF
// data. Groups inside compressed object streams are not seen.
func DetectLayers(pdfData []byte) ([]string, error) {
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("empty PDF data")
	}

	var layers []string
	seen := make(map[string]bool)
	for _, loc := range ocgName.FindAllIndex(pdfData, -1) {
		raw, end := readLiteral(pdfData, loc[1])
		if end < 0 || !isOCG(pdfData, loc[0], end) {
			continue
		}
		name := decodeTextString(raw)
		if !seen[name] {
			seen[name] = true
			layers = append(layers, name)
		}
	}
	return layers, nil
}

// isOCG reports whether the dictionary around [start,end) has /Type /OCG
func isOCG(data []byte, start, end int) bool {
	open := bytes.LastIndex(data[:start], []byte("<<"))
	if open < 0 {
		return false
	}
	closing := bytes.Index(data[end:], []byte(">>"))
	if closing < 0 {
		return false
	}
	return ocgType.Match(data[open : end+closing])
}

// readLiteral reads a PDF literal string starting just after its opening
// parenthesis. It returns the unescaped bytes and the index after the
// closing parenthesis, or -1 when the string is unterminated.
func readLiteral(data []byte, i int) ([]byte, int) {
	var out []byte
	depth := 1
	for i < len(data) {
		c := data[i]
		switch c {
		case '\\':
			i++
			if i >= len(data) {
				return nil, -1
			}
			switch e := data[i]; e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r', '\n':
				// line continuation
				if e == '\r' && i+1 < len(data) && data[i+1] == '\n' {
					i++
				}
			default:
				if e >= '0' && e <= '7' {
					v := 0
					n := 0
					for n < 3 && i < len(data) && data[i] >= '0' && data[i] <= '7' {
						v = v*8 + int(data[i]-'0')
						i++
						n++
					}
					out = append(out, byte(v))
					continue
				}
				out = append(out, e)
			}
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out, i + 1
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
		i++
	}
	return nil, -1
}

// decodeTextString decodes a PDF text string: UTF-16BE when it starts with
// a byte order mark, PDFDocEncoding (read as Latin-1) otherwise
func decodeTextString(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		s, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(b)
		if err == nil {
			return string(s)
		}
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// LayerCheckResult contains the results of checking for text layers
type LayerCheckResult struct {
	Layers    []string // All detected layers
	HasLayer  bool     // True if the named text layer exists
	LayerName string   // Name of the detected layer (if any)
	Warnings  []string // Layers that look like text layers under another name
}

// CheckExistingLayers checks a PDF for a layer named layerName, either
// exactly or with a page suffix
func CheckExistingLayers(pdfData []byte, layerName string) (LayerCheckResult, error) {
	result := LayerCheckResult{}

	layers, err := DetectLayers(pdfData)
	if err != nil {
		return result, fmt.Errorf("cannot analyze layers: %w", err)
	}
	result.Layers = layers

	pageLayerPattern := regexp.MustCompile(fmt.Sprintf(`^%s\s*\(Page\s*\d+\)$`, regexp.QuoteMeta(layerName)))

	for _, layer := range layers {
		if layer == layerName || pageLayerPattern.MatchString(layer) {
			result.HasLayer = true
			result.LayerName = layer
			break
		}

		lower := strings.ToLower(layer)
		if (strings.Contains(lower, "ocr") || strings.Contains(lower, "text")) &&
			!strings.HasPrefix(layer, layerName) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("existing layer might contain text: %s", layer))
		}
	}
	return result, nil
}
