package pdfdoc

import (
	"strings"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
)

// Field layout, in multiples of the field height
const (
	fieldFontRatio = 0.7
	maxFieldFont   = 12.0
	fieldPadding   = 2.0 // Points from the field's left edge
)

// formSnapshot holds the glyphs of flattened form fields per page.
// It is never modified after FlattenForms returns.
type formSnapshot struct {
	pages map[int][]rawGlyph
}

// FlattenForms renders the values of text and choice fields as page text.
// Later calls are no-ops.
func (d *Document) FlattenForms() error {
	if d.forms != nil {
		return nil
	}

	snap := &formSnapshot{pages: make(map[int][]rawGlyph)}
	var fields int
	err := guard("flatten forms", func() {
		for n := 0; n < d.pages; n++ {
			annots := d.reader.Page(n + 1).V.Key("Annots")
			for i := 0; i < annots.Len(); i++ {
				a := annots.Index(i)
				if a.Key("Subtype").Name() != "Widget" {
					continue
				}
				glyphs := widgetGlyphs(a)
				if len(glyphs) == 0 {
					continue
				}
				snap.pages[n] = append(snap.pages[n], glyphs...)
				fields++
			}
		}
	})
	if err != nil {
		return err
	}

	d.logger.WithFields(logrus.Fields{
		"fields": fields,
		"pages":  len(snap.pages),
	}).Debug("flattened form fields")
	d.forms = snap
	return nil
}

// fieldAttr looks key up on a widget and its parent fields.
func fieldAttr(w lpdf.Value, key string) lpdf.Value {
	for v := w; !v.IsNull(); v = v.Key("Parent") {
		if r := v.Key(key); !r.IsNull() {
			return r
		}
	}
	return lpdf.Value{}
}

func fieldValue(w lpdf.Value) string {
	switch fieldAttr(w, "FT").Name() {
	case "Tx", "Ch":
	default:
		return ""
	}

	v := fieldAttr(w, "V")
	switch v.Kind() {
	case lpdf.String:
		return v.Text()
	case lpdf.Name:
		return v.Name()
	case lpdf.Array:
		parts := make([]string, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			parts = append(parts, v.Index(i).Text())
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// widgetGlyphs lays out a field value inside the widget rectangle, one
// glyph per character, lines stacked from the top.
func widgetGlyphs(w lpdf.Value) []rawGlyph {
	value := strings.TrimSpace(fieldValue(w))
	rect := w.Key("Rect")
	if value == "" || rect.Kind() != lpdf.Array || rect.Len() != 4 {
		return nil
	}
	x0, y0 := rect.Index(0).Float64(), rect.Index(1).Float64()
	x1, y1 := rect.Index(2).Float64(), rect.Index(3).Float64()
	return layoutField(value, min(x0, x1), min(y0, y1), max(x0, x1), max(y0, y1))
}

func layoutField(value string, x0, y0, x1, y1 float64) []rawGlyph {
	lines := strings.Split(strings.ReplaceAll(value, "\r\n", "\n"), "\n")
	size := min((y1-y0)*fieldFontRatio/float64(len(lines)), maxFieldFont)
	if size <= 0 {
		return nil
	}

	var out []rawGlyph
	baseline := y1 - (y1-y0-size*float64(len(lines)))/2 - ascent*size
	for _, line := range lines {
		x := x0 + fieldPadding
		for _, r := range line {
			s := string(r)
			adv := estimateAdvance(s, size)
			out = append(out, rawGlyph{s: s, font: "Helvetica", size: size, x: x, y: baseline, w: adv})
			x += adv
		}
		baseline -= size
	}
	return out
}
