package gdocai

import (
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/hector-sherpas/pdftext/pkg/geom"
)

// textFromLayout extracts text from a layout's text anchor segments
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText []rune) string {
	if layout == nil || layout.TextAnchor == nil {
		return ""
	}
	result := strings.Builder{}
	total := len(fullText)

	for _, seg := range layout.TextAnchor.TextSegments {
		start := int(seg.StartIndex)
		end := int(seg.EndIndex)
		if start < 0 {
			start = 0
		}
		if end > total {
			end = total
		}
		if start > end {
			start = end
		}
		result.WriteString(string(fullText[start:end]))
	}
	return result.String()
}

// textRange returns the span of the first text segment of a layout
func textRange(layout *documentaipb.Document_Page_Layout) (start, end int64, ok bool) {
	if layout == nil || layout.TextAnchor == nil || len(layout.TextAnchor.TextSegments) == 0 {
		return 0, 0, false
	}
	seg := layout.TextAnchor.TextSegments[0]
	return seg.StartIndex, seg.EndIndex, true
}

// isElementInParent reports whether an element's text lies within its parent's
func isElementInParent(element, parent *documentaipb.Document_Page_Layout) bool {
	es, ee, ok := textRange(element)
	if !ok {
		return false
	}
	ps, pe, ok := textRange(parent)
	if !ok {
		return false
	}
	return es >= ps && ee <= pe
}

// layoutBox returns the normalized bounding box of a layout. Pixel
// vertices are normalized with the page dimension when no normalized
// vertices are present.
func layoutBox(layout *documentaipb.Document_Page_Layout, dim *documentaipb.Document_Page_Dimension) (geom.NormRect, bool) {
	if layout == nil || layout.BoundingPoly == nil {
		return geom.NormRect{}, false
	}

	var xs, ys []float64
	if nv := layout.BoundingPoly.NormalizedVertices; len(nv) > 0 {
		for _, v := range nv {
			xs = append(xs, float64(v.X))
			ys = append(ys, float64(v.Y))
		}
	} else if dim != nil && dim.Width > 0 && dim.Height > 0 {
		for _, v := range layout.BoundingPoly.Vertices {
			xs = append(xs, float64(v.X)/float64(dim.Width))
			ys = append(ys, float64(v.Y)/float64(dim.Height))
		}
	}
	if len(xs) == 0 {
		return geom.NormRect{}, false
	}

	box := geom.NormRect{X0: xs[0], Y0: ys[0], X1: xs[0], Y1: ys[0]}
	for i := range xs {
		box = box.Union(geom.NormRect{X0: xs[i], Y0: ys[i], X1: xs[i], Y1: ys[i]})
	}
	return box, true
}
