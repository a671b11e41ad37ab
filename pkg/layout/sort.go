package layout

import (
	"sort"

	"github.com/hector-sherpas/pdftext/pkg/geom"
)

// DefaultRowOverlap is the share of the shorter block's height two blocks
// must overlap vertically to be placed on the same row.
const DefaultRowOverlap = 0.5

// SortBlocks returns the blocks in reading order: top to bottom by row, left
// to right inside a row. The input slice is not modified and blocks that
// compare equal keep their relative order.
func SortBlocks(blocks []Block, overlap float64) []Block {
	boxes := make([]geom.Rect, len(blocks))
	for i, b := range blocks {
		boxes[i] = b.BBox
	}

	sorted := make([]Block, 0, len(blocks))
	for _, i := range readingOrder(boxes, overlap) {
		sorted = append(sorted, blocks[i])
	}
	return sorted
}

// row is a group of boxes sharing a vertical band
type row struct {
	top, bottom float64
	members     []int
}

func (r *row) accepts(b geom.Rect, overlap float64) bool {
	h := b.Height()
	rh := r.bottom - r.top
	if h <= 0 {
		return b.Y0 >= r.top && b.Y0 <= r.bottom
	}
	if rh <= 0 {
		return r.top >= b.Y0 && r.top <= b.Y1
	}
	shared := geom.Rect{Y0: r.top, Y1: r.bottom}.VerticalOverlap(b)
	return shared > overlap*min(h, rh)
}

func (r *row) add(i int, b geom.Rect) {
	r.members = append(r.members, i)
	r.top = min(r.top, b.Y0)
	r.bottom = max(r.bottom, b.Y1)
}

// readingOrder returns the indices of boxes in reading order.
func readingOrder(boxes []geom.Rect, overlap float64) []int {
	if overlap < 0 {
		overlap = 0
	}

	byTop := make([]int, len(boxes))
	for i := range byTop {
		byTop[i] = i
	}
	sort.SliceStable(byTop, func(a, b int) bool {
		return boxes[byTop[a]].Y0 < boxes[byTop[b]].Y0
	})

	var rows []*row
	for _, i := range byTop {
		b := boxes[i]
		if n := len(rows); n > 0 && rows[n-1].accepts(b, overlap) {
			rows[n-1].add(i, b)
			continue
		}
		rows = append(rows, &row{top: b.Y0, bottom: b.Y1, members: []int{i}})
	}

	order := make([]int, 0, len(boxes))
	for _, r := range rows {
		// Members were added top-down; restore input order before sorting by x
		// so that ties keep the caller's order.
		sort.Ints(r.members)
		sort.SliceStable(r.members, func(a, b int) bool {
			return boxes[r.members[a]].X0 < boxes[r.members[b]].X0
		})
		order = append(order, r.members...)
	}
	return order
}
