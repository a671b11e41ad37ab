package partition

import (
	"errors"
	"reflect"
	"testing"
)

func sizes(chunks []Chunk) []int {
	out := make([]int, len(chunks))
	for i, c := range chunks {
		out[i] = len(c.Pages)
	}
	return out
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name      string
		pages     int
		workers   int
		threshold int
		want      []int
	}{
		{"single worker", 30, 1, 10, []int{30}},
		{"zero workers", 30, 0, 10, []int{30}},
		{"capped by threshold", 25, 8, 10, []int{13, 12}},
		{"below threshold", 9, 4, 10, []int{9}},
		{"uneven split", 10, 4, 3, []int{4, 4, 2}},
		{"even split", 40, 4, 10, []int{10, 10, 10, 10}},
		{"threshold below one", 3, 8, 0, []int{1, 1, 1}},
		{"fewer chunks than workers", 9, 4, 2, []int{3, 3, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Plan(Range(tt.pages), tt.workers, tt.threshold)
			if got := sizes(chunks); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("chunk sizes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlan_Reconstructs(t *testing.T) {
	pages := []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31}
	for workers := 1; workers <= 12; workers++ {
		chunks := Plan(pages, workers, 2)

		var got []int
		for i, c := range chunks {
			if c.Index != i {
				t.Errorf("workers=%d: chunk %d has index %d", workers, i, c.Index)
			}
			if len(c.Pages) == 0 {
				t.Errorf("workers=%d: chunk %d is empty", workers, i)
			}
			got = append(got, c.Pages...)
		}
		if !reflect.DeepEqual(got, pages) {
			t.Errorf("workers=%d: concatenation = %v, want %v", workers, got, pages)
		}
		if limit := max(1, min(workers, len(pages)/2)); len(chunks) > limit {
			t.Errorf("workers=%d: %d chunks exceeds cap %d", workers, len(chunks), limit)
		}
	}
}

func TestPlan_Empty(t *testing.T) {
	if chunks := Plan(nil, 4, 1); len(chunks) != 0 {
		t.Errorf("Plan(nil) = %v, want no chunks", chunks)
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		expr    string
		want    []int
		wantErr bool
	}{
		{"", nil, false},
		{"0", []int{0}, false},
		{"0-3,7", []int{0, 1, 2, 3, 7}, false},
		{" 4 , 1-2 ", []int{4, 1, 2}, false},
		{"3-1", nil, true},
		{"1,1", nil, true},
		{"0-2,2", nil, true},
		{"a", nil, true},
		{"-1", nil, true},
		{"1-", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ParseRange(tt.expr)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRange) {
					t.Fatalf("ParseRange(%q) error = %v, want ErrInvalidRange", tt.expr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRange(%q) error = %v", tt.expr, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseRange(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}
