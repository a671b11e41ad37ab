// Package partition splits a page range into contiguous chunks for parallel
// extraction.
package partition

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultWorkerPageThreshold is the minimum number of pages a worker should
// receive before another worker is added.
const DefaultWorkerPageThreshold = 10

// ErrInvalidRange is returned by ParseRange for malformed expressions.
var ErrInvalidRange = errors.New("invalid page range")

// Chunk is a contiguous slice of a page range assigned to one worker
type Chunk struct {
	Index int   // Position of the chunk in the plan
	Pages []int // Zero-based page indices
}

// Plan splits pages into at most workers chunks.
//
// The worker count is capped so that every worker gets at least threshold
// pages on average. Concatenating the chunks in order reconstructs pages.
func Plan(pages []int, workers, threshold int) []Chunk {
	if len(pages) == 0 {
		return nil
	}
	if threshold < 1 {
		threshold = 1
	}
	workers = min(workers, len(pages)/threshold)
	if workers <= 1 {
		return []Chunk{{Index: 0, Pages: pages}}
	}

	per := (len(pages) + workers - 1) / workers
	chunks := make([]Chunk, 0, workers)
	for start := 0; start < len(pages); start += per {
		end := min(start+per, len(pages))
		chunks = append(chunks, Chunk{Index: len(chunks), Pages: pages[start:end]})
	}
	return chunks
}

// Range returns the pages 0..n-1.
func Range(n int) []int {
	pages := make([]int, n)
	for i := range pages {
		pages[i] = i
	}
	return pages
}

// ParseRange parses a comma separated list of zero-based pages and inclusive
// ranges, for example "0-3,7". The result keeps the order given and rejects
// duplicates.
func ParseRange(expr string) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	var pages []int
	seen := make(map[int]bool)
	add := func(p int) error {
		if seen[p] {
			return fmt.Errorf("%w: page %d listed twice", ErrInvalidRange, p)
		}
		seen[p] = true
		pages = append(pages, p)
		return nil
	}

	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isSpan := strings.Cut(part, "-")
		first, err := parsePage(lo)
		if err != nil {
			return nil, err
		}
		last := first
		if isSpan {
			if last, err = parsePage(hi); err != nil {
				return nil, err
			}
			if last < first {
				return nil, fmt.Errorf("%w: %q ends before it starts", ErrInvalidRange, part)
			}
		}
		for p := first; p <= last; p++ {
			if err := add(p); err != nil {
				return nil, err
			}
		}
	}
	return pages, nil
}

func parsePage(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a page number", ErrInvalidRange, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative page %d", ErrInvalidRange, n)
	}
	return n, nil
}
