// Package inference is the default layout model.
//
// Each page gets a builder that walks its glyphs in content order. For every
// glyph after the first the builder describes the glyph relative to the
// previous one and to the open line and block, and a classifier decides
// whether the glyph continues the line, starts a new line or starts a new
// block. Rows from all pages of a call are classified together, one batch
// per step, until every page is complete.
package inference

import (
	"context"
	"errors"
	"fmt"

	"github.com/hector-sherpas/pdftext/pkg/config"
	"github.com/hector-sherpas/pdftext/pkg/model"
)

// ErrModelUnavailable is returned when the default model cannot be loaded.
var ErrModelUnavailable = errors.New("inference model unavailable")

// Model implements model.Model on top of a Classifier. It keeps no state
// between calls and is safe for concurrent use when its Classifier is.
type Model struct {
	Classifier     Classifier
	BlockThreshold float64
}

// New returns a model using c
func New(c Classifier, blockThreshold float64) *Model {
	return &Model{Classifier: c, BlockThreshold: blockThreshold}
}

// Default returns the heuristic model configured by s. Weights are read
// from s.ModelPath when it is set.
func Default(s config.Settings) (*Model, error) {
	w := DefaultWeights
	if s.ModelPath != "" {
		var err error
		if w, err = LoadWeights(s.ModelPath); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
		}
	}
	return New(NewHeuristic(w), s.BlockThreshold), nil
}

// Infer implements model.Model
func (m *Model) Infer(ctx context.Context, pages []model.GlyphPage) ([]model.PageResult, error) {
	builders := make([]*pageBuilder, len(pages))
	for i, p := range pages {
		builders[i] = newPageBuilder(p, m.BlockThreshold)
	}

	var (
		rows  []Row
		owner []int
	)
	for {
		rows, owner = rows[:0], owner[:0]
		for i, b := range builders {
			if r, ok := b.pending(); ok {
				rows = append(rows, r)
				owner = append(owner, i)
			}
		}
		if len(rows) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		probs, err := m.Classifier.Classify(rows)
		if err != nil {
			return nil, fmt.Errorf("classify %d rows: %w", len(rows), err)
		}
		if len(probs) != len(rows) {
			return nil, fmt.Errorf("classifier returned %d predictions for %d rows", len(probs), len(rows))
		}
		for k, i := range owner {
			builders[i].apply(probs[k])
		}
	}

	results := make([]model.PageResult, len(builders))
	for i, b := range builders {
		results[i] = b.finish()
	}
	return results, nil
}
