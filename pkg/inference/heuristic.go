package inference

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Weights tune the heuristic classifier. Distances are measured in glyph
// heights (vertical) or glyph widths (horizontal) of the two glyphs compared.
type Weights struct {
	LineTolerance float64 `yaml:"line_tolerance"` // Max center shift that keeps a glyph on its line
	BlockGap      float64 `yaml:"block_gap"`      // Blank space below a line that starts a new block
	ColumnGap     float64 `yaml:"column_gap"`     // Horizontal jump on one baseline that starts a new block
	Indent        float64 `yaml:"indent"`         // Offset from the block's left edge that starts a new block
	Confidence    float64 `yaml:"confidence"`     // Probability assigned to the chosen class
}

// DefaultWeights are used when no weights file is configured
var DefaultWeights = Weights{
	LineTolerance: 0.5,
	BlockGap:      0.8,
	ColumnGap:     6,
	Indent:        10,
	Confidence:    0.95,
}

// LoadWeights reads weights from a YAML file. Keys missing from the file
// keep their default values.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights
	data, err := os.ReadFile(path)
	if err != nil {
		return w, err
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return w, fmt.Errorf("parse weights %s: %w", path, err)
	}
	if err := w.validate(); err != nil {
		return w, fmt.Errorf("weights %s: %w", path, err)
	}
	return w, nil
}

func (w Weights) validate() error {
	if w.Confidence <= 0.5 || w.Confidence > 1 {
		return fmt.Errorf("confidence must be within (0.5, 1], got %v", w.Confidence)
	}
	if w.LineTolerance <= 0 || w.BlockGap < 0 || w.ColumnGap <= 0 || w.Indent <= 0 {
		return fmt.Errorf("distances must be positive: %+v", w)
	}
	return nil
}

// Classifier predicts class probabilities for a batch of rows.
// It must return one Probs per row, in row order.
type Classifier interface {
	Classify(rows []Row) ([]Probs, error)
}

// Heuristic is a geometric classifier driven by Weights.
type Heuristic struct {
	Weights Weights
}

// NewHeuristic returns a classifier using w
func NewHeuristic(w Weights) *Heuristic {
	return &Heuristic{Weights: w}
}

// Classify implements Classifier
func (h *Heuristic) Classify(rows []Row) ([]Probs, error) {
	out := make([]Probs, len(rows))
	for i := range rows {
		out[i] = h.probs(h.classify(&rows[i]))
	}
	return out, nil
}

func (h *Heuristic) classify(r *Row) int {
	w := h.Weights

	// FeatSpanY - FeatGapY is the sum of both glyph heights, likewise for x.
	height := math.Max((r[FeatSpanY]-r[FeatGapY])/2, 1e-6)
	width := math.Max((r[FeatSpanX]-r[FeatGapX])/2, 1e-6)

	if r[FeatLineBreak] == 1 {
		return ClassSame
	}

	shift := r[FeatLineCenterY] / height
	if math.Abs(shift) <= w.LineTolerance {
		if r[FeatLineRight]/width > w.ColumnGap {
			return ClassNewBlock
		}
		return ClassSame
	}

	// Moving up the page means a new column or region.
	if shift < 0 {
		return ClassNewBlock
	}

	if r[FeatLineBottom]/height > w.BlockGap {
		return ClassNewBlock
	}
	if math.Abs(r[FeatBlockLeft])/width > w.Indent {
		return ClassNewBlock
	}
	return ClassNewLine
}

func (h *Heuristic) probs(class int) Probs {
	c := h.Weights.Confidence
	rest := (1 - c) / 2
	p := Probs{rest, rest, rest}
	p[class] = c
	return p
}
