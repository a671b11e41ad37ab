package inference

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hector-sherpas/pdftext/pkg/config"
	"github.com/hector-sherpas/pdftext/pkg/geom"
	"github.com/hector-sherpas/pdftext/pkg/model"
)

var (
	same     = Probs{0.9, 0.05, 0.05}
	newLine  = Probs{0.1, 0.8, 0.1}
	newBlock = Probs{0.05, 0.05, 0.9}
)

type classifierFunc func(rows []Row) ([]Probs, error)

func (f classifierFunc) Classify(rows []Row) ([]Probs, error) { return f(rows) }

// constant answers p for every row.
func constant(p Probs) Classifier {
	return classifierFunc(func(rows []Row) ([]Probs, error) {
		out := make([]Probs, len(rows))
		for i := range out {
			out[i] = p
		}
		return out, nil
	})
}

func glyph(char string, x0, y0, x1, y1 float64) model.Glyph {
	return model.Glyph{
		Char: char,
		BBox: geom.NormRect{X0: x0, Y0: y0, X1: x1, Y1: y1},
		Font: model.Font{Name: "Helvetica", Size: 10},
	}
}

// row lays out s left to right at y with 0.01 x 0.02 glyphs.
func row(s string, x, y float64) []model.Glyph {
	var out []model.Glyph
	for _, r := range s {
		if r == '\n' {
			out = append(out, glyph("\n", x, y, x, y+0.02))
			continue
		}
		out = append(out, glyph(string(r), x, y, x+0.01, y+0.02))
		x += 0.01
	}
	return out
}

func page(n int, glyphs ...[]model.Glyph) model.GlyphPage {
	gp := model.GlyphPage{Page: n, Width: 600, Height: 800}
	for _, g := range glyphs {
		gp.Glyphs = append(gp.Glyphs, g...)
	}
	for i := range gp.Glyphs {
		gp.Glyphs[i].Index = i
	}
	return gp
}

func texts(pr model.PageResult) [][]string {
	var out [][]string
	for _, b := range pr.Blocks {
		var lines []string
		for _, l := range b.Lines {
			var s string
			for _, sp := range l.Spans {
				s += sp.Text
			}
			lines = append(lines, s)
		}
		out = append(out, lines)
	}
	return out
}

func infer(t *testing.T, m *Model, pages ...model.GlyphPage) []model.PageResult {
	t.Helper()
	res, err := m.Infer(context.Background(), pages)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if len(res) != len(pages) {
		t.Fatalf("got %d results for %d pages", len(res), len(pages))
	}
	return res
}

func TestInfer_StateMachine(t *testing.T) {
	p := page(0, row("ab\n", 0.1, 0.1), row("cd", 0.1, 0.13))

	tests := []struct {
		name string
		c    Classifier
		want [][]string
	}{
		{"same keeps one line", constant(same), [][]string{{"ab\ncd"}}},
		{"new line needs a break glyph", constant(newLine), [][]string{{"ab\n", "cd"}}},
		{"new block on every glyph", constant(newBlock), [][]string{{"a"}, {"b"}, {"\n"}, {"c"}, {"d"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := infer(t, New(tt.c, config.DefaultBlockThreshold), p)
			if got := texts(res[0]); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("blocks = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInfer_BlockThreshold(t *testing.T) {
	p := page(0, row("ab", 0.1, 0.1))
	weak := Probs{0.1, 0.2, 0.7}

	res := infer(t, New(constant(weak), 0.8), p)
	if n := len(res[0].Blocks); n != 1 {
		t.Errorf("threshold 0.8: %d blocks, want 1", n)
	}
	res = infer(t, New(constant(weak), 0.5), p)
	if n := len(res[0].Blocks); n != 2 {
		t.Errorf("threshold 0.5: %d blocks, want 2", n)
	}
}

func TestInfer_FontChangeSplitsSpan(t *testing.T) {
	glyphs := row("abcd", 0.1, 0.1)
	glyphs[2].Font.Name = "Helvetica-Bold"
	glyphs[3].Font.Name = "Helvetica-Bold"

	for _, c := range []Classifier{constant(same), constant(newLine)} {
		res := infer(t, New(c, config.DefaultBlockThreshold), page(0, glyphs))
		spans := res[0].Blocks[0].Lines[0].Spans
		if len(spans) != 2 || spans[0].Text != "ab" || spans[1].Text != "cd" {
			t.Fatalf("spans = %+v", spans)
		}
		if spans[1].Font.Name != "Helvetica-Bold" || spans[1].CharStart != 2 || spans[1].CharEnd != 3 {
			t.Errorf("second span = font %q chars %d..%d", spans[1].Font.Name, spans[1].CharStart, spans[1].CharEnd)
		}
	}
}

func TestInfer_Boxes(t *testing.T) {
	res := infer(t, New(constant(newLine), config.DefaultBlockThreshold), page(0, row("ab\n", 0.1, 0.1), row("c", 0.2, 0.13)))
	b := res[0].Blocks[0]

	want := geom.NormRect{X0: 0.1, Y0: 0.1, X1: 0.21, Y1: 0.15}
	if !nearNorm(b.BBox, want) {
		t.Errorf("block bbox = %+v, want %+v", b.BBox, want)
	}
	if cx, cy := want.Center(); !approx(b.CenterX, cx) || !approx(b.CenterY, cy) {
		t.Errorf("block center = %v,%v want %v,%v", b.CenterX, b.CenterY, cx, cy)
	}
	if line := b.Lines[1]; !nearNorm(line.BBox, geom.NormRect{X0: 0.2, Y0: 0.13, X1: 0.21, Y1: 0.15}) {
		t.Errorf("second line bbox = %+v", line.BBox)
	}
	if chars := b.Lines[0].Spans[0].Chars; len(chars) != 3 || chars[1].Char != "b" {
		t.Errorf("chars = %+v", chars)
	}
	if res[0].Width != 600 || res[0].Height != 800 {
		t.Errorf("page size = %vx%v", res[0].Width, res[0].Height)
	}
}

func TestInfer_BatchesAcrossPages(t *testing.T) {
	var batches []int
	c := classifierFunc(func(rows []Row) ([]Probs, error) {
		batches = append(batches, len(rows))
		return constant(same).Classify(rows)
	})

	pages := []model.GlyphPage{
		page(4, row("abc", 0.1, 0.1)),
		page(5, row("abcde", 0.1, 0.1)),
		page(6),
	}
	res := infer(t, New(c, config.DefaultBlockThreshold), pages...)

	if want := []int{2, 2, 1, 1}; !reflect.DeepEqual(batches, want) {
		t.Errorf("batch sizes = %v, want %v", batches, want)
	}
	for i, r := range res {
		if r.Page != pages[i].Page {
			t.Errorf("result %d is page %d, want %d", i, r.Page, pages[i].Page)
		}
	}
	if len(res[2].Blocks) != 0 {
		t.Errorf("empty page produced %d blocks", len(res[2].Blocks))
	}
}

func TestInfer_ClassifierErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := classifierFunc(func(rows []Row) ([]Probs, error) { return nil, boom })
	short := classifierFunc(func(rows []Row) ([]Probs, error) { return nil, nil })

	p := page(0, row("ab", 0.1, 0.1))
	if _, err := New(failing, 0.8).Infer(context.Background(), []model.GlyphPage{p}); !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
	if _, err := New(short, 0.8).Infer(context.Background(), []model.GlyphPage{p}); err == nil {
		t.Error("short prediction batch accepted")
	}
}

func TestInfer_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(constant(same), 0.8).Infer(ctx, []model.GlyphPage{page(0, row("ab", 0.1, 0.1))})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestHeuristic_Paragraphs(t *testing.T) {
	p := page(0,
		row("ab\n", 0.1, 0.10),
		row("cd\n", 0.1, 0.125),
		row("ef", 0.1, 0.2),
	)
	m, err := Default(config.Default())
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	res := infer(t, m, p)
	want := [][]string{{"ab\n", "cd\n"}, {"ef"}}
	if got := texts(res[0]); !reflect.DeepEqual(got, want) {
		t.Errorf("blocks = %q, want %q", got, want)
	}
}

func TestHeuristic_Columns(t *testing.T) {
	p := page(0,
		row("left", 0.1, 0.5),
		row("top", 0.6, 0.1),
	)
	m, err := Default(config.Default())
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	res := infer(t, m, p)
	want := [][]string{{"left"}, {"top"}}
	if got := texts(res[0]); !reflect.DeepEqual(got, want) {
		t.Errorf("blocks = %q, want %q", got, want)
	}
}

func TestDefault_Weights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yml")
	if err := os.WriteFile(path, []byte("block_gap: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := config.Default()
	s.ModelPath = path
	m, err := Default(s)
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	h, ok := m.Classifier.(*Heuristic)
	if !ok {
		t.Fatalf("classifier is %T", m.Classifier)
	}
	want := DefaultWeights
	want.BlockGap = 5
	if h.Weights != want {
		t.Errorf("weights = %+v, want %+v", h.Weights, want)
	}
	if m.BlockThreshold != s.BlockThreshold {
		t.Errorf("block threshold = %v, want %v", m.BlockThreshold, s.BlockThreshold)
	}
}

func TestDefault_Unavailable(t *testing.T) {
	dir := t.TempDir()
	invalid := filepath.Join(dir, "invalid.yml")
	if err := os.WriteFile(invalid, []byte("confidence: 0.2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{filepath.Join(dir, "missing.yml"), invalid} {
		s := config.Default()
		s.ModelPath = path
		if _, err := Default(s); !errors.Is(err, ErrModelUnavailable) {
			t.Errorf("Default(%s) error = %v, want ErrModelUnavailable", filepath.Base(path), err)
		}
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

func nearNorm(a, b geom.NormRect) bool {
	return approx(a.X0, b.X0) && approx(a.Y0, b.Y0) && approx(a.X1, b.X1) && approx(a.Y1, b.Y1)
}
