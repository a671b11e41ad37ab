// Package pdftext extracts text from PDF documents.
//
// Three entry points share one pipeline: open the source, optionally flatten
// form fields, split the page range across workers, extract glyphs and run
// the layout model on each chunk, then assemble the ordered page results.
//
//	text, err := pdftext.FlatText(ctx, "report.pdf", pdftext.DefaultOptions())
//
// FlatText joins page texts with a line break, PaginatedFlatText returns
// one string per page and StructuredOutput returns the block, line, span
// and character tree with pixel coordinates. Extract runs the pipeline once
// and renders any of the three from the same model output.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hector-sherpas/pdftext/pkg/config"
	"github.com/hector-sherpas/pdftext/pkg/extract"
	"github.com/hector-sherpas/pdftext/pkg/inference"
	"github.com/hector-sherpas/pdftext/pkg/layout"
	"github.com/hector-sherpas/pdftext/pkg/model"
	"github.com/hector-sherpas/pdftext/pkg/partition"
	"github.com/hector-sherpas/pdftext/pkg/pdfdoc"
)

// ErrInvalidInput is returned for unsupported sources and bad page ranges.
var ErrInvalidInput = errors.New("invalid input")

// Options controls extraction
type Options struct {
	Sort         bool               // Reorder blocks into reading order
	KeepHyphens  bool               // Keep line-end hyphens in flat text
	KeepChars    bool               // Keep per-character boxes in structured output
	FlattenForms bool               // Render form field values as page text
	Model        model.Model        // Layout model, nil for the default
	PageRange    []int              // Zero-based pages, nil for all
	Workers      int                // Parallel workers, 0 or 1 runs serially
	Settings     config.Settings    // Thresholds; zero fields take config.Default() values
	Logger       logrus.FieldLogger // nil for the standard logger
}

// DefaultOptions returns serial extraction with built-in settings
func DefaultOptions() Options {
	return Options{
		Settings: config.Default(),
		Logger:   logrus.StandardLogger(),
	}
}

func (o Options) settings() config.Settings {
	return o.Settings.WithDefaults()
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger == nil {
		return logrus.StandardLogger()
	}
	return o.Logger
}

// Result is the model output of one extraction run. Its renderings read
// the same page results, so the pipeline runs once however many are needed.
type Result struct {
	Pages []model.PageResult
	opts  Options
}

// Extract runs the pipeline over source and keeps the page results.
//
// source is a file path, the PDF content as []byte, or an open
// extract.Document. Documents opened here are closed before returning.
func Extract(ctx context.Context, source interface{}, opts Options) (*Result, error) {
	doc, owned, err := open(source, opts)
	if err != nil {
		return nil, err
	}
	if owned {
		defer doc.Close()
	}

	results, err := run(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	return &Result{Pages: results, opts: opts}, nil
}

// PageTexts returns the text of each page
func (r *Result) PageTexts() []string {
	topts := layout.TextOptions{
		Sort:        r.opts.Sort,
		KeepHyphens: r.opts.KeepHyphens,
		RowOverlap:  r.opts.settings().RowOverlap,
	}
	texts := make([]string, len(r.Pages))
	for i, pr := range r.Pages {
		texts[i] = layout.PageText(pr, topts)
	}
	return texts
}

// FlatText returns the page texts joined with line breaks
func (r *Result) FlatText() string {
	return strings.Join(r.PageTexts(), "\n")
}

// Structured returns the assembled page tree
func (r *Result) Structured() []layout.Page {
	aopts := layout.AssembleOptions{
		KeepChars:  r.opts.KeepChars,
		Sort:       r.opts.Sort,
		RowOverlap: r.opts.settings().RowOverlap,
	}
	pages := make([]layout.Page, len(r.Pages))
	for i, pr := range r.Pages {
		pages[i] = layout.Assemble(pr, aopts)
	}
	return pages
}

// FlatText returns the text of the selected pages joined with line breaks.
func FlatText(ctx context.Context, source interface{}, opts Options) (string, error) {
	res, err := Extract(ctx, source, opts)
	if err != nil {
		return "", err
	}
	return res.FlatText(), nil
}

// PaginatedFlatText returns the text of each selected page.
func PaginatedFlatText(ctx context.Context, doc extract.Document, opts Options) ([]string, error) {
	if isNil(doc) {
		return nil, fmt.Errorf("%w: nil document", ErrInvalidInput)
	}
	res, err := Extract(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	return res.PageTexts(), nil
}

// StructuredOutput returns the assembled page tree of the selected pages.
func StructuredOutput(ctx context.Context, source interface{}, opts Options) ([]layout.Page, error) {
	res, err := Extract(ctx, source, opts)
	if err != nil {
		return nil, err
	}
	return res.Structured(), nil
}

// open resolves source to a document. owned reports whether the caller
// must close it.
func open(source interface{}, opts Options) (doc extract.Document, owned bool, err error) {
	popts := []pdfdoc.Option{pdfdoc.WithLogger(opts.logger())}

	switch s := source.(type) {
	case string:
		d, err := pdfdoc.Open(s, popts...)
		if err != nil {
			return nil, false, err
		}
		return d, true, nil
	case []byte:
		d, err := pdfdoc.OpenBytes(s, popts...)
		if err != nil {
			return nil, false, err
		}
		return d, true, nil
	case extract.Document:
		if isNil(s) {
			return nil, false, fmt.Errorf("%w: nil document %T", ErrInvalidInput, s)
		}
		return s, false, nil
	}
	return nil, false, fmt.Errorf("%w: unsupported source type %T, want a file path, []byte or extract.Document", ErrInvalidInput, source)
}

func run(ctx context.Context, doc extract.Document, opts Options) ([]model.PageResult, error) {
	log := opts.logger()
	settings := opts.settings()

	if opts.FlattenForms {
		f, ok := doc.(extract.FormFlattener)
		if !ok {
			return nil, fmt.Errorf("%w: document type %T cannot flatten forms", ErrInvalidInput, doc)
		}
		if err := f.FlattenForms(); err != nil {
			return nil, fmt.Errorf("flatten forms: %w", err)
		}
	}

	m := opts.Model
	if m == nil {
		dm, err := inference.Default(settings)
		if err != nil {
			return nil, err
		}
		m = dm
	}

	pages, err := resolvePages(opts.PageRange, doc.PageCount())
	if err != nil {
		return nil, err
	}

	chunks := partition.Plan(pages, opts.Workers, settings.WorkerPageThreshold)
	log.WithFields(logrus.Fields{
		"pages":   len(pages),
		"workers": len(chunks),
	}).Debug("extracting")

	return extract.Run(ctx, doc, chunks, m, extract.WithLogger(log))
}

func resolvePages(pages []int, count int) ([]int, error) {
	if pages == nil {
		return partition.Range(count), nil
	}
	seen := make(map[int]bool, len(pages))
	for _, p := range pages {
		if p < 0 || p >= count {
			return nil, fmt.Errorf("%w: page %d out of range [0, %d)", ErrInvalidInput, p, count)
		}
		if seen[p] {
			return nil, fmt.Errorf("%w: page %d listed twice", ErrInvalidInput, p)
		}
		seen[p] = true
	}
	return pages, nil
}

// isNil reports whether doc is nil or wraps a nil pointer
func isNil(doc extract.Document) bool {
	if doc == nil {
		return true
	}
	v := reflect.ValueOf(doc)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
