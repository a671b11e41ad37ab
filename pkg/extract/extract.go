// Package extract runs glyph extraction and inference over a partitioned
// page range, one goroutine per chunk.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hector-sherpas/pdftext/pkg/model"
	"github.com/hector-sherpas/pdftext/pkg/partition"
)

// Document is an open source document.
//
// Glyphs returns one GlyphPage per requested page, in request order. A
// Document is used by a single goroutine at a time; workers get their own
// handle through Reopen.
type Document interface {
	PageCount() int
	Glyphs(ctx context.Context, pages []int) ([]model.GlyphPage, error)
	Reopen() (Document, error)
	Close() error
}

// FormFlattener is implemented by documents that can render interactive
// form field values into their page content.
type FormFlattener interface {
	FlattenForms() error
}

// WorkerError reports the chunk that failed.
type WorkerError struct {
	Chunk int   // Index of the failed chunk
	Pages []int // Pages the chunk covered
	Err   error // Underlying error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("extract: chunk %d (pages %v): %v", e.Chunk, e.Pages, e.Err)
}

func (e *WorkerError) Unwrap() error {
	return e.Err
}

type runConfig struct {
	logger logrus.FieldLogger
}

// Option configures Run
type Option func(*runConfig)

// WithLogger sets the logger used for per-chunk progress.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Run extracts and classifies every chunk and returns the page results in
// chunk order.
//
// A single chunk runs on the calling goroutine against doc. With several
// chunks each worker reopens the document, and the first failure cancels
// the others and is returned as a *WorkerError.
func Run(ctx context.Context, doc Document, chunks []partition.Chunk, m model.Model, opts ...Option) ([]model.PageResult, error) {
	cfg := runConfig{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	switch len(chunks) {
	case 0:
		return nil, nil
	case 1:
		results, err := process(ctx, doc, chunks[0], m, cfg.logger)
		if err != nil {
			return nil, &WorkerError{Chunk: chunks[0].Index, Pages: chunks[0].Pages, Err: err}
		}
		return results, nil
	}

	slots := make([][]model.PageResult, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			results, err := runWorker(gctx, doc, chunk, m, cfg.logger)
			if err != nil {
				return &WorkerError{Chunk: chunk.Index, Pages: chunk.Pages, Err: err}
			}
			slots[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, s := range slots {
		total += len(s)
	}
	out := make([]model.PageResult, 0, total)
	for _, s := range slots {
		out = append(out, s...)
	}
	return out, nil
}

func runWorker(ctx context.Context, parent Document, chunk partition.Chunk, m model.Model, logger logrus.FieldLogger) (results []model.PageResult, err error) {
	doc, err := parent.Reopen()
	if err != nil {
		return nil, fmt.Errorf("reopen document: %w", err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close document: %w", cerr)
		}
	}()
	return process(ctx, doc, chunk, m, logger)
}

func process(ctx context.Context, doc Document, chunk partition.Chunk, m model.Model, logger logrus.FieldLogger) ([]model.PageResult, error) {
	log := logger.WithFields(logrus.Fields{
		"chunk": chunk.Index,
		"pages": len(chunk.Pages),
	})
	log.Debug("chunk dispatched")
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	glyphs, err := doc.Glyphs(ctx, chunk.Pages)
	if err != nil {
		return nil, fmt.Errorf("extract glyphs: %w", err)
	}
	if len(glyphs) != len(chunk.Pages) {
		return nil, fmt.Errorf("extract glyphs: got %d pages, want %d", len(glyphs), len(chunk.Pages))
	}

	results, err := m.Infer(ctx, glyphs)
	if err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}
	if len(results) != len(glyphs) {
		return nil, fmt.Errorf("inference: model returned %d pages for %d inputs", len(results), len(glyphs))
	}

	log.WithField("elapsed", time.Since(start)).Debug("chunk completed")
	return results, nil
}
