// Package pdfdoc opens PDF files for extraction.
//
// Text is read with github.com/ledongthuc/pdf, which reports one record per
// character in PDF user space. The loader converts these to glyphs with
// top-left, page-normalized boxes, lays out characters whose font carries
// no width table, and inserts the space and line break glyphs the content
// stream only implies through positioning.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"

	"github.com/hector-sherpas/pdftext/pkg/extract"
)

// ErrMalformed is returned when the PDF library cannot parse the document.
var ErrMalformed = errors.New("malformed PDF")

// Document is an open PDF. It is not safe for concurrent use; call Reopen
// for an independent handle.
type Document struct {
	path string // Source file, empty for in-memory documents
	data []byte // Source bytes, nil for file documents

	file   io.Closer
	reader *lpdf.Reader
	pages  int

	forms  *formSnapshot // Flattened field glyphs, shared read-only with reopened handles
	logger logrus.FieldLogger
}

// Option configures a Document
type Option func(*Document)

// WithLogger sets the logger used for warnings and progress.
func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}

// Open opens the PDF file at path.
func Open(path string, opts ...Option) (*Document, error) {
	d := &Document{path: path, logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(d)
	}

	var (
		f   io.Closer
		r   *lpdf.Reader
		err error
	)
	if gerr := guard("open", func() { f, r, err = lpdf.Open(path) }); gerr != nil {
		return nil, gerr
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	d.file, d.reader = f, r
	if err := d.countPages(); err != nil {
		f.Close()
		return nil, err
	}
	return d, nil
}

// OpenBytes opens a PDF held in memory. The slice must not be modified while
// the document or any reopened handle is in use.
func OpenBytes(data []byte, opts ...Option) (*Document, error) {
	d := &Document{data: data, logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(d)
	}

	var (
		r   *lpdf.Reader
		err error
	)
	if gerr := guard("open", func() { r, err = lpdf.NewReader(bytes.NewReader(data), int64(len(data))) }); gerr != nil {
		return nil, gerr
	}
	if err != nil {
		return nil, fmt.Errorf("read PDF: %w", err)
	}
	d.reader = r
	if err := d.countPages(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Document) countPages() error {
	return guard("count pages", func() { d.pages = d.reader.NumPage() })
}

// PageCount returns the number of pages
func (d *Document) PageCount() int { return d.pages }

// Reopen returns an independent handle on the same source. Flattened form
// fields are carried over.
func (d *Document) Reopen() (extract.Document, error) {
	var (
		nd  *Document
		err error
	)
	opts := []Option{WithLogger(d.logger)}
	if d.path != "" {
		nd, err = Open(d.path, opts...)
	} else {
		nd, err = OpenBytes(d.data, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("reopen: %w", err)
	}
	nd.forms = d.forms
	return nd, nil
}

// Close releases the underlying file, if any.
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// guard runs fn and turns a panic raised by the PDF library into an error.
func guard(op string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrMalformed, op, r)
		}
	}()
	fn()
	return nil
}
