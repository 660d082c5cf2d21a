package outline

import (
	"context"
	"fmt"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// ExtractionError reports that a document could not be opened or read.
// The result returned alongside it is still usable.
type ExtractionError struct {
	Path string // empty when the document was not opened by path
	Page int    // 0 when the failure was not tied to a page
	Err  error
}

func (e *ExtractionError) Error() string {
	switch {
	case e.Path != "" && e.Page > 0:
		return fmt.Sprintf("extract %s: page %d: %v", e.Path, e.Page, e.Err)
	case e.Path != "":
		return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
	case e.Page > 0:
		return fmt.Sprintf("extract page %d: %v", e.Page, e.Err)
	}
	return fmt.Sprintf("extract: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor runs the title and outline heuristics. It holds no per-document
// state and is safe for concurrent use.
type Extractor struct {
	opts Options
}

// NewExtractor creates an extractor with the given thresholds.
func NewExtractor(opts Options) *Extractor {
	return &Extractor{opts: opts.withDefaults()}
}

// Options returns the effective thresholds.
func (x *Extractor) Options() Options {
	return x.opts
}

// ExtractFile opens path, extracts its outline and closes it. Open
// failures are reported as *ExtractionError together with the placeholder
// result.
func (x *Extractor) ExtractFile(ctx context.Context, opener doctree.Opener, path string) (doctree.Result, error) {
	doc, err := opener.Open(ctx, path)
	if err != nil {
		return doctree.NewResult(), &ExtractionError{Path: path, Err: err}
	}
	defer doc.Close()

	res, err := x.Extract(ctx, doc)
	if ee, ok := err.(*ExtractionError); ok {
		ee.Path = path
	}
	return res, err
}

// Extract runs the pipeline over an open document. The result is always
// returned; on error it carries whatever was computed before the failure.
// ctx is only checked between pages.
func (x *Extractor) Extract(ctx context.Context, doc doctree.Document) (doctree.Result, error) {
	res := doctree.NewResult()
	total := doc.PageCount()
	if total == 0 {
		return res, nil
	}

	first, err := doc.Page(1)
	if err != nil {
		return res, &ExtractionError{Page: 1, Err: err}
	}
	res.Title = DetectTitle(first.Words, x.opts.MinTitleLen)

	freq := make(Frequency)
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("profile lines: %w", err)
		}
		page := first
		if n > 1 {
			if page, err = doc.Page(n); err != nil {
				return res, &ExtractionError{Page: n, Err: err}
			}
		}
		freq.Add(page, x.opts)
	}

	cls := NewClassifier(x.opts, freq, total)
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			res.Outline = cls.Outline()
			return res, fmt.Errorf("classify headings: %w", err)
		}
		page := first
		if n > 1 {
			if page, err = doc.Page(n); err != nil {
				res.Outline = cls.Outline()
				return res, &ExtractionError{Page: n, Err: err}
			}
		}
		cls.Classify(page, n)
	}
	res.Outline = cls.Outline()
	return res, nil
}
