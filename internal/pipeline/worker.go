package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
)

// Worker extracts outlines from uploaded documents.
type Worker struct {
	extractor *outline.Extractor
	opener    doctree.Opener
	stats     *Stats
	log       *slog.Logger
	timeout   time.Duration
}

// NewWorker creates a worker. stats may be nil; timeout <= 0 means no
// per-document limit.
func NewWorker(x *outline.Extractor, opener doctree.Opener, stats *Stats, log *slog.Logger, timeout time.Duration) *Worker {
	return &Worker{
		extractor: x,
		opener:    opener,
		stats:     stats,
		log:       log,
		timeout:   timeout,
	}
}

// ExtractUpload spools r, extracts its outline once and records the latency.
// The result is always usable; errors are *outline.ExtractionError with Path
// set to filename, or the context error.
func (w *Worker) ExtractUpload(ctx context.Context, filename string, r io.Reader) (doctree.Result, error) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := w.extract(ctx, filename, r)
	if w.stats != nil {
		w.stats.Record(time.Since(start).Milliseconds(), err != nil)
	}
	return res, err
}

func (w *Worker) extract(ctx context.Context, filename string, r io.Reader) (doctree.Result, error) {
	doc, err := parser.OpenUpload(ctx, w.opener, r, filename)
	if err != nil {
		return doctree.NewResult(), &outline.ExtractionError{Path: filename, Err: err}
	}
	defer doc.Close()

	res, err := w.extractor.Extract(ctx, doc)
	var ee *outline.ExtractionError
	if errors.As(err, &ee) {
		ee.Path = filename
	}
	return res, err
}

// Process runs extraction for a queued job. Extraction runs once; a failure
// leaves the degraded result on the job and marks it partial when some
// headings were found, failed otherwise.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "filename", job.Filename)

	job.SetStatus(StatusExtracting, "extracting")
	start := time.Now()
	res, err := w.ExtractUpload(ctx, job.Filename, bytes.NewReader(job.FileData()))
	job.SetResult(res, time.Since(start))
	job.SetFileData(nil)

	if err != nil {
		log.Error("extraction failed", "error", err, "headings", len(res.Outline))
		job.AddError(err.Error())
		if len(res.Outline) > 0 {
			job.SetStatus(StatusPartial, "done")
		} else {
			job.SetStatus(StatusFailed, "done")
		}
		return
	}

	log.Info("extraction complete", "title", res.Title, "headings", len(res.Outline))
	job.SetStatus(StatusCompleted, "done")
}
