package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func word(text string, x0, top, size float64) doctree.Word {
	return doctree.Word{Text: text, X0: x0, Top: top, Bottom: top + size, Size: size}
}

func reportPages() []doctree.Page {
	return []doctree.Page{
		{Number: 1, Height: 792, Words: []doctree.Word{
			word("Requirements", 72, 80, 24),
			word("1", 72, 150, 12), word("Introduction", 84, 150, 12),
		}},
		{Number: 2, Height: 792, Words: []doctree.Word{
			word("1.1", 72, 150, 12), word("Scope", 96, 150, 12),
		}},
	}
}

// fixedOpener ignores the spooled path and serves the same pages.
type fixedOpener struct {
	pages   []doctree.Page
	err     error
	failOn  int // fail the nth Page call, 0 = never
	spooled atomic.Int32
}

func (o *fixedOpener) Open(_ context.Context, path string) (doctree.Document, error) {
	o.spooled.Add(1)
	if o.err != nil {
		return nil, o.err
	}
	return &countingDoc{MemDocument: parser.NewMemDocument(o.pages), failOn: o.failOn}, nil
}

type countingDoc struct {
	*parser.MemDocument
	failOn int
	calls  int
}

func (d *countingDoc) Page(n int) (doctree.Page, error) {
	d.calls++
	if d.failOn > 0 && d.calls == d.failOn {
		return doctree.Page{}, errors.New("corrupt content stream")
	}
	return d.MemDocument.Page(n)
}

func newTestWorker(opener doctree.Opener, stats *Stats) *Worker {
	return NewWorker(outline.NewExtractor(outline.DefaultOptions()), opener, stats, quietLogger(), time.Minute)
}

func TestWorker_ExtractUpload(t *testing.T) {
	stats := NewStats(time.Hour)
	w := newTestWorker(&fixedOpener{pages: reportPages()}, stats)

	res, err := w.ExtractUpload(context.Background(), "report.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "Requirements", res.Title)
	assert.Equal(t, []doctree.Entry{
		{Level: doctree.H1, Text: "1 Introduction", Page: 1},
		{Level: doctree.H2, Text: "1.1 Scope", Page: 2},
	}, res.Outline)
	assert.Equal(t, 1, stats.Snapshot().Count)
	assert.Equal(t, 0, stats.Snapshot().Failures)
}

func TestWorker_ExtractUpload_OpenError(t *testing.T) {
	stats := NewStats(time.Hour)
	w := newTestWorker(&fixedOpener{err: errors.New("not a pdf")}, stats)

	res, err := w.ExtractUpload(context.Background(), "broken.pdf", strings.NewReader("junk"))
	require.Error(t, err)

	var ee *outline.ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "broken.pdf", ee.Path)
	assert.Contains(t, err.Error(), "broken.pdf")
	assert.Equal(t, doctree.NewResult(), res)
	assert.Equal(t, 1, stats.Snapshot().Failures)
}

func TestWorker_ExtractUpload_PageErrorCarriesFilename(t *testing.T) {
	w := newTestWorker(&fixedOpener{pages: reportPages(), failOn: 2}, nil)

	_, err := w.ExtractUpload(context.Background(), "report.pdf", strings.NewReader("%PDF"))
	var ee *outline.ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "report.pdf", ee.Path)
	assert.Equal(t, 2, ee.Page)
}

func TestWorker_Process_Completed(t *testing.T) {
	w := newTestWorker(&fixedOpener{pages: reportPages()}, nil)
	job := NewJob("report.pdf", []byte("%PDF"))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	require.NotNil(t, snap.Result)
	assert.Len(t, snap.Result.Outline, 2)
	assert.Equal(t, 2, snap.Progress.Headings)
	assert.Empty(t, snap.Progress.Errors)
	assert.Nil(t, job.FileData())
}

func TestWorker_Process_Partial(t *testing.T) {
	// Calls: title page, profile page 2, classify page 2.
	w := newTestWorker(&fixedOpener{pages: reportPages(), failOn: 3}, nil)
	job := NewJob("report.pdf", []byte("%PDF"))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	assert.Equal(t, StatusPartial, snap.Status)
	require.NotNil(t, snap.Result)
	assert.Equal(t, []doctree.Entry{{Level: doctree.H1, Text: "1 Introduction", Page: 1}}, snap.Result.Outline)
	require.Len(t, snap.Progress.Errors, 1)
	assert.Contains(t, snap.Progress.Errors[0], "page 2")
}

func TestWorker_Process_Failed(t *testing.T) {
	w := newTestWorker(&fixedOpener{err: errors.New("encrypted")}, nil)
	job := NewJob("secret.pdf", []byte("%PDF"))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, "done", snap.Phase)
	require.NotNil(t, snap.Result)
	assert.Equal(t, doctree.UnknownTitle, snap.Result.Title)
	assert.Empty(t, snap.Result.Outline)
	require.Len(t, snap.Progress.Errors, 1)
	assert.Contains(t, snap.Progress.Errors[0], "secret.pdf")
}

func testConfig(workers, queue int) config.Config {
	return config.Config{
		WorkerCount:  workers,
		MaxQueueSize: queue,
		JobTTL:       time.Hour,
		BandMargin:   50,
	}
}

func TestOrchestrator_ProcessesJobs(t *testing.T) {
	o := NewOrchestrator(testConfig(2, 10), &fixedOpener{pages: reportPages()}, quietLogger())
	o.Start(context.Background())
	defer o.Stop()

	var jobs []*Job
	for i := range 3 {
		job := NewJob(fmt.Sprintf("doc-%d.pdf", i), []byte(fmt.Sprintf("%%PDF %d", i)))
		require.NoError(t, o.Submit(job))
		jobs = append(jobs, job)
	}

	for _, job := range jobs {
		require.Eventually(t, func() bool {
			return job.Snapshot().Status == StatusCompleted
		}, 2*time.Second, 5*time.Millisecond)
		assert.Same(t, job, o.GetJob(job.ID))
	}
	assert.Equal(t, 3, o.Stats().Snapshot().Count)
}

func TestOrchestrator_QueueFull(t *testing.T) {
	o := NewOrchestrator(testConfig(1, 1), &fixedOpener{pages: reportPages()}, quietLogger())

	first := NewJob("a.pdf", []byte("a"))
	second := NewJob("b.pdf", []byte("b"))
	require.NoError(t, o.Submit(first))
	assert.Equal(t, 1, o.QueueDepth())

	err := o.Submit(second)
	require.Error(t, err)
	snap := second.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	require.NotNil(t, snap.Result)
	assert.Equal(t, doctree.NewResult(), *snap.Result)
	assert.Nil(t, second.FileData())
	assert.NotNil(t, o.GetJob(second.ID))

	res, ok := second.Result()
	assert.True(t, ok)
	assert.Equal(t, doctree.UnknownTitle, res.Title)

	o.Stop()
}

func TestOrchestrator_ExtractSync(t *testing.T) {
	o := NewOrchestrator(testConfig(1, 1), &fixedOpener{pages: reportPages()}, quietLogger())
	res, err := o.Extract(context.Background(), "report.pdf", bytes.NewReader([]byte("%PDF")))
	require.NoError(t, err)
	assert.Equal(t, "Requirements", res.Title)
	assert.Equal(t, 0, o.QueueDepth())
}

func TestRunBatch_IndependentFailures(t *testing.T) {
	paths := []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"}
	errBad := errors.New("bad")

	var mu sync.Mutex
	var seen []string
	errs := RunBatch(context.Background(), paths, 2, func(_ context.Context, path string) error {
		mu.Lock()
		seen = append(seen, path)
		mu.Unlock()
		if path == "b.pdf" {
			return errBad
		}
		return nil
	})

	require.Len(t, errs, 4)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], errBad)
	assert.NoError(t, errs[2])
	assert.NoError(t, errs[3])
	assert.ElementsMatch(t, paths, seen)
}

func TestRunBatch_BoundsConcurrency(t *testing.T) {
	paths := make([]string, 12)
	for i := range paths {
		paths[i] = fmt.Sprintf("%d.pdf", i)
	}

	var inFlight, peak atomic.Int32
	RunBatch(context.Background(), paths, 3, func(_ context.Context, _ string) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestRunBatch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	errs := RunBatch(ctx, []string{"a.pdf", "b.pdf"}, 2, func(context.Context, string) error {
		calls.Add(1)
		return nil
	})

	assert.Equal(t, int32(0), calls.Load())
	for _, err := range errs {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
