package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/render"
)

var (
	extractOut     string
	extractFormat  string
	extractWorkers int
)

var extractCmd = &cobra.Command{
	Use:   "extract [paths...]",
	Short: "Extract outlines from PDF files or directories of PDFs",
	Long: `Extract the title and heading outline of each PDF.

Directories are scanned (not recursively) for *.pdf files. With --out, each
document is written to <out>/<name>.<ext>; otherwise results go to stdout.
A document that fails is logged and still gets its partial result written;
the command then exits non-zero.

Examples:
  docoutline extract report.pdf
  docoutline extract --out outputs --format yaml pdfs/
  docoutline extract --workers 8 --format docx --out toc/ a.pdf b.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(extractFormat)
		if err != nil {
			return err
		}
		paths, err := collectPDFs(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no PDF files found")
		}

		workers := extractWorkers
		if workers <= 0 {
			workers = cfg.WorkerCount
		}

		b := &batch{
			extractor: outline.NewExtractor(cfg.OutlineOptions()),
			opener:    parser.NewOpener(cfg.PDFFallbackPdftotext, logger),
			format:    format,
			outDir:    extractOut,
			stdout:    cmd.OutOrStdout(),
			timeout:   cfg.ExtractTimeout,
			log:       logger,
		}
		return b.run(cmd.Context(), paths, workers)
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "output directory (default: stdout)")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "json", "output format: json, yaml, markdown, html or docx")
	extractCmd.Flags().IntVarP(&extractWorkers, "workers", "w", 0, "documents processed in parallel (default: DOCOUTLINE_WORKER_COUNT)")
}

// collectPDFs expands directories into their PDF files. Explicit file
// arguments are kept whatever their extension.
func collectPDFs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", arg, err)
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && parser.IsSupportedExtension(e.Name()) {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}

type batch struct {
	extractor *outline.Extractor
	opener    doctree.Opener
	format    render.Format
	outDir    string
	stdout    io.Writer
	timeout   time.Duration
	log       *slog.Logger

	mu sync.Mutex // serializes stdout writes
}

func (b *batch) run(ctx context.Context, paths []string, workers int) error {
	if b.outDir != "" {
		if err := os.MkdirAll(b.outDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	start := time.Now()
	errs := pipeline.RunBatch(ctx, paths, workers, b.processOne)

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			b.log.Error("document failed", "path", paths[i], "error", err)
		}
	}
	b.log.Info("batch complete",
		"documents", len(paths),
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(paths))
	}
	return nil
}

// processOne extracts and writes one document. The result is written even
// when extraction fails; only write failures stop it.
func (b *batch) processOne(ctx context.Context, path string) error {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	b.log.Debug("processing", "path", path)
	res, extractErr := b.extractor.ExtractFile(ctx, b.opener, path)

	var buf bytes.Buffer
	if err := render.Write(&buf, b.format, res); err != nil {
		return err
	}
	if err := b.write(path, buf.Bytes()); err != nil {
		return err
	}
	if extractErr == nil {
		b.log.Info("saved", "path", path, "title", res.Title, "headings", len(res.Outline))
	}
	return extractErr
}

func (b *batch) write(path string, data []byte) error {
	if b.outDir == "" {
		b.mu.Lock()
		defer b.mu.Unlock()
		_, err := b.stdout.Write(data)
		return err
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(b.outDir, stem+b.format.Extension())
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}
