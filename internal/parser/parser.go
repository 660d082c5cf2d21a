package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf": true,
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// NewOpener returns the PDF opener, optionally backed by pdftotext when the
// native reader fails.
func NewOpener(fallback bool, log *slog.Logger) doctree.Opener {
	if !fallback {
		return PDFOpener{}
	}
	return &FallbackOpener{Primary: PDFOpener{}, Fallback: PdftotextOpener{}, Log: log}
}

// FallbackOpener tries Primary and, if it cannot open the file, Fallback.
type FallbackOpener struct {
	Primary  doctree.Opener
	Fallback doctree.Opener
	Log      *slog.Logger
}

func (o *FallbackOpener) Open(ctx context.Context, path string) (doctree.Document, error) {
	doc, err := o.Primary.Open(ctx, path)
	if err == nil {
		return doc, nil
	}
	if o.Log != nil {
		o.Log.Warn("primary opener failed, trying fallback", "path", path, "error", err)
	}
	doc, ferr := o.Fallback.Open(ctx, path)
	if ferr != nil {
		return nil, errors.Join(err, ferr)
	}
	return doc, nil
}

// OpenUpload spools r to a temporary file and opens it. Closing the
// returned document removes the file.
func OpenUpload(ctx context.Context, opener doctree.Opener, r io.Reader, filename string) (doctree.Document, error) {
	tmp, err := os.CreateTemp("", "docoutline-*"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(path)
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("spool upload: %w", err)
	}

	doc, err := opener.Open(ctx, path)
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	return &tempDocument{Document: doc, path: path}, nil
}

type tempDocument struct {
	doctree.Document
	path string
}

func (d *tempDocument) Close() error {
	err := d.Document.Close()
	if rerr := os.Remove(d.path); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
		return errors.Join(err, rerr)
	}
	return err
}

// MemDocument is a document whose pages are already in memory.
type MemDocument struct {
	pages []doctree.Page
}

func NewMemDocument(pages []doctree.Page) *MemDocument {
	return &MemDocument{pages: pages}
}

func (d *MemDocument) PageCount() int {
	return len(d.pages)
}

func (d *MemDocument) Page(n int) (doctree.Page, error) {
	if n < 1 || n > len(d.pages) {
		return doctree.Page{}, fmt.Errorf("page %d out of range (1-%d)", n, len(d.pages))
	}
	return d.pages[n-1], nil
}

func (d *MemDocument) Close() error {
	return nil
}
