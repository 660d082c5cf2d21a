package doctree

import "context"

// Document is an open, page-addressable word source. Pages are numbered
// from 1. Implementations must be released with Close.
type Document interface {
	PageCount() int
	Page(n int) (Page, error)
	Close() error
}

// Opener opens documents by path.
type Opener interface {
	Open(ctx context.Context, path string) (Document, error)
}
