package pipeline

import (
	"context"
	"sync"
)

// RunBatch calls fn for every path with at most concurrency calls in
// flight. Paths are independent: an error from one never stops the others.
// The returned slice holds each path's error at the path's index. Paths not
// started before ctx is done get ctx.Err().
func RunBatch(ctx context.Context, paths []string, concurrency int, fn func(ctx context.Context, path string) error) []error {
	if concurrency <= 0 {
		concurrency = 1
	}
	errs := make([]error, len(paths))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		select {
		case <-ctx.Done():
			errs[i] = ctx.Err()
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[i] = fn(ctx, path)
		}(i, path)
	}
	wg.Wait()

	return errs
}
