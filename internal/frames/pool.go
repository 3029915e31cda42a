package frames

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Worker count limits
const (
	MinWorkers = 1
	MaxWorkers = 16
)

// ClampWorkerCount ensures the worker count is within valid bounds.
func ClampWorkerCount(n int) int {
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}

// ProgressFunc is called after each file finishes a per-file stage.
// It may be called from several goroutines.
type ProgressFunc func(done, total int)

// Options controls the per-file stages.
type Options struct {
	Workers  int          // Concurrent tool invocations, clamped to [MinWorkers, MaxWorkers]
	Strict   bool         // Abort on the first per-file tool failure
	Progress ProgressFunc // Optional
}

// forEach runs fn for indices [0, n) on a bounded pool. fn must write its
// result into a slot owned by i so that output order never depends on
// completion order. The first error returned by fn cancels the rest.
func forEach(ctx context.Context, opts Options, n int, fn func(ctx context.Context, i int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ClampWorkerCount(opts.Workers))

	var done atomic.Int64
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := fn(ctx, i)
			if opts.Progress != nil {
				opts.Progress(int(done.Add(1)), n)
			}
			return err
		})
	}

	return g.Wait()
}
