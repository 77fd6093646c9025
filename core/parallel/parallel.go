// Package parallel fans work out across CPU cores. Model selection uses Do to
// evaluate (candidate, fold) pairs; estimators use Parallelize for row-wise
// prediction.
package parallel

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

// Workers resolves an n_jobs value the scikit-learn way: -1 (or any value
// below 1) means all available CPUs, otherwise the value itself.
func Workers(nJobs int) int {
	if nJobs < 1 {
		return runtime.NumCPU()
	}
	return nJobs
}

// Do runs fn for every index in [0, n) on at most Workers(nJobs) goroutines
// and waits for all of them. The first error cancels ctx for the remaining
// tasks and is returned; panics inside fn come back as errors.PanicError.
// With nJobs == 1 the tasks run sequentially in index order.
func Do(ctx context.Context, n, nJobs int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return nil
	}
	if nJobs == 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := errors.SafeExecute("parallel.Do", func() error { return fn(ctx, i) }); err != nil {
				return err
			}
		}
		return nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(Workers(nJobs))
	for i := 0; i < n; i++ {
		idx := i
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			return errors.SafeExecute("parallel.Do", func() error { return fn(egCtx, idx) })
		})
	}
	return eg.Wait()
}

// Parallelize divides items according to the number of CPU cores and
// executes fn in parallel for each range (start, end).
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially when items does not exceed
// threshold and falls back to Parallelize otherwise.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
