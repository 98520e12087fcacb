// Package parallel runs independent CPU-bound units across a bounded set
// of workers and joins their results in input order.
package parallel

import (
	"context"
	"sync"
)

// Map applies fn to every item using at most workers goroutines. Results
// and errors come back indexed exactly like items, so a phase barrier is
// simply this call returning. Each item's failure is captured in errs[i]
// and never aborts its siblings. A cancelled context marks the remaining
// unstarted items with ctx.Err().
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, []error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))
	if len(items) == 0 {
		return results, errs
	}

	if workers < 1 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = fn(ctx, items[i])
			}
		}()
	}

	for i := range items {
		select {
		case <-ctx.Done():
			errs[i] = ctx.Err()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return results, errs
}
