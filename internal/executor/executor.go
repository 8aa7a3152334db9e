// Package executor provides a bounded-concurrency task runner with
// positional results and join semantics.
package executor

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
)

// RunAll invokes work on every item using at most max(1, concurrency)
// goroutines. Results land in the slot matching each item's input position,
// so callers can rely on positional correspondence even though completion
// order is undefined. RunAll returns only after every item has been
// processed. A panic inside one task is recovered and logged, leaving that
// item's result at its zero value; sibling workers keep running.
func RunAll[T any, R any](ctx context.Context, items []T, concurrency int, logger *log.Logger, work func(context.Context, T) R) []R {
	if logger == nil {
		logger = log.Default()
	}

	results := make([]R, len(items))
	if len(items) == 0 {
		return results
	}

	width := concurrency
	if width < 1 {
		width = 1
	}
	if width > len(items) {
		width = len(items)
	}

	var cursor atomic.Int64
	cursor.Store(-1)

	var wg sync.WaitGroup
	for w := 0; w < width; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(cursor.Add(1))
				if i >= len(items) {
					return
				}
				results[i] = runOne(ctx, items[i], i, logger, work)
			}
		}()
	}
	wg.Wait()

	return results
}

// runOne executes a single task, containing any panic.
func runOne[T any, R any](ctx context.Context, item T, index int, logger *log.Logger, work func(context.Context, T) R) (result R) {
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("executor: task %d panicked: %v", index, r)
		}
	}()
	return work(ctx, item)
}
