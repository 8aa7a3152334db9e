package executor

import (
	"context"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"testing"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestRunAll_PositionalResults(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	for _, width := range []int{1, 4, 16, 200} {
		results := RunAll(context.Background(), items, width, discardLogger(), func(_ context.Context, n int) int {
			return n * 2
		})

		if len(results) != len(items) {
			t.Fatalf("width %d: expected %d results, got %d", width, len(items), len(results))
		}
		for i, r := range results {
			if r != i*2 {
				t.Fatalf("width %d: result %d is %d, want %d", width, i, r, i*2)
			}
		}
	}
}

func TestRunAll_ConcurrencyOneIsSequential(t *testing.T) {
	var active, maxActive int32
	items := []int{1, 2, 3, 4, 5}

	RunAll(context.Background(), items, 1, discardLogger(), func(_ context.Context, n int) int {
		cur := atomic.AddInt32(&active, 1)
		for {
			prev := atomic.LoadInt32(&maxActive)
			if cur <= prev || atomic.CompareAndSwapInt32(&maxActive, prev, cur) {
				break
			}
		}
		atomic.AddInt32(&active, -1)
		return n
	})

	if maxActive != 1 {
		t.Errorf("expected at most 1 concurrent task, observed %d", maxActive)
	}
}

func TestRunAll_BoundsConcurrency(t *testing.T) {
	var active, maxActive int32
	var mu sync.Mutex
	items := make([]int, 64)

	RunAll(context.Background(), items, 4, discardLogger(), func(_ context.Context, n int) int {
		cur := atomic.AddInt32(&active, 1)
		mu.Lock()
		if cur > maxActive {
			maxActive = cur
		}
		mu.Unlock()
		atomic.AddInt32(&active, -1)
		return n
	})

	if maxActive > 4 {
		t.Errorf("expected at most 4 concurrent tasks, observed %d", maxActive)
	}
}

func TestRunAll_PanicDoesNotKillSiblings(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7}

	results := RunAll(context.Background(), items, 3, discardLogger(), func(_ context.Context, n int) int {
		if n == 3 {
			panic("boom")
		}
		return n + 1
	})

	for i, r := range results {
		switch {
		case i == 3:
			if r != 0 {
				t.Errorf("panicked task should leave zero result, got %d", r)
			}
		case r != i+1:
			t.Errorf("result %d is %d, want %d", i, r, i+1)
		}
	}
}

func TestRunAll_ZeroConcurrencyRunsAnyway(t *testing.T) {
	results := RunAll(context.Background(), []int{7}, 0, discardLogger(), func(_ context.Context, n int) int {
		return n
	})
	if len(results) != 1 || results[0] != 7 {
		t.Errorf("expected [7], got %v", results)
	}
}

func TestRunAll_EmptyItems(t *testing.T) {
	results := RunAll(context.Background(), nil, 4, discardLogger(), func(_ context.Context, n int) int {
		t.Error("worker should not be invoked")
		return n
	})
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
