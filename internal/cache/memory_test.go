package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemory_GetSet(t *testing.T) {
	c := NewMemory[float64]()
	ctx := context.Background()

	if _, ok := c.Get(ctx, "AAPL"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set(ctx, "AAPL", 1500000, time.Minute)

	v, ok := c.Get(ctx, "AAPL")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if v != 1500000 {
		t.Errorf("expected 1500000, got %v", v)
	}
}

func TestMemory_TTLBoundary(t *testing.T) {
	c := NewMemory[float64]()
	ctx := context.Background()

	base := time.Now()
	now := base
	c.now = func() time.Time { return now }

	c.Set(ctx, "AAPL", 42, 10*time.Second)

	// Any elapsed time < TTL: value visible.
	now = base.Add(9*time.Second + 999*time.Millisecond)
	if _, ok := c.Get(ctx, "AAPL"); !ok {
		t.Error("expected hit just before expiry")
	}

	// Elapsed time == TTL: treated as absent.
	now = base.Add(10 * time.Second)
	if _, ok := c.Get(ctx, "AAPL"); ok {
		t.Error("expected miss exactly at expiry")
	}
}

func TestMemory_LazyEviction(t *testing.T) {
	c := NewMemory[bool]()
	ctx := context.Background()

	base := time.Now()
	now := base
	c.now = func() time.Time { return now }

	c.Set(ctx, "AAPL", true, time.Second)
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}

	// Expired entry is removed on the access that observes it.
	now = base.Add(2 * time.Second)
	if _, ok := c.Get(ctx, "AAPL"); ok {
		t.Fatal("expected miss after expiry")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry to be evicted, len=%d", c.Len())
	}
}

func TestMemory_NegativeResultsAreAuthoritative(t *testing.T) {
	c := NewMemory[bool]()
	ctx := context.Background()

	// A cached false must be returned as a hit, not a miss.
	c.Set(ctx, "AAPL", false, time.Minute)

	v, ok := c.Get(ctx, "AAPL")
	if !ok {
		t.Fatal("expected hit for cached false value")
	}
	if v {
		t.Error("expected cached value to be false")
	}
}

func TestMemory_SetReplacesEntry(t *testing.T) {
	c := NewMemory[float64]()
	ctx := context.Background()

	c.Set(ctx, "AAPL", 1, time.Minute)
	c.Set(ctx, "AAPL", 2, time.Minute)

	v, _ := c.Get(ctx, "AAPL")
	if v != 2 {
		t.Errorf("expected 2 after overwrite, got %v", v)
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	c := NewMemory[int]()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				c.Set(ctx, "shared", n, time.Minute)
				c.Get(ctx, "shared")
			}
		}(i)
	}
	wg.Wait()

	if _, ok := c.Get(ctx, "shared"); !ok {
		t.Error("expected value to survive concurrent access")
	}
}
