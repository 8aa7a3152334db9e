// Package stub provides a canned market data client for demo mode and tests.
package stub

import (
	"context"
	"sync"
	"time"

	"momentum-scanner/internal/domain"
	"momentum-scanner/internal/marketdata"
)

// Client implements marketdata.Client from in-memory fixtures. All fields
// may be mutated before first use; access during a scan is guarded.
type Client struct {
	mu sync.RWMutex

	// Universe is returned as a single snapshot page.
	Universe []domain.SnapshotEntry

	// AvgDailyVolume maps symbol to the volume reported for every daily bar.
	AvgDailyVolume map[string]float64

	// FloatShares maps symbol to the float returned by reference lookups.
	FloatShares map[string]float64

	// NewsCount maps symbol to the recent news count.
	NewsCount map[string]int
}

// New creates an empty stub client.
func New() *Client {
	return &Client{
		AvgDailyVolume: make(map[string]float64),
		FloatShares:    make(map[string]float64),
		NewsCount:      make(map[string]int),
	}
}

// Compile-time interface check.
var _ marketdata.Client = (*Client)(nil)

// FetchSnapshotPage returns the entire universe as one page.
func (c *Client) FetchSnapshotPage(_ context.Context, cursor string) ([]domain.SnapshotEntry, string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if cursor != "" {
		return nil, "", nil
	}
	out := make([]domain.SnapshotEntry, len(c.Universe))
	copy(out, c.Universe)
	return out, "", nil
}

// FetchDailyBars returns one bar per day in [from, to] with the configured
// volume for symbol, or nothing when the symbol is unknown.
func (c *Client) FetchDailyBars(_ context.Context, symbol string, from, to time.Time) ([]domain.DailyBar, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	vol, ok := c.AvgDailyVolume[symbol]
	if !ok {
		return nil, nil
	}

	var bars []domain.DailyBar
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		bars = append(bars, domain.DailyBar{Date: d, Volume: vol})
	}
	return bars, nil
}

// FetchReferenceInfo returns the configured float for symbol.
func (c *Client) FetchReferenceInfo(_ context.Context, symbol string) (domain.ReferenceInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, ok := c.FloatShares[symbol]
	if !ok {
		return domain.ReferenceInfo{}, nil
	}
	return domain.ReferenceInfo{FloatShares: &f}, nil
}

// FetchRecentNews returns the configured news count for symbol.
func (c *Client) FetchRecentNews(_ context.Context, symbol string, _ time.Time) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NewsCount[symbol], nil
}
