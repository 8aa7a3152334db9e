// Package marketdata provides access to the upstream market data API:
// the full-market snapshot, historical daily bars, share-structure
// reference data and recent news counts.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"momentum-scanner/internal/domain"
)

// ErrUpstream wraps failures talking to the market data API. Callers use it
// to distinguish upstream trouble from local bugs.
var ErrUpstream = errors.New("upstream market data error")

// upstreamErr wraps err so it matches ErrUpstream via errors.Is.
func upstreamErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstream, op, err)
}

// Client is the upstream market data contract the scanner depends on.
type Client interface {
	// FetchSnapshotPage retrieves one page of the market-wide snapshot.
	// An empty cursor requests the first page; a non-empty returned
	// cursor means more pages follow.
	FetchSnapshotPage(ctx context.Context, cursor string) (entries []domain.SnapshotEntry, nextCursor string, err error)

	// FetchDailyBars retrieves daily aggregates for symbol within
	// [from, to], oldest first.
	FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]domain.DailyBar, error)

	// FetchReferenceInfo retrieves share-structure data for symbol.
	FetchReferenceInfo(ctx context.Context, symbol string) (domain.ReferenceInfo, error)

	// FetchRecentNews returns the number of news items published for
	// symbol since the given time.
	FetchRecentNews(ctx context.Context, symbol string, since time.Time) (int, error)
}
