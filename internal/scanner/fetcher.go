package scanner

import (
	"context"
	"fmt"
	"log"

	"momentum-scanner/internal/domain"
	"momentum-scanner/internal/marketdata"
)

// DefaultMaxPages caps pagination so a misbehaving upstream cannot loop the
// fetcher forever.
const DefaultMaxPages = 50

// UniverseFetcher retrieves the full instrument universe by following
// snapshot continuation cursors.
type UniverseFetcher struct {
	client   marketdata.Client
	maxPages int
	logger   *log.Logger
}

// NewUniverseFetcher creates a fetcher. maxPages <= 0 selects
// DefaultMaxPages.
func NewUniverseFetcher(client marketdata.Client, maxPages int, logger *log.Logger) *UniverseFetcher {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if logger == nil {
		logger = log.Default()
	}
	return &UniverseFetcher{client: client, maxPages: maxPages, logger: logger}
}

// FetchUniverse concatenates snapshot pages until the upstream stops
// returning a continuation cursor. Retrieval is all-or-nothing: one failed
// page aborts the whole fetch so a scan never runs on a biased partial
// universe. Hitting the page ceiling is a soft stop, not an error; whatever
// was accumulated is returned. Order across pages is preserved.
func (f *UniverseFetcher) FetchUniverse(ctx context.Context) ([]domain.SnapshotEntry, error) {
	var universe []domain.SnapshotEntry
	cursor := ""

	for page := 1; page <= f.maxPages; page++ {
		entries, next, err := f.client.FetchSnapshotPage(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetch snapshot page %d: %w", page, err)
		}
		universe = append(universe, entries...)

		if next == "" {
			return universe, nil
		}
		if page == f.maxPages {
			f.logger.Printf("fetcher: page ceiling %d reached with cursor still present, stopping with %d entries",
				f.maxPages, len(universe))
			break
		}
		cursor = next
	}
	return universe, nil
}
