package scanner

import (
	"sort"

	"momentum-scanner/internal/domain"
)

// Prefilter narrows the snapshot universe to ranked candidates using cheap,
// in-memory checks only. It is the cost-control gate and must run before any
// per-symbol upstream lookups.
//
// An entry survives when it has a non-empty symbol, a price inside
// [priceMin, priceMax] (inclusive on both ends) and a percent change of at
// least minPercentChange. Survivors are ordered by day volume descending;
// the highest-volume names are the likeliest real movers and keep priority
// when the cap applies. A maxCount <= 0 means unbounded.
func Prefilter(entries []domain.SnapshotEntry, priceMin, priceMax, minPercentChange float64, maxCount int) []domain.Candidate {
	candidates := make([]domain.Candidate, 0, len(entries))
	for _, e := range entries {
		if e.Symbol == "" {
			continue
		}
		if e.Price < priceMin || e.Price > priceMax {
			continue
		}
		if e.PercentChange < minPercentChange {
			continue
		}
		candidates = append(candidates, domain.Candidate{
			Symbol:        e.Symbol,
			Price:         e.Price,
			PercentChange: e.PercentChange,
			DayVolume:     e.DayVolume,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DayVolume > candidates[j].DayVolume
	})

	if maxCount > 0 && len(candidates) > maxCount {
		candidates = candidates[:maxCount]
	}
	return candidates
}
