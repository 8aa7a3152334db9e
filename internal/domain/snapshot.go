package domain

// SnapshotEntry is one instrument from the market-wide snapshot.
// Produced once per scan by the snapshot fetcher and discarded afterwards.
type SnapshotEntry struct {
	Symbol        string  // ticker symbol, unique within a snapshot
	Price         float64 // last trade price
	PercentChange float64 // today's percent change
	DayVolume     float64 // today's cumulative volume
}

// Candidate is a snapshot entry that survived the prefilter.
// Immutable once produced; lives only for one scan's duration.
type Candidate struct {
	Symbol        string
	Price         float64
	PercentChange float64
	DayVolume     float64
}
