package marketdata

import "momentum-scanner/internal/domain"

// Upstream payloads are full of optional fields. Every field that can be
// missing is a pointer here, and normalization into domain shapes happens
// in exactly one place so "zero" and "no data" stay distinguishable.

type snapshotPageDTO struct {
	Tickers []snapshotTickerDTO `json:"tickers"`
	NextURL string              `json:"next_url"`
	Status  string              `json:"status"`
}

type snapshotTickerDTO struct {
	Ticker           string        `json:"ticker"`
	TodaysChangePerc *float64      `json:"todaysChangePerc"`
	LastTrade        *lastTradeDTO `json:"lastTrade"`
	Day              *dayAggDTO    `json:"day"`
}

type lastTradeDTO struct {
	Price *float64 `json:"p"`
}

type dayAggDTO struct {
	Close  *float64 `json:"c"`
	Volume *float64 `json:"v"`
}

// toEntry normalizes one snapshot ticker. Missing price falls back to the
// day close; anything still missing becomes zero, which the prefilter's
// price floor excludes from consideration.
func (t snapshotTickerDTO) toEntry() domain.SnapshotEntry {
	e := domain.SnapshotEntry{Symbol: t.Ticker}

	if t.LastTrade != nil && t.LastTrade.Price != nil {
		e.Price = *t.LastTrade.Price
	} else if t.Day != nil && t.Day.Close != nil {
		e.Price = *t.Day.Close
	}
	if t.TodaysChangePerc != nil {
		e.PercentChange = *t.TodaysChangePerc
	}
	if t.Day != nil && t.Day.Volume != nil {
		e.DayVolume = *t.Day.Volume
	}
	return e
}

type aggsResponseDTO struct {
	Results []aggBarDTO `json:"results"`
	Status  string      `json:"status"`
}

type aggBarDTO struct {
	Timestamp *int64   `json:"t"` // bar start, Unix ms
	Volume    *float64 `json:"v"`
}

type referenceResponseDTO struct {
	Results *referenceResultsDTO `json:"results"`
	Status  string               `json:"status"`
}

type referenceResultsDTO struct {
	FreeFloat             *float64 `json:"free_float"`
	ShareClassSharesOutst *float64 `json:"share_class_shares_outstanding"`
	WeightedSharesOutst   *float64 `json:"weighted_shares_outstanding"`
}

// toReferenceInfo maps the nullable upstream fields onto the domain shape.
func (r *referenceResultsDTO) toReferenceInfo() domain.ReferenceInfo {
	if r == nil {
		return domain.ReferenceInfo{}
	}
	return domain.ReferenceInfo{
		FloatShares:       r.FreeFloat,
		SharesOutstanding: r.ShareClassSharesOutst,
		WeightedShares:    r.WeightedSharesOutst,
	}
}

type newsResponseDTO struct {
	Results []struct {
		ID string `json:"id"`
	} `json:"results"`
	Count  *int   `json:"count"`
	Status string `json:"status"`
}
