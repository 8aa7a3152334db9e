package domain

import (
	"math"
	"time"
)

// ReferenceInfo holds share-structure data for one symbol. Upstream payloads
// report float and shares outstanding inconsistently, so every variant is
// kept as a nullable field and resolved in one place.
type ReferenceInfo struct {
	FloatShares       *float64 // free float (nullable)
	SharesOutstanding *float64 // total shares outstanding (nullable)
	WeightedShares    *float64 // weighted shares outstanding (nullable)
}

// ResolveFloat returns the best available float proxy: the free float when
// reported, otherwise a shares-outstanding variant. Absent, zero, negative
// or non-finite values all count as no data.
func (r ReferenceInfo) ResolveFloat() (float64, bool) {
	for _, v := range []*float64{r.FloatShares, r.SharesOutstanding, r.WeightedShares} {
		if v == nil {
			continue
		}
		if *v > 0 && !math.IsInf(*v, 0) && !math.IsNaN(*v) {
			return *v, true
		}
	}
	return 0, false
}

// DailyBar is one day of aggregate trading data for a symbol.
type DailyBar struct {
	Date   time.Time
	Volume float64
}
