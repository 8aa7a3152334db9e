package domain

import "time"

// Alert represents a validated momentum alert.
// Corresponds to the alerts table in PostgreSQL. Created exactly once per
// validated candidate per cooldown window; ownership passes to the store
// immediately after construction.
type Alert struct {
	ID             int64     `json:"id"`              // assigned by the store
	Symbol         string    `json:"symbol"`          // ticker symbol
	Price          float64   `json:"price"`           // price at alert time
	PercentChange  float64   `json:"percent_change"`  // today's percent change
	RelativeVolume float64   `json:"relative_volume"` // day volume / average volume, rounded to 2dp
	FloatShares    int64     `json:"float_shares"`    // estimated float, whole shares
	HasNews        bool      `json:"has_news"`        // news seen within the lookback window
	CreatedAt      time.Time `json:"created_at"`
}
