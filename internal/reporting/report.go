// Package reporting generates offline summaries of recent alerts.
package reporting

import "time"

// Report aggregates recent alerts for rendering.
type Report struct {
	GeneratedAt   time.Time
	TotalAlerts   int
	UniqueSymbols int

	// Rows holds individual alerts, newest first.
	Rows []AlertRow

	// SymbolSummaries holds per-symbol aggregates, most-alerted first.
	SymbolSummaries []SymbolSummary
}

// AlertRow is one alert flattened for output.
type AlertRow struct {
	ID             int64
	Symbol         string
	Price          float64
	PercentChange  float64
	RelativeVolume float64
	FloatShares    int64
	CreatedAt      time.Time
}

// SymbolSummary aggregates all alerts for one symbol.
type SymbolSummary struct {
	Symbol            string
	Alerts            int
	MaxRelativeVolume float64
	MaxPercentChange  float64
	LastAlertAt       time.Time
}
