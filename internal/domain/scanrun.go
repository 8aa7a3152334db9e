package domain

import "time"

// ScanRun is the summary of one completed scan cycle, archived for offline
// analysis of scanner behaviour over time.
type ScanRun struct {
	StartedAt    time.Time
	FinishedAt   time.Time
	Fetched      int    // snapshot entries retrieved
	Prefiltered  int    // candidates surviving the cheap filters
	DeepChecked  int    // candidates that reached deep validation
	AlertsFired  int    // alerts created this run
	ErrorMessage string // empty when the run succeeded
}
