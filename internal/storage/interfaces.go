package storage

import (
	"context"
	"time"

	"momentum-scanner/internal/domain"
)

// AlertStore provides access to alerts storage.
type AlertStore interface {
	// Insert persists a new alert and returns it with its assigned ID.
	Insert(ctx context.Context, a *domain.Alert) (*domain.Alert, error)

	// ExistsRecentAlert reports whether an alert for symbol was created
	// within the given window. Used for cooldown checks across restarts.
	ExistsRecentAlert(ctx context.Context, symbol string, window time.Duration) (bool, error)

	// ListRecent retrieves the most recent alerts, newest first.
	// A non-positive limit returns all alerts.
	ListRecent(ctx context.Context, limit int) ([]*domain.Alert, error)
}

// ScanArchive records completed scan runs and fired alerts in an analytics
// store. Archive failures must never affect the scan itself.
type ScanArchive interface {
	// RecordRun appends the summary of one completed scan cycle.
	RecordRun(ctx context.Context, run *domain.ScanRun) error

	// ArchiveAlert appends one fired alert.
	ArchiveAlert(ctx context.Context, a *domain.Alert) error
}
