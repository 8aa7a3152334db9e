package clickhouse

import (
	"context"
	"fmt"

	"momentum-scanner/internal/domain"
	"momentum-scanner/internal/storage"
)

// ScanArchive implements storage.ScanArchive using ClickHouse. Both tables
// are append-only MergeTree tables used for offline analysis of scanner
// behaviour; nothing in the scan path reads them back.
type ScanArchive struct {
	conn *Conn
}

// NewScanArchive creates a new ScanArchive.
func NewScanArchive(conn *Conn) *ScanArchive {
	return &ScanArchive{conn: conn}
}

// Compile-time interface check.
var _ storage.ScanArchive = (*ScanArchive)(nil)

// RecordRun appends the summary of one completed scan cycle.
func (s *ScanArchive) RecordRun(ctx context.Context, run *domain.ScanRun) error {
	if run == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO scan_runs (
			started_at, finished_at, fetched, prefiltered, deep_checked, alerts_fired, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	err := s.conn.Exec(ctx, query,
		run.StartedAt,
		run.FinishedAt,
		uint32(run.Fetched),
		uint32(run.Prefiltered),
		uint32(run.DeepChecked),
		uint32(run.AlertsFired),
		run.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("insert scan run: %w", err)
	}
	return nil
}

// ArchiveAlert appends one fired alert.
func (s *ScanArchive) ArchiveAlert(ctx context.Context, a *domain.Alert) error {
	if a == nil || a.Symbol == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO alert_archive (
			alert_id, symbol, price, percent_change, relative_volume, float_shares, has_news, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := s.conn.Exec(ctx, query,
		a.ID,
		a.Symbol,
		a.Price,
		a.PercentChange,
		a.RelativeVolume,
		a.FloatShares,
		a.HasNews,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert archived alert: %w", err)
	}
	return nil
}
