// Package scanner implements the scan pipeline: snapshot fetch, prefilter,
// bounded deep validation and alert emission.
package scanner

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"momentum-scanner/internal/domain"
	"momentum-scanner/internal/executor"
	"momentum-scanner/internal/observability"
	"momentum-scanner/internal/storage"
)

// Config holds the prefilter thresholds and fan-out width for scan runs.
type Config struct {
	PriceMin         float64
	PriceMax         float64
	MinPercentChange float64
	MaxCandidates    int // prefilter cap; <= 0 means unbounded
	Concurrency      int // deep-validation worker width
}

// Status is a point-in-time snapshot of scanner state for the health
// surface.
type Status struct {
	Running        bool      `json:"running"`
	LastError      string    `json:"last_error,omitempty"`
	LastStartedAt  time.Time `json:"last_started_at"`
	LastFinishedAt time.Time `json:"last_finished_at"`
	LastDurationMS int64     `json:"last_duration_ms"`

	// Counters from the most recent run, overwritten at each run boundary.
	Fetched       int `json:"fetched"`
	Prefiltered   int `json:"prefiltered"`
	DeepChecked   int `json:"deep_checked"`
	AlertsCreated int `json:"alerts_created"`
}

// Scanner drives the scan pipeline. One scan runs at a time: a trigger
// arriving while a scan is in flight is dropped, not queued, so a slow
// upstream can never stack overlapping scans.
type Scanner struct {
	cfg       Config
	fetcher   *UniverseFetcher
	validator *Validator
	archive   storage.ScanArchive // optional
	metrics   *observability.Metrics
	logger    *log.Logger

	running atomic.Bool
	mu      sync.RWMutex // guards status
	status  Status
}

// Options contains dependencies for creating a Scanner.
type Options struct {
	Config    Config
	Fetcher   *UniverseFetcher
	Validator *Validator
	Archive   storage.ScanArchive    // optional
	Metrics   *observability.Metrics // optional
	Logger    *log.Logger
}

// New creates a Scanner.
func New(opts Options) *Scanner {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Scanner{
		cfg:       opts.Config,
		fetcher:   opts.Fetcher,
		validator: opts.Validator,
		archive:   opts.Archive,
		metrics:   opts.Metrics,
		logger:    logger,
	}
}

// Run scans once immediately, then on every tick of the fixed period until
// ctx is cancelled.
func (s *Scanner) Run(ctx context.Context, period time.Duration) {
	s.Scan(ctx)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Scan(ctx)
		}
	}
}

// Scan executes one scan cycle. It returns false when a scan was already in
// flight and the trigger was dropped.
func (s *Scanner) Scan(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Println("scan trigger dropped: previous scan still running")
		return false
	}
	defer s.running.Store(false)

	start := time.Now()
	s.mu.Lock()
	s.status = Status{LastStartedAt: start}
	s.mu.Unlock()

	run := s.scan(ctx)

	finish := time.Now()
	run.StartedAt = start
	run.FinishedAt = finish

	s.mu.Lock()
	s.status.LastFinishedAt = finish
	s.status.LastDurationMS = finish.Sub(start).Milliseconds()
	s.status.LastError = run.ErrorMessage
	s.status.Fetched = run.Fetched
	s.status.Prefiltered = run.Prefiltered
	s.status.DeepChecked = run.DeepChecked
	s.status.AlertsCreated = run.AlertsFired
	s.mu.Unlock()

	s.metrics.ScanCompleted(run.ErrorMessage != "", finish.Sub(start), run.Fetched, run.Prefiltered)
	s.recordRun(ctx, run)

	return true
}

// scan runs the pipeline and returns the run summary. Run-level failures
// end the run early with the error recorded; the scanner stays ready for
// the next tick.
func (s *Scanner) scan(ctx context.Context) *domain.ScanRun {
	run := &domain.ScanRun{}

	universe, err := s.fetcher.FetchUniverse(ctx)
	if err != nil {
		s.logger.Printf("scan aborted: %v", err)
		run.ErrorMessage = err.Error()
		return run
	}
	run.Fetched = len(universe)

	candidates := Prefilter(universe, s.cfg.PriceMin, s.cfg.PriceMax, s.cfg.MinPercentChange, s.cfg.MaxCandidates)
	run.Prefiltered = len(candidates)

	results := executor.RunAll(ctx, candidates, s.cfg.Concurrency, s.logger,
		func(ctx context.Context, c domain.Candidate) ValidationResult {
			return s.validator.Validate(ctx, c)
		})

	for _, r := range results {
		if r.DeepChecked {
			run.DeepChecked++
		}
		if r.Alert != nil {
			run.AlertsFired++
			s.archiveAlert(ctx, r.Alert)
		}
	}

	s.logger.Printf("scan finished: fetched=%d prefiltered=%d deep_checked=%d alerts=%d",
		run.Fetched, run.Prefiltered, run.DeepChecked, run.AlertsFired)
	return run
}

// recordRun appends the run summary to the archive. Archive failures only
// cost analytics, never the scan.
func (s *Scanner) recordRun(ctx context.Context, run *domain.ScanRun) {
	if s.archive == nil {
		return
	}
	if err := s.archive.RecordRun(ctx, run); err != nil {
		s.logger.Printf("archive scan run: %v", err)
	}
}

func (s *Scanner) archiveAlert(ctx context.Context, a *domain.Alert) {
	if s.archive == nil {
		return
	}
	if err := s.archive.ArchiveAlert(ctx, a); err != nil {
		s.logger.Printf("archive alert %s: %v", a.Symbol, err)
	}
}

// Status returns a snapshot of the scanner's current state.
func (s *Scanner) Status() Status {
	s.mu.RLock()
	st := s.status
	s.mu.RUnlock()
	st.Running = s.running.Load()
	return st
}
