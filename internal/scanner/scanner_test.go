package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"momentum-scanner/internal/domain"
	"momentum-scanner/internal/marketdata/stub"
	storagemem "momentum-scanner/internal/storage/memory"
)

func newTestScanner(client *stub.Client, store *storagemem.AlertStore) *Scanner {
	return New(Options{
		Config: Config{
			PriceMin:         1.0,
			PriceMax:         20.0,
			MinPercentChange: 10.0,
			MaxCandidates:    50,
			Concurrency:      4,
		},
		Fetcher:   NewUniverseFetcher(client, 0, testLogger()),
		Validator: newTestValidator(client, store),
		Logger:    testLogger(),
	})
}

func TestScanEndToEnd(t *testing.T) {
	client := stub.New()
	client.Universe = []domain.SnapshotEntry{
		entry("SURG", 4.20, 18.5, 1_000_000),  // passes everything
		entry("HEAVY", 4.20, 18.5, 1_000_000), // float too large
		entry("FLAT", 4.20, 2.0, 1_000_000),   // prefiltered out
		entry("RICH", 50.00, 18.5, 1_000_000), // prefiltered out
	}
	client.AvgDailyVolume["SURG"] = 100_000
	client.FloatShares["SURG"] = 2_000_000
	client.NewsCount["SURG"] = 1
	client.AvgDailyVolume["HEAVY"] = 100_000
	client.FloatShares["HEAVY"] = 9_000_000
	client.NewsCount["HEAVY"] = 1

	store := storagemem.NewAlertStore()
	s := newTestScanner(client, store)

	if !s.Scan(context.Background()) {
		t.Fatal("Scan() = false, want it to run")
	}

	st := s.Status()
	if st.Running {
		t.Error("Running = true after scan finished")
	}
	if st.LastError != "" {
		t.Errorf("LastError = %q, want empty", st.LastError)
	}
	if st.Fetched != 4 {
		t.Errorf("Fetched = %d, want 4", st.Fetched)
	}
	if st.Prefiltered != 2 {
		t.Errorf("Prefiltered = %d, want 2", st.Prefiltered)
	}
	if st.DeepChecked != 2 {
		t.Errorf("DeepChecked = %d, want 2", st.DeepChecked)
	}
	if st.AlertsCreated != 1 {
		t.Errorf("AlertsCreated = %d, want 1", st.AlertsCreated)
	}

	alerts, err := store.ListRecent(context.Background(), 0)
	if err != nil || len(alerts) != 1 || alerts[0].Symbol != "SURG" {
		t.Fatalf("stored alerts = %+v, err %v; want single SURG alert", alerts, err)
	}
}

func TestScanDropsOverlappingTrigger(t *testing.T) {
	client := stub.New()
	store := storagemem.NewAlertStore()
	s := newTestScanner(client, store)

	gate := &gatedClient{Client: client, release: make(chan struct{})}
	s.fetcher = NewUniverseFetcher(gate, 0, testLogger())

	started := make(chan struct{})
	gate.started = started

	var wg sync.WaitGroup
	wg.Add(1)
	var first bool
	go func() {
		defer wg.Done()
		first = s.Scan(context.Background())
	}()

	<-started
	if s.Scan(context.Background()) {
		t.Error("overlapping Scan() = true, want trigger dropped")
	}
	if !s.Status().Running {
		t.Error("Running = false while a scan is in flight")
	}

	close(gate.release)
	wg.Wait()
	if !first {
		t.Error("first Scan() = false, want true")
	}
	if !s.Scan(context.Background()) {
		t.Error("Scan() after completion = false, want scanner available again")
	}
}

func TestScanRecordsFetchError(t *testing.T) {
	client := stub.New()
	store := storagemem.NewAlertStore()
	s := newTestScanner(client, store)
	s.fetcher = NewUniverseFetcher(&failingClient{Client: client}, 0, testLogger())

	if !s.Scan(context.Background()) {
		t.Fatal("Scan() = false, want it to run")
	}

	st := s.Status()
	if st.LastError == "" {
		t.Error("LastError empty after failed fetch")
	}
	if st.Fetched != 0 || st.AlertsCreated != 0 {
		t.Errorf("counters = %+v, want zeros after aborted run", st)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	client := stub.New()
	s := newTestScanner(client, storagemem.NewAlertStore())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}

	// The eager first scan ran before the ticker loop.
	if s.Status().LastStartedAt.IsZero() {
		t.Error("Run never performed the initial scan")
	}
}

// gatedClient blocks snapshot fetches until release is closed.
type gatedClient struct {
	*stub.Client
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (c *gatedClient) FetchSnapshotPage(ctx context.Context, cursor string) ([]domain.SnapshotEntry, string, error) {
	c.once.Do(func() { close(c.started) })
	<-c.release
	return c.Client.FetchSnapshotPage(ctx, cursor)
}

type failingClient struct {
	*stub.Client
}

func (c *failingClient) FetchSnapshotPage(context.Context, string) ([]domain.SnapshotEntry, string, error) {
	return nil, "", errors.New("snapshot unavailable")
}
