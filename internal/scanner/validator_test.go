package scanner

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"momentum-scanner/internal/cache"
	"momentum-scanner/internal/cooldown"
	"momentum-scanner/internal/domain"
	"momentum-scanner/internal/marketdata/stub"
	storagemem "momentum-scanner/internal/storage/memory"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestValidator(client *stub.Client, store *storagemem.AlertStore) *Validator {
	return NewValidator(ValidatorOptions{
		Config: ValidatorConfig{
			MinRelativeVolume:     5.0,
			MaxFloatShares:        5_000_000,
			AvgVolumeLookbackDays: 14,
			NewsLookback:          24 * time.Hour,
		},
		Client:         client,
		Cooldown:       cooldown.New(15*time.Minute, store, testLogger()),
		Store:          store,
		AvgVolumeCache: cache.NewMemory[float64](),
		FloatCache:     cache.NewMemory[float64](),
		NewsCache:      cache.NewMemory[bool](),
		Logger:         testLogger(),
	})
}

func candidate(symbol string, dayVolume float64) domain.Candidate {
	return domain.Candidate{Symbol: symbol, Price: 4.20, PercentChange: 18.5, DayVolume: dayVolume}
}

func TestValidatePassingCandidateFiresAlert(t *testing.T) {
	client := stub.New()
	client.AvgDailyVolume["SURG"] = 100_000
	client.FloatShares["SURG"] = 2_000_000
	client.NewsCount["SURG"] = 2
	store := storagemem.NewAlertStore()
	v := newTestValidator(client, store)

	res := v.Validate(context.Background(), candidate("SURG", 1_000_000))
	if !res.DeepChecked {
		t.Fatal("candidate should have been deep checked")
	}
	if res.Alert == nil {
		t.Fatal("expected an alert")
	}
	if res.Alert.RelativeVolume != 10.00 {
		t.Errorf("RelativeVolume = %v, want 10.00", res.Alert.RelativeVolume)
	}
	if res.Alert.FloatShares != 2_000_000 {
		t.Errorf("FloatShares = %d, want 2000000", res.Alert.FloatShares)
	}
	if !res.Alert.HasNews {
		t.Error("HasNews = false, want true")
	}
	if res.Alert.ID == 0 {
		t.Error("alert not assigned a store ID")
	}

	stored, err := store.ListRecent(context.Background(), 0)
	if err != nil || len(stored) != 1 {
		t.Fatalf("ListRecent() = %d alerts, err %v; want exactly 1", len(stored), err)
	}
}

func TestValidateRejectsLowRelativeVolume(t *testing.T) {
	client := stub.New()
	client.AvgDailyVolume["MEH"] = 500_000
	client.FloatShares["MEH"] = 2_000_000
	client.NewsCount["MEH"] = 1
	v := newTestValidator(client, storagemem.NewAlertStore())

	res := v.Validate(context.Background(), candidate("MEH", 1_000_000)) // ratio 2.0
	if res.Alert != nil {
		t.Fatal("ratio below threshold must not alert")
	}
	if !res.DeepChecked {
		t.Fatal("rejection still counts as a deep check")
	}
}

func TestValidateZeroAverageVolumeIsInsufficientData(t *testing.T) {
	client := stub.New()
	client.AvgDailyVolume["IPO"] = 0
	client.FloatShares["IPO"] = 1_000_000
	client.NewsCount["IPO"] = 3
	v := newTestValidator(client, storagemem.NewAlertStore())

	// Must reject without dividing by zero.
	if res := v.Validate(context.Background(), candidate("IPO", 1_000_000)); res.Alert != nil {
		t.Fatal("zero average volume must not alert")
	}
}

func TestValidateRejectsWithoutNews(t *testing.T) {
	client := stub.New()
	client.AvgDailyVolume["QUIET"] = 100_000
	client.FloatShares["QUIET"] = 2_000_000
	v := newTestValidator(client, storagemem.NewAlertStore())

	if res := v.Validate(context.Background(), candidate("QUIET", 1_000_000)); res.Alert != nil {
		t.Fatal("candidate without news must not alert")
	}
}

func TestValidateRejectsOversizedFloat(t *testing.T) {
	client := stub.New()
	client.AvgDailyVolume["HEAVY"] = 100_000
	client.FloatShares["HEAVY"] = 6_000_000
	client.NewsCount["HEAVY"] = 1
	v := newTestValidator(client, storagemem.NewAlertStore())

	if res := v.Validate(context.Background(), candidate("HEAVY", 1_000_000)); res.Alert != nil {
		t.Fatal("float above the cap must not alert")
	}
}

func TestValidateRejectsUnresolvableFloat(t *testing.T) {
	client := stub.New()
	client.AvgDailyVolume["GHOST"] = 100_000
	client.NewsCount["GHOST"] = 1
	v := newTestValidator(client, storagemem.NewAlertStore())

	if res := v.Validate(context.Background(), candidate("GHOST", 1_000_000)); res.Alert != nil {
		t.Fatal("unresolvable float must not alert")
	}
}

func TestValidateCooldownSuppressesRepeat(t *testing.T) {
	client := stub.New()
	client.AvgDailyVolume["SURG"] = 100_000
	client.FloatShares["SURG"] = 2_000_000
	client.NewsCount["SURG"] = 2
	store := storagemem.NewAlertStore()
	v := newTestValidator(client, store)

	first := v.Validate(context.Background(), candidate("SURG", 1_000_000))
	if first.Alert == nil {
		t.Fatal("first pass should alert")
	}

	second := v.Validate(context.Background(), candidate("SURG", 1_000_000))
	if second.Alert != nil {
		t.Fatal("second pass within cooldown must not alert")
	}
	if second.DeepChecked {
		t.Fatal("cooldown gate must skip before any deep check")
	}
}

func TestValidateReAlertsAfterCooldownExpires(t *testing.T) {
	client := stub.New()
	client.AvgDailyVolume["SURG"] = 100_000
	client.FloatShares["SURG"] = 2_000_000
	client.NewsCount["SURG"] = 2
	store := storagemem.NewAlertStore()

	v := NewValidator(ValidatorOptions{
		Config: ValidatorConfig{
			MinRelativeVolume:     5.0,
			MaxFloatShares:        5_000_000,
			AvgVolumeLookbackDays: 14,
			NewsLookback:          24 * time.Hour,
		},
		Client:         client,
		Cooldown:       cooldown.New(10*time.Millisecond, store, testLogger()),
		Store:          store,
		AvgVolumeCache: cache.NewMemory[float64](),
		FloatCache:     cache.NewMemory[float64](),
		NewsCache:      cache.NewMemory[bool](),
		Logger:         testLogger(),
	})

	if res := v.Validate(context.Background(), candidate("SURG", 1_000_000)); res.Alert == nil {
		t.Fatal("first pass should alert")
	}

	time.Sleep(20 * time.Millisecond)

	if res := v.Validate(context.Background(), candidate("SURG", 1_000_000)); res.Alert == nil {
		t.Fatal("expired cooldown should allow a new alert")
	}

	stored, err := store.ListRecent(context.Background(), 0)
	if err != nil || len(stored) != 2 {
		t.Fatalf("ListRecent() = %d alerts, err %v; want 2", len(stored), err)
	}
}

func TestValidatePersistedRecencySurvivesRestart(t *testing.T) {
	client := stub.New()
	client.AvgDailyVolume["SURG"] = 100_000
	client.FloatShares["SURG"] = 2_000_000
	client.NewsCount["SURG"] = 2
	store := storagemem.NewAlertStore()

	if res := newTestValidator(client, store).Validate(context.Background(), candidate("SURG", 1_000_000)); res.Alert == nil {
		t.Fatal("first pass should alert")
	}

	// A fresh validator simulates a process restart: the in-memory
	// cooldown map is empty but the store still remembers.
	restarted := newTestValidator(client, store)
	res := restarted.Validate(context.Background(), candidate("SURG", 1_000_000))
	if res.Alert != nil || res.DeepChecked {
		t.Fatalf("persisted recency must suppress after restart, got %+v", res)
	}
}

func TestValidateCachesLookupsAcrossCalls(t *testing.T) {
	client := &countingClient{Client: stub.New()}
	client.AvgDailyVolume["MEH"] = 500_000
	client.FloatShares["MEH"] = 2_000_000
	client.NewsCount["MEH"] = 1
	v := newTestValidator(client.Client, storagemem.NewAlertStore())
	v.client = client

	// Ratio 2.0 rejects both times, so no cooldown mark interferes.
	v.Validate(context.Background(), candidate("MEH", 1_000_000))
	v.Validate(context.Background(), candidate("MEH", 1_000_000))

	if client.barCalls != 1 {
		t.Errorf("daily bar lookups = %d, want 1 (second call must hit the cache)", client.barCalls)
	}
}

func TestValidateUpstreamErrorNotCached(t *testing.T) {
	client := &countingClient{Client: stub.New(), barErr: errors.New("rate limited")}
	client.FloatShares["FLAKY"] = 1_000_000
	client.NewsCount["FLAKY"] = 1
	v := newTestValidator(client.Client, storagemem.NewAlertStore())
	v.client = client

	if res := v.Validate(context.Background(), candidate("FLAKY", 1_000_000)); res.Alert != nil {
		t.Fatal("upstream failure must not alert")
	}

	// Next call retries the lookup instead of trusting a cached failure.
	client.barErr = nil
	client.AvgDailyVolume["FLAKY"] = 100_000
	res := v.Validate(context.Background(), candidate("FLAKY", 1_000_000))
	if res.Alert == nil {
		t.Fatal("recovered upstream should alert")
	}
	if client.barCalls != 2 {
		t.Errorf("daily bar lookups = %d, want 2", client.barCalls)
	}
}

// countingClient wraps the stub to count and optionally fail bar lookups.
type countingClient struct {
	*stub.Client
	barCalls int
	barErr   error
}

func (c *countingClient) FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]domain.DailyBar, error) {
	c.barCalls++
	if c.barErr != nil {
		return nil, c.barErr
	}
	return c.Client.FetchDailyBars(ctx, symbol, from, to)
}
