package scanner

import (
	"context"
	"log"
	"math"
	"time"

	"momentum-scanner/internal/cache"
	"momentum-scanner/internal/cooldown"
	"momentum-scanner/internal/domain"
	"momentum-scanner/internal/forwarder"
	"momentum-scanner/internal/marketdata"
	"momentum-scanner/internal/observability"
	"momentum-scanner/internal/storage"
)

// Default cache TTLs, matched to how fast each quantity actually changes.
const (
	DefaultAvgVolumeTTL = 4 * time.Hour    // average volume moves slowly intraday
	DefaultFloatTTL     = 24 * time.Hour   // share structure rarely changes
	DefaultNewsTTL      = 10 * time.Minute // a cached "no news" must not outlive a catalyst
)

// ValidatorConfig holds the deep-validation thresholds.
type ValidatorConfig struct {
	MinRelativeVolume     float64       // reject below this day-volume / average-volume ratio
	MaxFloatShares        float64       // reject above this float
	AvgVolumeLookbackDays int           // daily-bar window for the volume average
	NewsLookback          time.Duration // how far back news counts
	AvgVolumeTTL          time.Duration
	FloatTTL              time.Duration
	NewsTTL               time.Duration
}

// ValidationResult is what deep validation reports for one candidate.
type ValidationResult struct {
	Alert       *domain.Alert // nil when the candidate was rejected or skipped
	DeepChecked bool          // false when a cooldown gate skipped the candidate
}

// Validator performs the expensive per-candidate checks. Validate never
// returns an error: a failed upstream lookup is logged and treated as a
// non-match so one bad symbol cannot abort the batch.
type Validator struct {
	cfg      ValidatorConfig
	client   marketdata.Client
	cooldown *cooldown.Manager
	store    storage.AlertStore
	forward  forwarder.Forwarder

	avgVolCache cache.Cache[float64]
	floatCache  cache.Cache[float64]
	newsCache   cache.Cache[bool]

	metrics *observability.Metrics
	logger  *log.Logger
	now     func() time.Time
}

// ValidatorOptions contains dependencies for creating a Validator.
type ValidatorOptions struct {
	Config    ValidatorConfig
	Client    marketdata.Client
	Cooldown  *cooldown.Manager
	Store     storage.AlertStore
	Forwarder forwarder.Forwarder // optional

	AvgVolumeCache cache.Cache[float64]
	FloatCache     cache.Cache[float64]
	NewsCache      cache.Cache[bool]

	Metrics *observability.Metrics // optional
	Logger  *log.Logger
}

// NewValidator creates a Validator. Zero TTLs fall back to the defaults.
func NewValidator(opts ValidatorOptions) *Validator {
	cfg := opts.Config
	if cfg.AvgVolumeTTL == 0 {
		cfg.AvgVolumeTTL = DefaultAvgVolumeTTL
	}
	if cfg.FloatTTL == 0 {
		cfg.FloatTTL = DefaultFloatTTL
	}
	if cfg.NewsTTL == 0 {
		cfg.NewsTTL = DefaultNewsTTL
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Validator{
		cfg:         cfg,
		client:      opts.Client,
		cooldown:    opts.Cooldown,
		store:       opts.Store,
		forward:     opts.Forwarder,
		avgVolCache: opts.AvgVolumeCache,
		floatCache:  opts.FloatCache,
		newsCache:   opts.NewsCache,
		metrics:     opts.Metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// Validate runs the full check sequence for one candidate, short-circuiting
// on the first failure to minimize wasted upstream calls.
func (v *Validator) Validate(ctx context.Context, c domain.Candidate) ValidationResult {
	// Cheap gate first: no I/O.
	if v.cooldown.IsInCooldown(c.Symbol) {
		return ValidationResult{}
	}
	// The in-memory map doesn't survive restarts; ask the store before
	// committing to expensive lookups.
	if v.cooldown.WasRecentlyAlerted(ctx, c.Symbol) {
		return ValidationResult{}
	}

	res := ValidationResult{DeepChecked: true}
	v.metrics.DeepCheck()

	avg, ok := v.averageVolume(ctx, c.Symbol)
	if !ok {
		return res
	}
	if !isPositiveFinite(avg) {
		// Zero or absent average volume means insufficient data, never
		// a division.
		return res
	}
	ratio := c.DayVolume / avg
	if !isPositiveFinite(ratio) || ratio < v.cfg.MinRelativeVolume {
		return res
	}

	hasNews, ok := v.hasRecentNews(ctx, c.Symbol)
	if !ok || !hasNews {
		return res
	}

	flt, ok := v.floatShares(ctx, c.Symbol)
	if !ok {
		return res
	}
	if !isPositiveFinite(flt) || flt > v.cfg.MaxFloatShares {
		return res
	}

	alert := &domain.Alert{
		Symbol:         c.Symbol,
		Price:          c.Price,
		PercentChange:  c.PercentChange,
		RelativeVolume: math.Round(ratio*100) / 100,
		FloatShares:    int64(math.Round(flt)),
		HasNews:        true,
		CreatedAt:      v.now(),
	}

	if stored, err := v.store.Insert(ctx, alert); err != nil {
		v.logger.Printf("validator: insert alert for %s: %v", c.Symbol, err)
	} else {
		alert = stored
	}

	if v.forward != nil {
		if err := v.forward.Send(ctx, alert); err != nil {
			v.logger.Printf("validator: forward alert for %s: %v", c.Symbol, err)
		}
	}

	v.cooldown.Mark(c.Symbol)
	v.metrics.AlertFired()

	res.Alert = alert
	return res
}

// averageVolume returns the cached average daily volume for symbol,
// computing it from daily bars on a miss. The computed value is cached even
// when it is zero; a cached zero is authoritative until TTL expiry. The
// second return is false only when the upstream lookup failed.
func (v *Validator) averageVolume(ctx context.Context, symbol string) (float64, bool) {
	if avg, ok := v.avgVolCache.Get(ctx, symbol); ok {
		v.metrics.CacheHit(cache.NamespaceAvgVolume)
		return avg, true
	}
	v.metrics.CacheMiss(cache.NamespaceAvgVolume)

	to := v.now().AddDate(0, 0, -1) // exclude today's partial volume
	from := to.AddDate(0, 0, -v.cfg.AvgVolumeLookbackDays)
	bars, err := v.client.FetchDailyBars(ctx, symbol, from, to)
	if err != nil {
		v.logger.Printf("validator: daily bars for %s: %v", symbol, err)
		return 0, false
	}

	var avg float64
	if len(bars) > 0 {
		var sum float64
		for _, b := range bars {
			sum += b.Volume
		}
		avg = sum / float64(len(bars))
	}

	v.avgVolCache.Set(ctx, symbol, avg, v.cfg.AvgVolumeTTL)
	return avg, true
}

// hasRecentNews returns the cached news-presence flag for symbol. Negative
// results are cached too: within the TTL a cached false is not retried.
func (v *Validator) hasRecentNews(ctx context.Context, symbol string) (bool, bool) {
	if has, ok := v.newsCache.Get(ctx, symbol); ok {
		v.metrics.CacheHit(cache.NamespaceNews)
		return has, true
	}
	v.metrics.CacheMiss(cache.NamespaceNews)

	count, err := v.client.FetchRecentNews(ctx, symbol, v.now().Add(-v.cfg.NewsLookback))
	if err != nil {
		v.logger.Printf("validator: recent news for %s: %v", symbol, err)
		return false, false
	}

	has := count > 0
	v.newsCache.Set(ctx, symbol, has, v.cfg.NewsTTL)
	return has, true
}

// floatShares returns the cached float proxy for symbol. An unresolvable
// float is cached as zero so the reference endpoint isn't hammered for
// symbols that never report one.
func (v *Validator) floatShares(ctx context.Context, symbol string) (float64, bool) {
	if f, ok := v.floatCache.Get(ctx, symbol); ok {
		v.metrics.CacheHit(cache.NamespaceFloat)
		return f, true
	}
	v.metrics.CacheMiss(cache.NamespaceFloat)

	info, err := v.client.FetchReferenceInfo(ctx, symbol)
	if err != nil {
		v.logger.Printf("validator: reference info for %s: %v", symbol, err)
		return 0, false
	}

	f, _ := info.ResolveFloat()
	v.floatCache.Set(ctx, symbol, f, v.cfg.FloatTTL)
	return f, true
}

// isPositiveFinite reports whether x is a usable positive number. Anything
// else is treated as insufficient data.
func isPositiveFinite(x float64) bool {
	return x > 0 && !math.IsInf(x, 0) && !math.IsNaN(x)
}
