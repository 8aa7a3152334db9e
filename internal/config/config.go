// Package config loads scanner settings from the environment with sane
// defaults for every tunable.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all scanner settings.
type Config struct {
	// Prefilter thresholds.
	PriceMin         float64
	PriceMax         float64
	MinPercentChange float64
	MaxCandidates    int

	// Deep validation thresholds.
	MinRelativeVolume     float64
	MaxFloatShares        float64
	AvgVolumeLookbackDays int
	NewsLookback          time.Duration

	// Scheduling.
	ScanPeriod  time.Duration
	Cooldown    time.Duration
	Concurrency int
	MaxPages    int

	// Market data upstream.
	APIBaseURL string
	APIKey     string

	// Storage and caching. Empty DSNs select in-memory implementations.
	PostgresDSN   string
	ClickhouseDSN string
	RedisAddr     string

	// Outputs.
	WebhookURL string
	ListenAddr string
	LogFile    string
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		PriceMin:         envFloat("SCANNER_PRICE_MIN", 1.0),
		PriceMax:         envFloat("SCANNER_PRICE_MAX", 20.0),
		MinPercentChange: envFloat("SCANNER_MIN_PERCENT_CHANGE", 10.0),
		MaxCandidates:    envInt("SCANNER_MAX_CANDIDATES", 50),

		MinRelativeVolume:     envFloat("SCANNER_MIN_RELATIVE_VOLUME", 5.0),
		MaxFloatShares:        envFloat("SCANNER_MAX_FLOAT_SHARES", 20_000_000),
		AvgVolumeLookbackDays: envInt("SCANNER_AVG_VOLUME_LOOKBACK_DAYS", 14),
		NewsLookback:          envDuration("SCANNER_NEWS_LOOKBACK", 24*time.Hour),

		ScanPeriod:  envDuration("SCANNER_SCAN_PERIOD", time.Minute),
		Cooldown:    envDuration("SCANNER_COOLDOWN", 15*time.Minute),
		Concurrency: envInt("SCANNER_CONCURRENCY", 4),
		MaxPages:    envInt("SCANNER_MAX_PAGES", 50),

		APIBaseURL: envString("SCANNER_API_BASE_URL", "https://api.polygon.io"),
		APIKey:     os.Getenv("SCANNER_API_KEY"),

		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		ClickhouseDSN: os.Getenv("CLICKHOUSE_DSN"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),

		WebhookURL: os.Getenv("SCANNER_WEBHOOK_URL"),
		ListenAddr: envString("SCANNER_LISTEN_ADDR", ":8080"),
		LogFile:    os.Getenv("SCANNER_LOG_FILE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that would make a scan meaningless.
func (c *Config) Validate() error {
	if c.PriceMin < 0 || c.PriceMax <= 0 || c.PriceMin > c.PriceMax {
		return fmt.Errorf("invalid price band [%v, %v]", c.PriceMin, c.PriceMax)
	}
	if c.MinRelativeVolume <= 0 {
		return fmt.Errorf("min relative volume must be positive, got %v", c.MinRelativeVolume)
	}
	if c.MaxFloatShares <= 0 {
		return fmt.Errorf("max float shares must be positive, got %v", c.MaxFloatShares)
	}
	if c.AvgVolumeLookbackDays <= 0 {
		return fmt.Errorf("avg volume lookback must be positive, got %d", c.AvgVolumeLookbackDays)
	}
	if c.ScanPeriod <= 0 {
		return fmt.Errorf("scan period must be positive, got %v", c.ScanPeriod)
	}
	if c.Cooldown <= 0 {
		return fmt.Errorf("cooldown must be positive, got %v", c.Cooldown)
	}
	return nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
