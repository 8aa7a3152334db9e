// Package main runs the momentum scanner: periodic snapshot fetch,
// prefilter, deep validation and alerting, plus the HTTP surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"momentum-scanner/internal/cache"
	"momentum-scanner/internal/config"
	"momentum-scanner/internal/cooldown"
	"momentum-scanner/internal/forwarder"
	"momentum-scanner/internal/logging"
	"momentum-scanner/internal/marketdata"
	"momentum-scanner/internal/marketdata/stub"
	"momentum-scanner/internal/observability"
	"momentum-scanner/internal/scanner"
	"momentum-scanner/internal/storage"
	chstore "momentum-scanner/internal/storage/clickhouse"
	"momentum-scanner/internal/storage/memory"
	"momentum-scanner/internal/storage/migrations"
	pgstore "momentum-scanner/internal/storage/postgres"
	"momentum-scanner/internal/web"
)

func main() {
	// Load .env file if exists
	config.LoadEnvFile(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Flags override the environment for the settings that change most
	// between runs.
	listenAddr := flag.String("listen-addr", cfg.ListenAddr, "HTTP listen address")
	scanPeriod := flag.Duration("scan-period", cfg.ScanPeriod, "Interval between scan cycles")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string (empty for in-memory)")
	clickhouseDSN := flag.String("clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string (empty to disable archiving)")
	redisAddr := flag.String("redis-addr", cfg.RedisAddr, "Redis address for shared caches (empty for in-memory)")
	webhookURL := flag.String("webhook-url", cfg.WebhookURL, "Webhook URL for alert delivery (empty to disable)")
	useStub := flag.Bool("use-stub", false, "Use the canned market data client instead of the HTTP API")

	flag.Parse()

	cfg.ListenAddr = *listenAddr
	cfg.ScanPeriod = *scanPeriod
	cfg.PostgresDSN = *postgresDSN
	cfg.ClickhouseDSN = *clickhouseDSN
	cfg.RedisAddr = *redisAddr
	cfg.WebhookURL = *webhookURL

	logger := logging.New("[scanner] ", cfg.LogFile)

	if !*useStub && cfg.APIKey == "" {
		logger.Fatal("SCANNER_API_KEY is required (use --use-stub for canned data)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Alert store
	store, cleanup, err := createStore(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("create store: %v", err)
	}
	defer cleanup()

	// Optional scan archive
	archive, archiveCleanup, err := createArchive(ctx, cfg.ClickhouseDSN)
	if err != nil {
		logger.Fatalf("create archive: %v", err)
	}
	defer archiveCleanup()

	metrics := observability.NewMetrics("momentum_scanner")

	// Market data client
	var client marketdata.Client
	if *useStub {
		logger.Println("using stub market data client")
		client = stub.New()
	} else {
		client = marketdata.NewHTTPClient(cfg.APIBaseURL, cfg.APIKey,
			marketdata.WithLatencyObserver(metrics.UpstreamCall))
	}

	// Caches
	avgVolCache, floatCache, newsCache := createCaches(cfg.RedisAddr, logger)

	// Alert outputs
	hub := web.NewHub(logging.New("[ws] ", cfg.LogFile))
	outputs := []forwarder.Forwarder{hub}
	if cfg.WebhookURL != "" {
		outputs = append(outputs, forwarder.NewWebhook(cfg.WebhookURL, nil))
	}
	fanout := forwarder.NewFanout(logging.New("[forwarder] ", cfg.LogFile), metrics.ForwardError, outputs...)

	validator := scanner.NewValidator(scanner.ValidatorOptions{
		Config: scanner.ValidatorConfig{
			MinRelativeVolume:     cfg.MinRelativeVolume,
			MaxFloatShares:        cfg.MaxFloatShares,
			AvgVolumeLookbackDays: cfg.AvgVolumeLookbackDays,
			NewsLookback:          cfg.NewsLookback,
		},
		Client:         client,
		Cooldown:       cooldown.New(cfg.Cooldown, store, logging.New("[cooldown] ", cfg.LogFile)),
		Store:          store,
		Forwarder:      fanout,
		AvgVolumeCache: avgVolCache,
		FloatCache:     floatCache,
		NewsCache:      newsCache,
		Metrics:        metrics,
		Logger:         logging.New("[validator] ", cfg.LogFile),
	})

	sc := scanner.New(scanner.Options{
		Config: scanner.Config{
			PriceMin:         cfg.PriceMin,
			PriceMax:         cfg.PriceMax,
			MinPercentChange: cfg.MinPercentChange,
			MaxCandidates:    cfg.MaxCandidates,
			Concurrency:      cfg.Concurrency,
		},
		Fetcher:   scanner.NewUniverseFetcher(client, cfg.MaxPages, logging.New("[fetcher] ", cfg.LogFile)),
		Validator: validator,
		Archive:   archive,
		Metrics:   metrics,
		Logger:    logger,
	})

	srv := web.NewServer(web.Options{
		Addr:    cfg.ListenAddr,
		Scanner: sc,
		Store:   store,
		Metrics: observability.Handler(),
		Hub:     hub,
		Logger:  logging.New("[web] ", cfg.LogFile),
	})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("received signal %v, shutting down", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("http shutdown: %v", err)
		}
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logger.Printf("http server: %v", err)
			cancel()
		}
	}()

	logger.Printf("scanning every %v, price band [%v, %v], min change %.1f%%",
		cfg.ScanPeriod, cfg.PriceMin, cfg.PriceMax, cfg.MinPercentChange)
	sc.Run(ctx, cfg.ScanPeriod)

	logger.Println("shutdown complete")
}

// createStore selects the alert store. An empty DSN means in-memory.
func createStore(ctx context.Context, postgresDSN string) (storage.AlertStore, func(), error) {
	if postgresDSN == "" {
		return memory.NewAlertStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}
	return pgstore.NewAlertStore(pool), pool.Close, nil
}

// createArchive selects the scan archive. An empty DSN disables archiving.
func createArchive(ctx context.Context, clickhouseDSN string) (storage.ScanArchive, func(), error) {
	if clickhouseDSN == "" {
		return nil, func() {}, nil
	}

	conn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}
	return chstore.NewScanArchive(conn), func() { conn.Close() }, nil
}

// createCaches selects the lookup caches. An empty Redis address means
// per-process in-memory caches.
func createCaches(redisAddr string, logger *log.Logger) (cache.Cache[float64], cache.Cache[float64], cache.Cache[bool]) {
	if redisAddr == "" {
		return cache.NewMemory[float64](), cache.NewMemory[float64](), cache.NewMemory[bool]()
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	return cache.NewRedis[float64](rdb, cache.NamespaceAvgVolume, logger),
		cache.NewRedis[float64](rdb, cache.NamespaceFloat, logger),
		cache.NewRedis[bool](rdb, cache.NamespaceNews, logger)
}
