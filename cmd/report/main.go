// Package main generates offline CSV and Markdown reports of recent alerts.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"momentum-scanner/internal/config"
	"momentum-scanner/internal/reporting"
	pgstore "momentum-scanner/internal/storage/postgres"
)

func main() {
	config.LoadEnvFile(".env")

	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	outputDir := flag.String("output-dir", "output", "Output directory for report files")
	limit := flag.Int("limit", 0, "Maximum alerts to include (0 for all)")

	flag.Parse()

	logger := log.New(os.Stdout, "[report] ", log.LstdFlags|log.Lshortfile)

	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	g := reporting.NewGenerator(pgstore.NewAlertStore(pool), *outputDir, *limit, logger)
	report, err := g.Generate(ctx)
	if err != nil {
		logger.Fatalf("generate report: %v", err)
	}

	logger.Printf("done: %d alerts across %d symbols", report.TotalAlerts, report.UniqueSymbols)
}
