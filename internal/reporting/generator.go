package reporting

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"momentum-scanner/internal/domain"
	"momentum-scanner/internal/storage"
)

// Output file names inside the report directory.
const (
	CSVFileName      = "ALERTS.csv"
	MarkdownFileName = "REPORT.md"
)

// Generator builds and writes alert reports from the store.
type Generator struct {
	store     storage.AlertStore
	outputDir string
	limit     int
	logger    *log.Logger
	now       func() time.Time
}

// NewGenerator creates a Generator. A limit <= 0 includes every stored
// alert.
func NewGenerator(store storage.AlertStore, outputDir string, limit int, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{
		store:     store,
		outputDir: outputDir,
		limit:     limit,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate builds the report and writes the CSV and Markdown files.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	alerts, err := g.store.ListRecent(ctx, g.limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	report := g.build(alerts)

	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	csvPath := filepath.Join(g.outputDir, CSVFileName)
	if err := os.WriteFile(csvPath, []byte(RenderCSV(report.Rows)), 0644); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}

	mdPath := filepath.Join(g.outputDir, MarkdownFileName)
	if err := os.WriteFile(mdPath, []byte(RenderMarkdown(report)), 0644); err != nil {
		return nil, fmt.Errorf("write markdown: %w", err)
	}

	g.logger.Printf("report written: %d alerts, %d symbols to %s", report.TotalAlerts, report.UniqueSymbols, g.outputDir)
	return report, nil
}

// build flattens alerts into rows and per-symbol aggregates.
func (g *Generator) build(alerts []*domain.Alert) *Report {
	report := &Report{
		GeneratedAt: g.now(),
		TotalAlerts: len(alerts),
		Rows:        make([]AlertRow, 0, len(alerts)),
	}

	bySymbol := make(map[string]*SymbolSummary)
	for _, a := range alerts {
		report.Rows = append(report.Rows, AlertRow{
			ID:             a.ID,
			Symbol:         a.Symbol,
			Price:          a.Price,
			PercentChange:  a.PercentChange,
			RelativeVolume: a.RelativeVolume,
			FloatShares:    a.FloatShares,
			CreatedAt:      a.CreatedAt,
		})

		s, ok := bySymbol[a.Symbol]
		if !ok {
			s = &SymbolSummary{Symbol: a.Symbol}
			bySymbol[a.Symbol] = s
		}
		s.Alerts++
		if a.RelativeVolume > s.MaxRelativeVolume {
			s.MaxRelativeVolume = a.RelativeVolume
		}
		if a.PercentChange > s.MaxPercentChange {
			s.MaxPercentChange = a.PercentChange
		}
		if a.CreatedAt.After(s.LastAlertAt) {
			s.LastAlertAt = a.CreatedAt
		}
	}

	report.UniqueSymbols = len(bySymbol)
	report.SymbolSummaries = make([]SymbolSummary, 0, len(bySymbol))
	for _, s := range bySymbol {
		report.SymbolSummaries = append(report.SymbolSummaries, *s)
	}
	sort.Slice(report.SymbolSummaries, func(i, j int) bool {
		a, b := report.SymbolSummaries[i], report.SymbolSummaries[j]
		if a.Alerts != b.Alerts {
			return a.Alerts > b.Alerts
		}
		return a.Symbol < b.Symbol
	})

	return report
}
