package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Momentum Alert Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Alerts: %d | Symbols: %d\n\n", r.TotalAlerts, r.UniqueSymbols))

	sb.WriteString("## Alerts\n\n")
	if len(r.Rows) > 0 {
		sb.WriteString("| Symbol | Price | Change% | RelVol | Float | At |\n")
		sb.WriteString("|--------|-------|---------|--------|-------|----|\n")
		for _, row := range r.Rows {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f | %d | %s |\n",
				row.Symbol, row.Price, row.PercentChange, row.RelativeVolume,
				row.FloatShares, row.CreatedAt.UTC().Format(time.RFC3339)))
		}
	} else {
		sb.WriteString("No alerts in window.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Per-Symbol Summary\n\n")
	if len(r.SymbolSummaries) > 0 {
		sb.WriteString("| Symbol | Alerts | Max RelVol | Max Change% | Last Alert |\n")
		sb.WriteString("|--------|--------|------------|-------------|------------|\n")
		for _, s := range r.SymbolSummaries {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.2f | %.2f | %s |\n",
				s.Symbol, s.Alerts, s.MaxRelativeVolume, s.MaxPercentChange,
				s.LastAlertAt.UTC().Format(time.RFC3339)))
		}
	} else {
		sb.WriteString("No symbols alerted.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
