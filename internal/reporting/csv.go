package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderCSV renders alert rows as a CSV string.
func RenderCSV(rows []AlertRow) string {
	var sb strings.Builder

	sb.WriteString("id,symbol,price,percent_change,relative_volume,float_shares,created_at\n")

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%d,%s,%.4f,%.4f,%.2f,%d,%s\n",
			r.ID,
			r.Symbol,
			r.Price,
			r.PercentChange,
			r.RelativeVolume,
			r.FloatShares,
			r.CreatedAt.UTC().Format(time.RFC3339),
		))
	}

	return sb.String()
}
