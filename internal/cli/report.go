package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ebbflow-cash/ebbflow/internal/model"
)

// RenderAnalysisSummary writes the pattern analysis report grouped by
// recommendation.
func RenderAnalysisSummary(w io.Writer, patterns []model.VendorPattern) {
	byRec := map[model.Recommendation][]model.VendorPattern{}
	for _, p := range patterns {
		byRec[p.Recommendation] = append(byRec[p.Recommendation], p)
	}

	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("%s Pattern Analysis", ChartIcon)))
	fmt.Fprintf(w, "%s\n\n", SubtleStyle.Render(fmt.Sprintf("%d entities analyzed", len(patterns))))

	sections := []struct {
		rec   model.Recommendation
		title string
		style func(...string) string
	}{
		{model.RecommendAuto, "Automatic forecasting", SuccessStyle.Render},
		{model.RecommendManual, "Needs manual review", WarningStyle.Render},
		{model.RecommendSkip, "Skipped", SubtleStyle.Render},
	}

	for _, section := range sections {
		group := byRec[section.rec]
		if len(group) == 0 {
			continue
		}

		fmt.Fprintln(w, section.style(fmt.Sprintf("%s (%d)", section.title, len(group))))
		for _, p := range group {
			fmt.Fprintf(w, "  %-28s %-10s conf %.2f  %s\n",
				truncate(p.EntityID, 28),
				p.Timing.Type,
				minFloat(p.Timing.Confidence, p.Amount.Confidence),
				SubtleStyle.Render(p.Reasoning))
		}
		fmt.Fprintln(w)
	}
}

// RenderProjection writes the running balance table. Periods whose ending
// balance falls below lowWatermark are highlighted.
func RenderProjection(w io.Writer, points []model.BalancePoint, lowWatermark decimal.Decimal) {
	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("%s Cash Flow Projection", WaveIcon)))

	header := fmt.Sprintf("%-12s %-12s %12s %12s %12s %12s %12s",
		"From", "To", "Start", "Inflows", "Outflows", "Net", "End")
	fmt.Fprintln(w, TableHeaderStyle.Render(header))

	for _, p := range points {
		row := fmt.Sprintf("%-12s %-12s %12s %12s %12s %12s %12s",
			p.PeriodStart.Format("2006-01-02"),
			p.PeriodEnd.Format("2006-01-02"),
			p.StartingBalance.StringFixed(2),
			p.Inflows.StringFixed(2),
			p.Outflows.StringFixed(2),
			p.Net().StringFixed(2),
			p.EndingBalance.StringFixed(2))

		switch {
		case p.EndingBalance.IsNegative():
			fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render(row), ErrorIcon)
		case p.EndingBalance.LessThan(lowWatermark):
			fmt.Fprintf(w, "%s %s\n", WarningStyle.Render(row), WarningIcon)
		default:
			fmt.Fprintln(w, row)
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return strings.TrimSpace(s[:n-3]) + "..."
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
