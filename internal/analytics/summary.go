// Package analytics turns trade and journal records into performance statistics.
//
// The Build*/Summarize/Compute*/Correlate* functions are pure and operate on
// records already fetched; Engine fetches through the record store and
// composes them.
package analytics

import (
	"sort"
	"time"

	"trade-journal/internal/models"
	"trade-journal/internal/stats"
)

// TimeUnit is the gap between a window and its preceding comparison window.
const TimeUnit = time.Millisecond

// SortByExit returns a copy of trades ordered by exit date ascending.
// Trades without an exit date sort first; ties keep their input order.
func SortByExit(trades []models.Trade) []models.Trade {
	ordered := make([]models.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ExitTime().Before(ordered[j].ExitTime())
	})
	return ordered
}

// Summarize aggregates a set of closed trades. Drawdown is always measured
// in exit-date order regardless of the order of the input.
func Summarize(trades []models.Trade) models.MetricsSummary {
	ordered := SortByExit(trades)

	var dd stats.DrawdownTracker
	pnls := make([]float64, len(ordered))
	for i, t := range ordered {
		pnls[i] = t.PnL
		dd.Add(t.PnL)
	}

	grossProfit, grossLoss, wins, losses := stats.SplitPnL(pnls)
	n := len(ordered)

	return models.MetricsSummary{
		TotalPnL:     dd.Total(),
		TotalTrades:  n,
		WinRate:      stats.WinRate(wins, n),
		MaxDrawdown:  dd.MaxDrawdown(),
		AvgProfit:    stats.Average(dd.Total(), n),
		ProfitFactor: stats.ProfitFactor(grossProfit, grossLoss),
		GrossProfit:  grossProfit,
		GrossLoss:    grossLoss,
		Wins:         wins,
		Losses:       losses,
	}
}

// PreviousWindow returns the equal-length window ending one TimeUnit before w starts.
func PreviousWindow(w models.DateRange) models.DateRange {
	prevTo := w.From.Add(-TimeUnit)
	return models.DateRange{
		From: prevTo.Add(-w.Duration()),
		To:   prevTo,
	}
}

// Compare computes percentage deltas of current against previous.
// A nil previous, or one that saw no trades, means there is nothing to
// compare against and every delta is 0.
func Compare(current models.MetricsSummary, previous *models.MetricsSummary) models.MetricsChange {
	if previous == nil || previous.TotalTrades == 0 {
		return models.MetricsChange{}
	}

	change := func(cur, prev float64) float64 {
		return stats.PercentageChange(cur, &prev)
	}

	return models.MetricsChange{
		TotalPnL:     change(current.TotalPnL, previous.TotalPnL),
		WinRate:      change(current.WinRate, previous.WinRate),
		MaxDrawdown:  change(current.MaxDrawdown, previous.MaxDrawdown),
		TotalTrades:  change(float64(current.TotalTrades), float64(previous.TotalTrades)),
		AvgProfit:    change(current.AvgProfit, previous.AvgProfit),
		ProfitFactor: change(current.ProfitFactor, previous.ProfitFactor),
	}
}
