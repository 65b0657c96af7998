package analytics

import (
	"sort"
	"time"

	"trade-journal/internal/models"
	"trade-journal/internal/stats"
)

// BuildEquityCurve emits one cumulative point per closed trade in exit order.
// No trades yields an empty, non-nil series.
func BuildEquityCurve(trades []models.Trade) []models.EquityPoint {
	points := make([]models.EquityPoint, 0, len(trades))
	var total float64
	for _, t := range SortByExit(trades) {
		total += t.PnL
		points = append(points, models.EquityPoint{Date: t.ExitTime(), Value: total})
	}
	return points
}

// MonthLabel formats the "YYYY-MM" bucket of t in loc.
func MonthLabel(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01")
}

// BuildMonthlyTrend buckets closed trades by exit month and reports each
// bucket's win rate and profit factor in calendar order.
func BuildMonthlyTrend(trades []models.Trade, loc *time.Location) []models.TrendPoint {
	if loc == nil {
		loc = time.UTC
	}

	buckets := make(map[string][]float64)
	for _, t := range trades {
		label := MonthLabel(t.ExitTime(), loc)
		buckets[label] = append(buckets[label], t.PnL)
	}

	labels := make([]string, 0, len(buckets))
	for label := range buckets {
		labels = append(labels, label)
	}
	// zero-padded YYYY-MM sorts lexically in calendar order
	sort.Strings(labels)

	points := make([]models.TrendPoint, 0, len(labels))
	for _, label := range labels {
		pnls := buckets[label]
		grossProfit, grossLoss, wins, _ := stats.SplitPnL(pnls)
		points = append(points, models.TrendPoint{
			Period:       label,
			WinRate:      stats.WinRate(wins, len(pnls)),
			ProfitFactor: stats.ProfitFactor(grossProfit, grossLoss),
			Trades:       len(pnls),
		})
	}
	return points
}
