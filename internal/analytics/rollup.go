package analytics

import (
	"math"
	"sort"

	"trade-journal/internal/models"
	"trade-journal/internal/stats"
)

// UnassignedStrategy names the bucket of trades with no strategy.
const UnassignedStrategy = "Unassigned"

// RiskReward returns the realized reward multiple of a trade, with risk
// measured as the distance from entry to stop. ok is false when the trade
// has no exit, zero risk or no positive reward; such trades do not enter
// the average.
func RiskReward(t models.Trade) (ratio float64, ok bool) {
	if t.ExitPrice == nil {
		return 0, false
	}
	risk := math.Abs(t.EntryPrice - t.StopLoss)
	if risk <= 0 {
		return 0, false
	}
	reward := (*t.ExitPrice - t.EntryPrice) * t.Side.Sign()
	if reward <= 0 {
		return 0, false
	}
	return reward / risk, true
}

// AvgRiskReward averages RiskReward over the qualifying trades, 0 if none qualify.
func AvgRiskReward(trades []models.Trade) float64 {
	var ratios []float64
	for _, t := range trades {
		if r, ok := RiskReward(t); ok {
			ratios = append(ratios, r)
		}
	}
	return stats.Mean(ratios)
}

// ComputeSnapshot recomputes a strategy's performance block from all of its
// closed trades. Zero trades produce the all-zero snapshot.
func ComputeSnapshot(trades []models.Trade) models.PerformanceSnapshot {
	if len(trades) == 0 {
		return models.PerformanceSnapshot{}
	}

	summary := Summarize(trades)
	return models.PerformanceSnapshot{
		TotalTrades:   summary.TotalTrades,
		WinRate:       summary.WinRate,
		ProfitFactor:  summary.ProfitFactor,
		AvgRiskReward: AvgRiskReward(trades),
		MaxDrawdown:   summary.MaxDrawdown,
		NetPnL:        summary.TotalPnL,
	}
}

// BuildStrategyRows computes live per-strategy performance from closed trades.
// Every known strategy gets a row, even without trades in range. Trades with
// no strategy, or one that no longer exists, go to the Unassigned row, which
// is listed last and only when it has trades.
func BuildStrategyRows(trades []models.Trade, strategies []models.Strategy) []models.StrategyPerfRow {
	known := make(map[string]bool, len(strategies))
	for _, s := range strategies {
		known[s.ID] = true
	}

	groups := make(map[string][]models.Trade)
	var unassigned []models.Trade
	for _, t := range trades {
		if t.StrategyID == "" || !known[t.StrategyID] {
			unassigned = append(unassigned, t)
			continue
		}
		groups[t.StrategyID] = append(groups[t.StrategyID], t)
	}

	rows := make([]models.StrategyPerfRow, 0, len(strategies)+1)
	for _, s := range strategies {
		rows = append(rows, models.StrategyPerfRow{
			StrategyID:          s.ID,
			StrategyName:        s.Name,
			PerformanceSnapshot: ComputeSnapshot(groups[s.ID]),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].StrategyName < rows[j].StrategyName
	})

	if len(unassigned) > 0 {
		rows = append(rows, models.StrategyPerfRow{
			StrategyName:        UnassignedStrategy,
			PerformanceSnapshot: ComputeSnapshot(unassigned),
		})
	}
	return rows
}
