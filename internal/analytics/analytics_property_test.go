package analytics

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trade-journal/internal/models"
)

func tradesFromPnLs(pnls []float64) []models.Trade {
	trades := make([]models.Trade, len(pnls))
	for i, p := range pnls {
		trades[i] = closedTrade(fmt.Sprintf("t%d", i), p, i)
	}
	return trades
}

// Property: the snapshot is a pure function of the closed set, so
// recomputing twice with no mutation in between yields the same result,
// and the order trades arrive in never changes it.
func TestProperty_SnapshotIdempotentAndOrderFree(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("recompute is idempotent and order independent", prop.ForAll(
		func(pnls []float64) bool {
			trades := tradesFromPnLs(pnls)
			first := ComputeSnapshot(trades)
			second := ComputeSnapshot(trades)
			if first != second {
				return false
			}

			reversed := make([]models.Trade, len(trades))
			for i := range trades {
				reversed[len(trades)-1-i] = trades[i]
			}
			return ComputeSnapshot(reversed) == first
		},
		gen.SliceOf(gen.Float64Range(-1000, 1000)),
	))

	properties.TestingRun(t)
}

// Property: summary figures stay consistent with each other.
func TestProperty_SummaryConsistency(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("net equals gross profit minus gross loss, drawdown bounded by gross loss", prop.ForAll(
		func(pnls []float64) bool {
			s := Summarize(tradesFromPnLs(pnls))
			if math.Abs(s.TotalPnL-(s.GrossProfit-s.GrossLoss)) > 1e-6 {
				return false
			}
			if s.MaxDrawdown < 0 || s.MaxDrawdown > s.GrossLoss+1e-6 {
				return false
			}
			if s.Wins+s.Losses > s.TotalTrades {
				return false
			}
			return s.WinRate >= 0 && s.WinRate <= 100
		},
		gen.SliceOf(gen.Float64Range(-1000, 1000)),
	))

	properties.Property("equity curve ends at net P/L", prop.ForAll(
		func(pnls []float64) bool {
			trades := tradesFromPnLs(pnls)
			curve := BuildEquityCurve(trades)
			if len(curve) != len(trades) {
				return false
			}
			if len(curve) == 0 {
				return true
			}
			return math.Abs(curve[len(curve)-1].Value-Summarize(trades).TotalPnL) < 1e-6
		},
		gen.SliceOf(gen.Float64Range(-1000, 1000)),
	))

	properties.TestingRun(t)
}

// Property: the previous window has the same length and ends right before the current one.
func TestProperty_PreviousWindowAdjacent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	properties.Property("equal length, adjacent, non-overlapping", prop.ForAll(
		func(startHours, lengthHours int) bool {
			w := models.DateRange{
				From: base.Add(time.Duration(startHours) * time.Hour),
				To:   base.Add(time.Duration(startHours+lengthHours) * time.Hour),
			}
			prev := PreviousWindow(w)
			return prev.Duration() == w.Duration() &&
				w.From.Sub(prev.To) == TimeUnit &&
				!w.Contains(prev.To)
		},
		gen.IntRange(0, 50000),
		gen.IntRange(0, 10000),
	))

	properties.TestingRun(t)
}
