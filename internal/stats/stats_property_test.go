package stats

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: max drawdown is never negative, and it is zero exactly when the
// cumulative sum (starting from zero) never decreases.
func TestProperty_DrawdownInvariant(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	// Integral values keep the cumulative sums exact.
	pnlGen := gen.SliceOf(gen.IntRange(-500, 500).Map(func(v int) float64 { return float64(v) }))

	properties.Property("drawdown is non-negative", prop.ForAll(
		func(pnls []float64) bool {
			return MaxDrawdown(pnls) >= 0
		},
		pnlGen,
	))

	properties.Property("drawdown is zero iff cumulative sum is non-decreasing", prop.ForAll(
		func(pnls []float64) bool {
			nonDecreasing := true
			for _, p := range pnls {
				if p < 0 {
					nonDecreasing = false
					break
				}
			}
			return (MaxDrawdown(pnls) == 0) == nonDecreasing
		},
		pnlGen,
	))

	properties.Property("drawdown never exceeds the sum of losses", prop.ForAll(
		func(pnls []float64) bool {
			_, grossLoss, _, _ := SplitPnL(pnls)
			return MaxDrawdown(pnls) <= grossLoss
		},
		pnlGen,
	))

	properties.TestingRun(t)
}

// Property: percentage change never produces NaN or Inf.
func TestProperty_PercentageChangeFinite(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("result is finite", prop.ForAll(
		func(current, previous float64) bool {
			v := PercentageChange(current, &previous)
			return !math.IsNaN(v) && !math.IsInf(v, 0)
		},
		gen.Float64Range(-1e6, 1e6),
		gen.OneGenOf(gen.Const(0.0), gen.Float64Range(-1e6, 1e6)),
	))

	properties.Property("win rate stays within 0-100", prop.ForAll(
		func(total, wins int) bool {
			if wins > total {
				wins = total
			}
			r := WinRate(wins, total)
			return r >= 0 && r <= 100
		},
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
