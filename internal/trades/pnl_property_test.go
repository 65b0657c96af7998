package trades

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trade-journal/internal/models"
)

// Property: a LONG and a SHORT over the same prices mirror each other, both
// paying the fees.
func TestProperty_PnLSideSymmetry(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	// Cents keep the decimal conversion exact.
	cents := func(lo, hi int) gopter.Gen {
		return gen.IntRange(lo, hi).Map(func(v int) float64 { return float64(v) / 100 })
	}

	properties.Property("long + short = -2 * fees", prop.ForAll(
		func(entry, exit, qty, fees float64) bool {
			long, _ := ComputePnL(models.SideLong, entry, exit, qty, fees)
			short, _ := ComputePnL(models.SideShort, entry, exit, qty, fees)
			return math.Abs(long+short+2*fees) < 1e-6
		},
		cents(1, 100000), cents(1, 100000), gen.IntRange(1, 500).Map(func(v int) float64 { return float64(v) }), cents(0, 1000),
	))

	properties.Property("percentage shares the sign of pnl", prop.ForAll(
		func(entry, exit float64) bool {
			pnl, pct := ComputePnL(models.SideLong, entry, exit, 1, 0)
			return (pnl > 0) == (pct > 0) && (pnl < 0) == (pct < 0)
		},
		cents(1, 100000), cents(1, 100000),
	))

	properties.TestingRun(t)
}
