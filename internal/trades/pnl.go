// Package trades implements the trade lifecycle and keeps strategy
// snapshots in step with closed trades.
package trades

import (
	"github.com/shopspring/decimal"

	"trade-journal/internal/models"
)

var hundred = decimal.NewFromInt(100)

// ComputePnL returns the realized P/L of a closed position and its
// percentage of the entry notional. The percentage is 0 when the notional is 0.
func ComputePnL(side models.TradeSide, entry, exit, quantity, fees float64) (pnl, pct float64) {
	e := decimal.NewFromFloat(entry)
	q := decimal.NewFromFloat(quantity)
	sign := decimal.NewFromFloat(side.Sign())

	p := decimal.NewFromFloat(exit).Sub(e).Mul(q).Mul(sign).Sub(decimal.NewFromFloat(fees))
	pnl, _ = p.Float64()

	notional := e.Mul(q)
	if notional.IsZero() {
		return pnl, 0
	}
	pct, _ = p.Div(notional).Mul(hundred).Round(4).Float64()
	return pnl, pct
}
