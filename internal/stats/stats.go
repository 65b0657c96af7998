// Package stats provides the numeric primitives behind every performance metric.
//
// All functions are total: empty input and zero denominators resolve to
// documented neutral values instead of NaN, Inf or errors.
package stats

import "math"

// DrawdownTracker follows the running peak of a cumulative P/L series.
// Values must be fed in chronological (exit date) order.
type DrawdownTracker struct {
	peak        float64
	total       float64
	maxDrawdown float64
}

// Add folds the next P/L value into the series and returns the current drawdown.
func (d *DrawdownTracker) Add(pnl float64) float64 {
	d.total += pnl
	if d.total > d.peak {
		d.peak = d.total
	}
	drawdown := d.peak - d.total
	if drawdown > d.maxDrawdown {
		d.maxDrawdown = drawdown
	}
	return drawdown
}

// Total returns the cumulative sum so far.
func (d *DrawdownTracker) Total() float64 { return d.total }

// Peak returns the highest cumulative value seen so far (never below 0).
func (d *DrawdownTracker) Peak() float64 { return d.peak }

// MaxDrawdown returns the largest peak-to-current distance observed.
func (d *DrawdownTracker) MaxDrawdown() float64 { return d.maxDrawdown }

// MaxDrawdown returns the maximum drawdown of a chronologically ordered P/L series.
// The peak starts at 0, so an initial loss counts as drawdown.
func MaxDrawdown(pnls []float64) float64 {
	var tracker DrawdownTracker
	for _, p := range pnls {
		tracker.Add(p)
	}
	return tracker.MaxDrawdown()
}

// ProfitFactor returns grossProfit / grossLoss. With no losses it returns
// grossProfit itself rather than an unbounded ratio.
func ProfitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss == 0 {
		return grossProfit
	}
	return grossProfit / grossLoss
}

// WinRate returns wins as a percentage of total, 0 when total is 0.
func WinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total) * 100
}

// Average returns sum / n, 0 when n is 0.
func Average(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Mean returns the arithmetic mean of values, 0 for an empty slice.
func Mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return Average(sum, len(values))
}

// PercentageChange returns the change from previous to current in percent.
// A nil previous means there is no prior data and yields 0. A zero previous
// yields 0 when current is also 0, otherwise 100.
func PercentageChange(current float64, previous *float64) float64 {
	if previous == nil {
		return 0
	}
	prev := *previous
	if prev == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (current - prev) / math.Abs(prev) * 100
}

// SplitPnL sums positive values into gross profit and the absolute value of
// negative ones into gross loss. Zero values count towards neither.
func SplitPnL(pnls []float64) (grossProfit, grossLoss float64, wins, losses int) {
	for _, p := range pnls {
		switch {
		case p > 0:
			grossProfit += p
			wins++
		case p < 0:
			grossLoss += -p
			losses++
		}
	}
	return grossProfit, grossLoss, wins, losses
}
