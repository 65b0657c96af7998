package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestMaxDrawdownExample(t *testing.T) {
	// cumulative 100, 60, 120, 100 -> drawdowns 0, 40, 0, 20
	assert.Equal(t, 40.0, MaxDrawdown([]float64{100, -40, 60, -20}))
}

func TestMaxDrawdownEdges(t *testing.T) {
	assert.Equal(t, 0.0, MaxDrawdown(nil))
	assert.Equal(t, 0.0, MaxDrawdown([]float64{10, 0, 5}))
	// peak starts at zero so an opening loss is drawdown
	assert.Equal(t, 30.0, MaxDrawdown([]float64{-10, -20, 5}))
}

func TestDrawdownTrackerState(t *testing.T) {
	var tr DrawdownTracker
	assert.Equal(t, 0.0, tr.Add(50))
	assert.Equal(t, 30.0, tr.Add(-30))
	assert.Equal(t, 20.0, tr.Total())
	assert.Equal(t, 50.0, tr.Peak())
	assert.Equal(t, 30.0, tr.MaxDrawdown())
}

func TestProfitFactor(t *testing.T) {
	assert.Equal(t, 500.0, ProfitFactor(500, 0))
	assert.Equal(t, 0.0, ProfitFactor(0, 0))
	assert.InDelta(t, 2.6667, ProfitFactor(160, 60), 0.0001)
}

func TestPercentageChange(t *testing.T) {
	assert.Equal(t, 0.0, PercentageChange(0, ptr(0)))
	assert.Equal(t, 100.0, PercentageChange(50, ptr(0)))
	assert.Equal(t, 100.0, PercentageChange(-50, ptr(0)))
	assert.Equal(t, 0.0, PercentageChange(123, nil))
	assert.Equal(t, 50.0, PercentageChange(150, ptr(100)))
	// negative base uses its magnitude
	assert.Equal(t, 150.0, PercentageChange(50, ptr(-100)))
}

func TestWinRateAndAverage(t *testing.T) {
	assert.Equal(t, 0.0, WinRate(0, 0))
	assert.Equal(t, 50.0, WinRate(2, 4))
	assert.Equal(t, 0.0, Average(10, 0))
	assert.Equal(t, 2.5, Mean([]float64{1, 2, 3, 4}))
	assert.Equal(t, 0.0, Mean(nil))
}

func TestSplitPnLIgnoresBreakeven(t *testing.T) {
	gp, gl, wins, losses := SplitPnL([]float64{100, -40, 0, 60, -20})
	assert.Equal(t, 160.0, gp)
	assert.Equal(t, 60.0, gl)
	assert.Equal(t, 2, wins)
	assert.Equal(t, 2, losses)
}
