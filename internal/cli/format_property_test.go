package cli

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

var moneyPattern = regexp.MustCompile(`^-?\d{1,3}(,\d{3})*\.\d{2}$`)

func parseMoney(s string) float64 {
	v, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return v
}

func TestProperty_MoneyFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("FormatMoney groups thousands with two decimals", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatMoney(amount)
			if !moneyPattern.MatchString(formatted) {
				t.Logf("bad format for %f: %s", amount, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.Property("FormatMoney preserves value", prop.ForAll(
		func(amount float64) bool {
			parsed := parseMoney(FormatMoney(amount))
			return math.Abs(parsed-math.Round(amount*100)/100) <= 0.01
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("FormatPnL signs gains", prop.ForAll(
		func(pnl float64) bool {
			formatted := FormatPnL(pnl)
			switch {
			case math.Round(pnl*100) == 0:
				return formatted == "0.00"
			case pnl > 0:
				return strings.HasPrefix(formatted, "+")
			default:
				return strings.HasPrefix(formatted, "-")
			}
		},
		gen.Float64Range(-1e6, 1e6),
	))

	properties.Property("FormatPercent ends with percent sign", prop.ForAll(
		func(value float64) bool {
			formatted := FormatPercent(value)
			return strings.HasSuffix(formatted, "%") && (value <= 0 || strings.HasPrefix(formatted, "+"))
		},
		gen.Float64Range(-1000, 1000),
	))

	properties.TestingRun(t)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "1,234,567.89", FormatMoney(1234567.891))
	assert.Equal(t, "-100.00", FormatMoney(-100))
	assert.Equal(t, "0.00", FormatMoney(-0.001))
	assert.Equal(t, "999.50", FormatMoney(999.5))

	assert.Equal(t, "+100.00", FormatPnL(100))
	assert.Equal(t, "-", FormatRiskReward(0))
	assert.Equal(t, "1:2.00", FormatRiskReward(2))

	assert.Equal(t, "1h 30m", FormatDuration(90*time.Minute))
	assert.Equal(t, "2d 3h", FormatDuration(51*time.Hour))

	assert.Equal(t, "stuck to t...", TruncateString("stuck to the plan", 13))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))

	ny, err := time.LoadLocation("America/New_York")
	assert.NoError(t, err)
	assert.Equal(t, "2024-03-31", FormatDate(time.Date(2024, 4, 1, 2, 0, 0, 0, time.UTC), ny))
}
