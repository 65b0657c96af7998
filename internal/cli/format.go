package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount with two decimals and thousands separators.
func FormatMoney(amount float64) string {
	str := decimal.NewFromFloat(amount).Abs().StringFixed(2)
	intPart, decPart, _ := strings.Cut(str, ".")

	result := groupThousands(intPart) + "." + decPart
	if amount < 0 && strings.Trim(str, "0.") != "" {
		result = "-" + result
	}
	return result
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatPnL formats P&L with sign.
func FormatPnL(pnl float64) string {
	formatted := FormatMoney(pnl)
	if pnl > 0 && formatted != "0.00" {
		return "+" + formatted
	}
	return formatted
}

// FormatRatio formats a profit factor style ratio.
func FormatRatio(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FormatRiskReward formats a risk-reward ratio; zero means no eligible trades.
func FormatRiskReward(rr float64) string {
	if rr == 0 {
		return "-"
	}
	return fmt.Sprintf("1:%.2f", rr)
}

// FormatDate formats a date in the given location.
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// FormatDateTime formats a timestamp in the given location.
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02 15:04")
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dd %dh", int(d.Hours())/24, int(d.Hours())%24)
}

// TruncateString truncates a string to max runes with ellipsis.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
