package analytics

import (
	"fmt"
	"sort"
	"time"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

// MonthRange returns the inclusive window covering a calendar month in loc.
func MonthRange(year int, month time.Month, loc *time.Location) (models.DateRange, error) {
	if month < time.January || month > time.December {
		return models.DateRange{}, fmt.Errorf("%w: month %d", apperrors.ErrInvalidWindow, month)
	}
	if loc == nil {
		loc = time.UTC
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return models.DateRange{
		From: from,
		To:   from.AddDate(0, 1, 0).Add(-TimeUnit),
	}, nil
}

// BuildHeatmap sums P/L per calendar day of exit. Only days with trades
// are returned, in day order.
func BuildHeatmap(trades []models.Trade, loc *time.Location) []models.HeatmapCell {
	if loc == nil {
		loc = time.UTC
	}

	cells := make(map[string]*models.HeatmapCell)
	for _, t := range trades {
		exit := t.ExitTime().In(loc)
		key := exit.Format("2006-01-02")
		cell := cells[key]
		if cell == nil {
			y, m, d := exit.Date()
			cell = &models.HeatmapCell{Day: d, Date: time.Date(y, m, d, 0, 0, 0, 0, loc)}
			cells[key] = cell
		}
		cell.Value += t.PnL
		cell.Count++
	}

	out := make([]models.HeatmapCell, 0, len(cells))
	for _, cell := range cells {
		out = append(out, *cell)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// FillHeatmap expands sparse cells into one cell per day of the month,
// with zero cells where no trades closed.
func FillHeatmap(year int, month time.Month, loc *time.Location, cells []models.HeatmapCell) []models.HeatmapCell {
	if loc == nil {
		loc = time.UTC
	}
	byDay := make(map[int]models.HeatmapCell, len(cells))
	for _, c := range cells {
		byDay[c.Day] = c
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	days := first.AddDate(0, 1, -1).Day()

	full := make([]models.HeatmapCell, days)
	for d := 1; d <= days; d++ {
		if c, ok := byDay[d]; ok {
			full[d-1] = c
			continue
		}
		full[d-1] = models.HeatmapCell{Day: d, Date: time.Date(year, month, d, 0, 0, 0, 0, loc)}
	}
	return full
}
