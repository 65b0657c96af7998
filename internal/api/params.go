package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trade-journal/internal/analytics"
	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
	"trade-journal/internal/store"
)

const dateLayout = "2006-01-02"

// parseTime accepts RFC3339 or a bare date in loc. A bare "to" date covers
// the whole day.
func parseTime(value string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is neither RFC3339 nor YYYY-MM-DD", apperrors.ErrInvalidWindow, value)
	}
	if endOfDay {
		d = d.AddDate(0, 0, 1).Add(-analytics.TimeUnit)
	}
	return d, nil
}

// parseWindow reads from/to. Both absent selects all time; giving only one is an error.
func parseWindow(q url.Values, loc *time.Location) (*models.DateRange, error) {
	from, to := q.Get("from"), q.Get("to")
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("%w: from and to must be given together", apperrors.ErrInvalidWindow)
	}

	f, err := parseTime(from, loc, false)
	if err != nil {
		return nil, err
	}
	t, err := parseTime(to, loc, true)
	if err != nil {
		return nil, err
	}
	if t.Before(f) {
		return nil, fmt.Errorf("%w: to is before from", apperrors.ErrInvalidWindow)
	}
	return &models.DateRange{From: f, To: t}, nil
}

// parseMonth reads year/month, defaulting to the current month in loc.
func parseMonth(q url.Values, now time.Time, loc *time.Location) (int, time.Month, error) {
	now = now.In(loc)
	year, month := now.Year(), now.Month()

	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			return 0, 0, apperrors.NewValidationError("year", v, "invalid year")
		}
		year = y
	}
	if v := q.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, apperrors.NewValidationError("month", v, "must be 1-12")
		}
		month = time.Month(m)
	}
	return year, month, nil
}

func parseLimit(q url.Values) (int, error) {
	v := q.Get("limit")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apperrors.NewValidationError("limit", v, "must be a non-negative integer")
	}
	return n, nil
}

func parseTradeFilter(q url.Values) (store.TradeFilter, error) {
	f := store.TradeFilter{
		StrategyID: q.Get("strategyId"),
		Symbol:     strings.ToUpper(q.Get("symbol")),
		Tags:       q["tag"],
	}
	switch status := models.TradeStatus(strings.ToUpper(q.Get("status"))); status {
	case "":
	case models.StatusOpen, models.StatusClosed:
		f.Status = status
	default:
		return f, apperrors.NewValidationError("status", status, "must be OPEN or CLOSED")
	}

	limit, err := parseLimit(q)
	if err != nil {
		return f, err
	}
	f.Limit = limit
	return f, nil
}

func parseJournalFilter(q url.Values, loc *time.Location) (store.JournalFilter, error) {
	f := store.JournalFilter{
		TradeID:       q.Get("tradeId"),
		Tags:          q["tag"],
		PopulateTrade: q.Get("populate") != "false",
	}
	if v := q.Get("emotion"); v != "" {
		e := models.Emotion(strings.ToLower(v))
		if !e.Valid() {
			return f, apperrors.NewValidationError("emotion", v, "unknown emotion")
		}
		f.Emotion = e
	}

	window, err := parseWindow(q, loc)
	if err != nil {
		return f, err
	}
	if window != nil {
		f.From, f.To = window.From, window.To
	}

	limit, err := parseLimit(q)
	if err != nil {
		return f, err
	}
	f.Limit = limit
	return f, nil
}
