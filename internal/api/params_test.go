package api

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

func TestParseWindow(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	w, err := parseWindow(url.Values{}, time.UTC)
	require.NoError(t, err)
	assert.Nil(t, w, "no bounds selects all time")

	w, err = parseWindow(url.Values{"from": {"2024-03-01"}, "to": {"2024-03-31"}}, ny)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 3, 1, 0, 0, 0, 0, ny).Equal(w.From))
	assert.True(t, time.Date(2024, 3, 31, 23, 59, 59, int(999*time.Millisecond), ny).Equal(w.To), "bare to date covers the whole day")

	w, err = parseWindow(url.Values{"from": {"2024-03-01T09:30:00Z"}, "to": {"2024-03-01T16:00:00Z"}}, ny)
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour+30*time.Minute, w.Duration())

	for _, q := range []url.Values{
		{"from": {"2024-03-01"}},
		{"from": {"yesterday"}, "to": {"2024-03-01"}},
		{"from": {"2024-03-02"}, "to": {"2024-03-01"}},
	} {
		_, err := parseWindow(q, time.UTC)
		assert.ErrorIs(t, err, apperrors.ErrInvalidWindow, q.Encode())
	}
}

func TestParseMonth(t *testing.T) {
	now := time.Date(2024, 7, 1, 2, 0, 0, 0, time.UTC)
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	y, m, err := parseMonth(url.Values{}, now, ny)
	require.NoError(t, err)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.June, m, "current month is taken in the bucketing location")

	y, m, err = parseMonth(url.Values{"year": {"2023"}, "month": {"2"}}, now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2023, y)
	assert.Equal(t, time.February, m)

	_, _, err = parseMonth(url.Values{"month": {"0"}}, now, time.UTC)
	assert.Error(t, err)
	_, _, err = parseMonth(url.Values{"year": {"abc"}}, now, time.UTC)
	assert.Error(t, err)
}

func TestParseFilters(t *testing.T) {
	f, err := parseTradeFilter(url.Values{"status": {"closed"}, "symbol": {"aapl"}, "limit": {"5"}, "tag": {"gap", "fade"}})
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, f.Status)
	assert.Equal(t, "AAPL", f.Symbol)
	assert.Equal(t, []string{"gap", "fade"}, f.Tags)
	assert.Equal(t, 5, f.Limit)

	_, err = parseTradeFilter(url.Values{"status": {"pending"}})
	assert.Error(t, err)
	_, err = parseTradeFilter(url.Values{"limit": {"-1"}})
	assert.Error(t, err)

	jf, err := parseJournalFilter(url.Values{"emotion": {"Greedy"}, "tag": {"fomo", "news"}}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, models.EmotionGreedy, jf.Emotion)
	assert.Equal(t, []string{"fomo", "news"}, jf.Tags)
	assert.True(t, jf.PopulateTrade)
}
