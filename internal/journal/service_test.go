package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
	"trade-journal/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.SQLiteStore) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewService(s, zerolog.Nop()), s
}

func addTrade(t *testing.T, s *store.SQLiteStore, id, userID string) {
	t.Helper()
	now := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)
	exit := 105.0
	require.NoError(t, s.CreateTrade(context.Background(), &models.Trade{
		ID: id, UserID: userID, Symbol: "MSFT", Side: models.SideLong,
		EntryPrice: 100, ExitPrice: &exit, Quantity: 1, PnL: 5,
		Status: models.StatusClosed, EntryDate: now, ExitDate: &now,
	}))
}

func TestCreateValidation(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	addTrade(t, s, "foreign", "u2")

	_, err := svc.Create(ctx, "", Input{Emotion: models.EmotionNeutral, StressLevel: 3})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	for name, in := range map[string]Input{
		"no emotion":      {StressLevel: 3},
		"unknown emotion": {Emotion: "elated", StressLevel: 3},
		"stress too low":  {Emotion: models.EmotionNeutral, StressLevel: 0},
		"stress too high": {Emotion: models.EmotionNeutral, StressLevel: 11},
		"foreign trade":   {Emotion: models.EmotionNeutral, StressLevel: 3, TradeID: "foreign"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, "u1", in)
			assert.ErrorIs(t, err, apperrors.ErrInvalidJournal)
		})
	}
}

func TestCreateAndGetPopulatesTrade(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	addTrade(t, s, "t1", "u1")

	e, err := svc.Create(ctx, "u1", Input{
		TradeID:     "t1",
		Emotion:     models.EmotionDisciplined,
		StressLevel: 2,
		Content:     "waited for the retest",
	})
	require.NoError(t, err)
	assert.False(t, e.Date.IsZero())
	assert.Equal(t, []string{}, e.Tags)

	got, err := svc.Get(ctx, "u1", e.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Trade)
	assert.Equal(t, "t1", got.Trade.ID)

	_, err = svc.Get(ctx, "u2", e.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateAndDelete(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	addTrade(t, s, "t1", "u1")

	e, err := svc.Create(ctx, "u1", Input{Emotion: models.EmotionAnxious, StressLevel: 8})
	require.NoError(t, err)

	calm := models.EmotionNeutral
	stress := 4
	link := "t1"
	e, err = svc.Update(ctx, "u1", e.ID, Patch{Emotion: &calm, StressLevel: &stress, TradeID: &link})
	require.NoError(t, err)
	assert.Equal(t, models.EmotionNeutral, e.Emotion)
	assert.Equal(t, "t1", e.TradeID)

	bad := 12
	_, err = svc.Update(ctx, "u1", e.ID, Patch{StressLevel: &bad})
	assert.ErrorIs(t, err, apperrors.ErrInvalidJournal)

	require.NoError(t, svc.Delete(ctx, "u1", e.ID))
	_, err = svc.Get(ctx, "u1", e.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	day := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	mk := func(offset int, emotion models.Emotion, tags ...string) {
		_, err := svc.Create(ctx, "u1", Input{
			Date: day.AddDate(0, 0, offset), Emotion: emotion, StressLevel: 5, Tags: tags,
		})
		require.NoError(t, err)
	}
	mk(0, models.EmotionGreedy, "fomo")
	mk(1, models.EmotionDisciplined, "plan")
	mk(2, models.EmotionGreedy, "plan", "fomo")

	all, err := svc.List(ctx, "u1", store.JournalFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	greedy, err := svc.List(ctx, "u1", store.JournalFilter{Emotion: models.EmotionGreedy})
	require.NoError(t, err)
	assert.Len(t, greedy, 2)

	window, err := svc.List(ctx, "u1", store.JournalFilter{From: day.AddDate(0, 0, 1), To: day.AddDate(0, 0, 2)})
	require.NoError(t, err)
	assert.Len(t, window, 2)

	tagged, err := svc.List(ctx, "u1", store.JournalFilter{Tags: []string{"plan"}})
	require.NoError(t, err)
	assert.Len(t, tagged, 2)

	_, err = svc.List(ctx, "u1", store.JournalFilter{From: day, To: day.Add(-time.Hour)})
	assert.ErrorIs(t, err, apperrors.ErrInvalidWindow)

	_, err = svc.List(ctx, "", store.JournalFilter{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
