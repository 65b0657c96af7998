package strategy

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/metrics"
	"trade-journal/internal/models"
	"trade-journal/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.SQLiteStore) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "strategy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	m := metrics.New()
	return NewService(s, NewListCache(16, time.Minute, m), zerolog.Nop(), m), s
}

func addClosed(t *testing.T, s *store.SQLiteStore, id, strategyID string, entry, stop, exit float64, day int) {
	t.Helper()
	exitDate := time.Date(2024, 4, 1, 16, 0, 0, 0, time.UTC).AddDate(0, 0, day)
	tr := &models.Trade{
		ID:         id,
		UserID:     "u1",
		Symbol:     "AAPL",
		Side:       models.SideLong,
		EntryPrice: entry,
		StopLoss:   stop,
		ExitPrice:  &exit,
		Quantity:   1,
		PnL:        exit - entry,
		Status:     models.StatusClosed,
		EntryDate:  exitDate.Add(-time.Hour),
		ExitDate:   &exitDate,
		StrategyID: strategyID,
	}
	require.NoError(t, s.CreateTrade(context.Background(), tr))
}

func TestCreateValidates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "", Input{Name: "x"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Create(ctx, "u1", Input{Name: "  "})
	var verr *apperrors.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Create(ctx, "u1", Input{Name: "x", Status: "archived"})
	assert.ErrorAs(t, err, &verr)

	st, err := svc.Create(ctx, "u1", Input{Name: " Mean reversion "})
	require.NoError(t, err)
	assert.Equal(t, "Mean reversion", st.Name)
	assert.Equal(t, models.StrategyActive, st.Status)
	assert.Equal(t, models.PerformanceSnapshot{}, st.Performance)
}

func TestRecomputeAndZeroReset(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	st, err := svc.Create(ctx, "u1", Input{Name: "ORB"})
	require.NoError(t, err)

	addClosed(t, s, "w", st.ID, 100, 90, 130, 0) // +30, R 3.0
	addClosed(t, s, "l", st.ID, 100, 90, 95, 1)  // -5, excluded from R

	snap, err := svc.Recompute(ctx, "u1", st.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.TotalTrades)
	assert.InDelta(t, 50, snap.WinRate, 1e-9)
	assert.InDelta(t, 6, snap.ProfitFactor, 1e-9)
	assert.InDelta(t, 3, snap.AvgRiskReward, 1e-9)
	assert.InDelta(t, 5, snap.MaxDrawdown, 1e-9)
	assert.InDelta(t, 25, snap.NetPnL, 1e-9)

	stored, err := svc.Get(ctx, "u1", st.ID)
	require.NoError(t, err)
	assert.Equal(t, *snap, stored.Performance)

	// idempotent
	again, err := svc.Recompute(ctx, "u1", st.ID)
	require.NoError(t, err)
	assert.Equal(t, *snap, *again)

	require.NoError(t, s.DeleteTrade(ctx, "u1", "w"))
	require.NoError(t, s.DeleteTrade(ctx, "u1", "l"))

	reset, err := svc.Recompute(ctx, "u1", st.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PerformanceSnapshot{}, *reset)

	stored, err = svc.Get(ctx, "u1", st.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PerformanceSnapshot{}, stored.Performance)
}

func TestRecomputeMissingStrategy(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Recompute(context.Background(), "u1", "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListIsCachedAndInvalidated(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	st, err := svc.Create(ctx, "u1", Input{Name: "ORB"})
	require.NoError(t, err)

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	// a write behind the service's back is not visible until invalidation
	other := &models.Strategy{ID: "raw", UserID: "u1", Name: "Raw", Status: models.StrategyActive,
		CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, s.CreateStrategy(ctx, other))

	list, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// mutating the returned slice does not corrupt the cache
	list[0].Name = "mutated"
	list, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ORB", list[0].Name)

	addClosed(t, s, "w", st.ID, 100, 90, 130, 0)
	_, err = svc.Recompute(ctx, "u1", st.ID)
	require.NoError(t, err)

	list, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 2, "recompute invalidates the cached list")
}

// racingStore invalidates the cache while a list read is in flight, the way
// a concurrent recompute would.
type racingStore struct {
	*store.SQLiteStore
	during func()
}

func (r *racingStore) ListStrategies(ctx context.Context, userID string) ([]models.Strategy, error) {
	list, err := r.SQLiteStore.ListStrategies(ctx, userID)
	if r.during != nil {
		r.during()
	}
	return list, err
}

func TestListDropsFillRacingInvalidation(t *testing.T) {
	_, s := newTestService(t)
	ctx := context.Background()

	cache := NewListCache(16, time.Minute, nil)
	rs := &racingStore{SQLiteStore: s}
	svc := NewService(rs, cache, zerolog.Nop(), nil)

	st, err := svc.Create(ctx, "u1", Input{Name: "ORB"})
	require.NoError(t, err)
	addClosed(t, s, "w", st.ID, 100, 90, 130, 0)

	rs.during = func() {
		_, err := svc.Recompute(ctx, "u1", st.ID)
		require.NoError(t, err)
	}
	stale, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, stale[0].Performance.TotalTrades, "read before the recompute landed")
	assert.Zero(t, cache.Len(), "the stale read is not cached")

	rs.during = nil
	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, list[0].Performance.TotalTrades)
	assert.Equal(t, 1, cache.Len())
}

func TestSetIfCurrent(t *testing.T) {
	c := NewListCache(4, time.Minute, nil)
	v := c.Version()
	c.Invalidate("u2")
	assert.False(t, c.SetIfCurrent("u1", []models.Strategy{{ID: "a"}}, v))
	_, ok := c.Get("u1")
	assert.False(t, ok)

	assert.True(t, c.SetIfCurrent("u1", []models.Strategy{{ID: "a"}}, c.Version()))
	_, ok = c.Get("u1")
	assert.True(t, ok)
}

func TestCacheExpires(t *testing.T) {
	c := NewListCache(4, 20*time.Millisecond, nil)
	c.Set("u1", []models.Strategy{{ID: "a"}})

	_, ok := c.Get("u1")
	assert.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := c.Get("u1")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestUpdateLeavesSnapshot(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	st, err := svc.Create(ctx, "u1", Input{Name: "ORB"})
	require.NoError(t, err)
	addClosed(t, s, "w", st.ID, 100, 90, 130, 0)
	snap, err := svc.Recompute(ctx, "u1", st.ID)
	require.NoError(t, err)

	name := "ORB v2"
	paused := models.StrategyPaused
	updated, err := svc.Update(ctx, "u1", st.ID, Patch{Name: &name, Status: &paused})
	require.NoError(t, err)
	assert.Equal(t, "ORB v2", updated.Name)

	stored, err := svc.Get(ctx, "u1", st.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StrategyPaused, stored.Status)
	assert.Equal(t, *snap, stored.Performance)

	bad := models.StrategyStatus("deleted")
	_, err = svc.Update(ctx, "u1", st.ID, Patch{Status: &bad})
	var verr *apperrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestDeleteBlockedAndRecomputeAll(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, "u1", Input{Name: "A"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, "u1", Input{Name: "B"})
	require.NoError(t, err)
	addClosed(t, s, "t1", a.ID, 100, 90, 110, 0)
	addClosed(t, s, "t2", b.ID, 100, 90, 80, 0)

	n, err := svc.RecomputeAll(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stored, err := svc.Get(ctx, "u1", b.ID)
	require.NoError(t, err)
	assert.InDelta(t, -20, stored.Performance.NetPnL, 1e-9)

	assert.ErrorIs(t, svc.Delete(ctx, "u1", a.ID), apperrors.ErrStrategyInUse)

	require.NoError(t, s.DeleteTrade(ctx, "u1", "t1"))
	require.NoError(t, svc.Delete(ctx, "u1", a.ID))
	_, err = svc.Get(ctx, "u1", a.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
