package trades

import (
	"bytes"
	"context"
	"errors"
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
	"trade-journal/internal/strategy"
)

type fixture struct {
	svc        *Service
	strategies *strategy.Service
	store      *store.SQLiteStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "trades.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	m := metrics.New()
	strategies := strategy.NewService(s, strategy.NewListCache(16, time.Minute, m), zerolog.Nop(), m)
	return fixture{
		svc:        NewService(s, strategies, zerolog.Nop(), m),
		strategies: strategies,
		store:      s,
	}
}

func (f fixture) strategy(t *testing.T, name string) *models.Strategy {
	t.Helper()
	st, err := f.strategies.Create(context.Background(), "u1", strategy.Input{Name: name})
	require.NoError(t, err)
	return st
}

func (f fixture) snapshot(t *testing.T, strategyID string) models.PerformanceSnapshot {
	t.Helper()
	st, err := f.strategies.Get(context.Background(), "u1", strategyID)
	require.NoError(t, err)
	return st.Performance
}

var entryDay = time.Date(2024, 5, 6, 14, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func openInput(strategyID string) Input {
	return Input{
		Symbol:     " aapl ",
		Side:       models.SideLong,
		EntryPrice: 100,
		StopLoss:   95,
		Quantity:   10,
		Fees:       2,
		EntryDate:  entryDay,
		StrategyID: strategyID,
	}
}

func closedInput(strategyID string, exit float64) Input {
	in := openInput(strategyID)
	in.ExitPrice = ptr(exit)
	in.ExitDate = ptr(entryDay.Add(3 * time.Hour))
	return in
}

func TestComputePnL(t *testing.T) {
	pnl, pct := ComputePnL(models.SideLong, 100, 110, 10, 2)
	assert.InDelta(t, 98, pnl, 1e-9)
	assert.InDelta(t, 9.8, pct, 1e-9)

	pnl, pct = ComputePnL(models.SideShort, 100, 90, 5, 0)
	assert.InDelta(t, 50, pnl, 1e-9)
	assert.InDelta(t, 10, pct, 1e-9)

	pnl, _ = ComputePnL(models.SideShort, 100, 104, 5, 1)
	assert.InDelta(t, -21, pnl, 1e-9)

	// decimal arithmetic keeps cents exact
	pnl, _ = ComputePnL(models.SideLong, 0.1, 0.3, 3, 0)
	assert.Equal(t, 0.6, pnl)
}

func TestCreateOpenTrade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.strategy(t, "ORB")

	tr, err := f.svc.Create(ctx, "u1", openInput(st.ID))
	require.NoError(t, err)
	assert.Equal(t, "AAPL", tr.Symbol)
	assert.Equal(t, models.StatusOpen, tr.Status)
	assert.Zero(t, tr.PnL)
	assert.NotEmpty(t, tr.ID)

	assert.Equal(t, models.PerformanceSnapshot{}, f.snapshot(t, st.ID))
}

func TestCreateClosedTradeRollsUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.strategy(t, "ORB")

	tr, err := f.svc.Create(ctx, "u1", closedInput(st.ID, 110))
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, tr.Status)
	assert.InDelta(t, 98, tr.PnL, 1e-9)

	snap := f.snapshot(t, st.ID)
	assert.Equal(t, 1, snap.TotalTrades)
	assert.InDelta(t, 98, snap.NetPnL, 1e-9)
	assert.InDelta(t, 100, snap.WinRate, 1e-9)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "", openInput(""))
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	cases := map[string]func(*Input){
		"missing symbol":   func(in *Input) { in.Symbol = " " },
		"malformed symbol": func(in *Input) { in.Symbol = "AAPL; DROP" },
		"bad side":         func(in *Input) { in.Side = "FLAT" },
		"zero entry":       func(in *Input) { in.EntryPrice = 0 },
		"zero quantity":    func(in *Input) { in.Quantity = 0 },
		"negative fees":    func(in *Input) { in.Fees = -1 },
		"unknown emotion":  func(in *Input) { in.Emotion = "bored" },
		"unknown strategy": func(in *Input) { in.StrategyID = "missing" },
		"exit before entry": func(in *Input) {
			in.ExitPrice = ptr(101.0)
			in.ExitDate = ptr(entryDay.Add(-time.Hour))
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := openInput("")
			mutate(&in)
			_, err := f.svc.Create(ctx, "u1", in)
			assert.ErrorIs(t, err, apperrors.ErrInvalidTrade)
		})
	}
}

func TestStrategyOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	foreign, err := f.strategies.Create(ctx, "u2", strategy.Input{Name: "theirs"})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, "u1", openInput(foreign.ID))
	assert.ErrorIs(t, err, apperrors.ErrInvalidTrade)
}

func TestPartialExitStaysOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := openInput("")
	in.ExitPrice = ptr(110.0)
	tr, err := f.svc.Create(ctx, "u1", in)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, tr.Status)
	assert.Zero(t, tr.PnL)

	// the partial exit can be dropped while open
	tr, err = f.svc.Update(ctx, "u1", tr.ID, Patch{ClearExit: true})
	require.NoError(t, err)
	assert.Nil(t, tr.ExitPrice)
}

func TestCloseViaUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.strategy(t, "ORB")

	tr, err := f.svc.Create(ctx, "u1", openInput(st.ID))
	require.NoError(t, err)

	tr, err = f.svc.Update(ctx, "u1", tr.ID, Patch{
		ExitPrice: ptr(90.0),
		ExitDate:  ptr(entryDay.Add(time.Hour)),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, tr.Status)
	assert.InDelta(t, -102, tr.PnL, 1e-9)
	assert.InDelta(t, -10.2, tr.PnLPercentage, 1e-9)

	snap := f.snapshot(t, st.ID)
	assert.Equal(t, 1, snap.TotalTrades)
	assert.InDelta(t, -102, snap.NetPnL, 1e-9)

	// closed trades never reopen
	_, err = f.svc.Update(ctx, "u1", tr.ID, Patch{ClearExit: true})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTrade)
}

func TestEditClosedTradeRecomputes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.strategy(t, "ORB")

	tr, err := f.svc.Create(ctx, "u1", closedInput(st.ID, 110))
	require.NoError(t, err)

	tr, err = f.svc.Update(ctx, "u1", tr.ID, Patch{Quantity: ptr(20.0)})
	require.NoError(t, err)
	assert.InDelta(t, 198, tr.PnL, 1e-9)
	assert.InDelta(t, 198, f.snapshot(t, st.ID).NetPnL, 1e-9)

	// notes are not a roll-up input but the edit still persists
	tr, err = f.svc.Update(ctx, "u1", tr.ID, Patch{Notes: ptr("held through lunch")})
	require.NoError(t, err)
	got, err := f.svc.Get(ctx, "u1", tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "held through lunch", got.Notes)
}

func TestMoveBetweenStrategies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.strategy(t, "A")
	b := f.strategy(t, "B")

	tr, err := f.svc.Create(ctx, "u1", closedInput(a.ID, 110))
	require.NoError(t, err)
	require.Equal(t, 1, f.snapshot(t, a.ID).TotalTrades)

	_, err = f.svc.Update(ctx, "u1", tr.ID, Patch{StrategyID: ptr(b.ID)})
	require.NoError(t, err)

	assert.Equal(t, models.PerformanceSnapshot{}, f.snapshot(t, a.ID))
	assert.Equal(t, 1, f.snapshot(t, b.ID).TotalTrades)
}

func TestDeleteClosedTradeResetsSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.strategy(t, "ORB")

	tr, err := f.svc.Create(ctx, "u1", closedInput(st.ID, 110))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, "u1", tr.ID))
	assert.Equal(t, models.PerformanceSnapshot{}, f.snapshot(t, st.ID))

	_, err = f.svc.Get(ctx, "u1", tr.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, "u1", tr.ID), apperrors.ErrNotFound)
}

func TestListScopesToUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "u1", openInput(""))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "u2", openInput(""))
	require.NoError(t, err)

	list, err := f.svc.List(ctx, "u1", store.TradeFilter{UserID: "u2"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "u1", list[0].UserID)
}

type failingRollup struct {
	calls       int
	invalidated int
}

func (r *failingRollup) Recompute(context.Context, string, string) (*models.PerformanceSnapshot, error) {
	r.calls++
	return nil, errors.New("store unavailable")
}

func (r *failingRollup) InvalidateCache(string) { r.invalidated++ }

func TestRollupFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.strategy(t, "ORB")

	var logs bytes.Buffer
	rollup := &failingRollup{}
	svc := NewService(f.store, rollup, zerolog.New(&logs), nil)

	tr, err := svc.Create(ctx, "u1", closedInput(st.ID, 110))
	require.NoError(t, err)
	assert.Equal(t, 1, rollup.calls)
	assert.Equal(t, 1, rollup.invalidated)
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), `"strategy_id":"`+st.ID+`"`)
	assert.Contains(t, logs.String(), "store unavailable")

	require.NoError(t, svc.Delete(ctx, "u1", tr.ID))
	assert.Equal(t, 2, rollup.calls)
}
