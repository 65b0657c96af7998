package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/logging"
	"trade-journal/internal/metrics"
	"trade-journal/internal/models"
	"trade-journal/internal/store"
)

// Source is the subset of the record store the engine reads from.
type Source interface {
	GetTrades(ctx context.Context, filter store.TradeFilter) ([]models.Trade, error)
	GetJournal(ctx context.Context, filter store.JournalFilter) ([]models.JournalEntry, error)
	ListStrategies(ctx context.Context, userID string) ([]models.Strategy, error)
}

// Engine answers analytics queries for a single user at a time.
// It holds no per-request state and is safe for concurrent use.
// Store failures are returned as-is and never retried.
type Engine struct {
	source  Source
	logger  zerolog.Logger
	metrics *metrics.Metrics
	loc     *time.Location
}

// NewEngine creates an analytics engine. A nil loc buckets months and days in UTC.
func NewEngine(source Source, logger zerolog.Logger, m *metrics.Metrics, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{
		source:  source,
		logger:  logging.WithOperation(logger, "analytics"),
		metrics: m,
		loc:     loc,
	}
}

// Location returns the location used for month and day buckets.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// checkScope rejects calls without a user or with a reversed window.
// It runs before any query is issued.
func checkScope(userID string, window *models.DateRange) error {
	if userID == "" {
		return apperrors.ErrUnauthorized
	}
	if window != nil && window.To.Before(window.From) {
		return fmt.Errorf("%w: to %s is before from %s", apperrors.ErrInvalidWindow,
			window.To.Format(time.RFC3339), window.From.Format(time.RFC3339))
	}
	return nil
}

func (e *Engine) observe(op, userID string, start time.Time, err *error) {
	e.metrics.ObserveQuery(op, start, *err)
	ev := e.logger.Debug()
	if *err != nil {
		ev = e.logger.Warn().Err(*err)
	}
	ev.Str("query", op).Str("user_id", userID).Dur("duration", time.Since(start)).Msg("Analytics query")
}

func (e *Engine) closedTrades(ctx context.Context, userID string, window *models.DateRange) ([]models.Trade, error) {
	return e.source.GetTrades(ctx, store.ClosedTrades(userID, window))
}

// Summary aggregates the user's closed trades in window (nil for all time).
func (e *Engine) Summary(ctx context.Context, userID string, window *models.DateRange) (summary *models.MetricsSummary, err error) {
	defer e.observe("summary", userID, time.Now(), &err)
	if err := checkScope(userID, window); err != nil {
		return nil, err
	}

	trades, err := e.closedTrades(ctx, userID, window)
	if err != nil {
		return nil, err
	}
	s := Summarize(trades)
	return &s, nil
}

// Compare aggregates window and the equal-length window before it.
// An all-time query has no preceding period and reports zero deltas.
func (e *Engine) Compare(ctx context.Context, userID string, window *models.DateRange) (cmp *models.MetricsComparison, err error) {
	defer e.observe("compare", userID, time.Now(), &err)
	if err := checkScope(userID, window); err != nil {
		return nil, err
	}

	trades, err := e.closedTrades(ctx, userID, window)
	if err != nil {
		return nil, err
	}
	cmp = &models.MetricsComparison{Current: Summarize(trades)}
	if window == nil {
		return cmp, nil
	}

	prevWindow := PreviousWindow(*window)
	prevTrades, err := e.closedTrades(ctx, userID, &prevWindow)
	if err != nil {
		return nil, err
	}
	prev := Summarize(prevTrades)

	cur := *window
	cmp.Window = &cur
	cmp.PreviousWindow = &prevWindow
	cmp.Previous = &prev
	cmp.Changes = Compare(cmp.Current, &prev)
	return cmp, nil
}

// EquityCurve returns the cumulative P/L series over window.
func (e *Engine) EquityCurve(ctx context.Context, userID string, window *models.DateRange) (points []models.EquityPoint, err error) {
	defer e.observe("equity", userID, time.Now(), &err)
	if err := checkScope(userID, window); err != nil {
		return nil, err
	}

	trades, err := e.closedTrades(ctx, userID, window)
	if err != nil {
		return nil, err
	}
	return BuildEquityCurve(trades), nil
}

// MonthlyTrend returns month-bucketed win rate and profit factor over window.
func (e *Engine) MonthlyTrend(ctx context.Context, userID string, window *models.DateRange) (points []models.TrendPoint, err error) {
	defer e.observe("trend", userID, time.Now(), &err)
	if err := checkScope(userID, window); err != nil {
		return nil, err
	}

	trades, err := e.closedTrades(ctx, userID, window)
	if err != nil {
		return nil, err
	}
	return BuildMonthlyTrend(trades, e.loc), nil
}

// StrategyPerformance computes live per-strategy rows over window.
// Unlike the cached snapshot on each strategy, these honor the window.
func (e *Engine) StrategyPerformance(ctx context.Context, userID string, window *models.DateRange) (rows []models.StrategyPerfRow, err error) {
	defer e.observe("strategies", userID, time.Now(), &err)
	if err := checkScope(userID, window); err != nil {
		return nil, err
	}

	strategies, err := e.source.ListStrategies(ctx, userID)
	if err != nil {
		return nil, err
	}
	trades, err := e.closedTrades(ctx, userID, window)
	if err != nil {
		return nil, err
	}
	return BuildStrategyRows(trades, strategies), nil
}

// Psychology correlates moods with outcomes. It uses journal entries when
// the user has any in window and falls back to trade mood tags otherwise;
// the result's Source tells which path ran.
func (e *Engine) Psychology(ctx context.Context, userID string, window *models.DateRange) (insights *models.PsychologyInsights, err error) {
	defer e.observe("psychology", userID, time.Now(), &err)
	if err := checkScope(userID, window); err != nil {
		return nil, err
	}

	filter := store.JournalFilter{UserID: userID, PopulateTrade: true}
	if window != nil {
		filter.From = window.From
		filter.To = window.To
	}
	entries, err := e.source.GetJournal(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		result := CorrelateJournal(entries)
		return &result, nil
	}

	trades, err := e.closedTrades(ctx, userID, window)
	if err != nil {
		return nil, err
	}
	result := CorrelateTradeMoods(trades)
	return &result, nil
}

// Heatmap returns per-day P/L for a calendar month, only for days with trades.
func (e *Engine) Heatmap(ctx context.Context, userID string, year int, month time.Month) (cells []models.HeatmapCell, err error) {
	defer e.observe("heatmap", userID, time.Now(), &err)
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	window, err := MonthRange(year, month, e.loc)
	if err != nil {
		return nil, err
	}
	trades, err := e.closedTrades(ctx, userID, &window)
	if err != nil {
		return nil, err
	}
	return BuildHeatmap(trades, e.loc), nil
}

// Dashboard runs every view for window concurrently. The first failure
// cancels the remaining queries and is returned.
func (e *Engine) Dashboard(ctx context.Context, userID string, window *models.DateRange) (*models.Dashboard, error) {
	if err := checkScope(userID, window); err != nil {
		return nil, err
	}

	d := &models.Dashboard{}
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()

	p.Go(func(ctx context.Context) error {
		m, err := e.Compare(ctx, userID, window)
		d.Metrics = m
		return err
	})
	p.Go(func(ctx context.Context) error {
		eq, err := e.EquityCurve(ctx, userID, window)
		d.Equity = eq
		return err
	})
	p.Go(func(ctx context.Context) error {
		tr, err := e.MonthlyTrend(ctx, userID, window)
		d.Trend = tr
		return err
	})
	p.Go(func(ctx context.Context) error {
		rows, err := e.StrategyPerformance(ctx, userID, window)
		d.Strategies = rows
		return err
	})
	p.Go(func(ctx context.Context) error {
		ps, err := e.Psychology(ctx, userID, window)
		d.Psychology = ps
		return err
	})

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
