// Package strategy manages trading strategies and their cached performance snapshot.
package strategy

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"trade-journal/internal/analytics"
	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/logging"
	"trade-journal/internal/metrics"
	"trade-journal/internal/models"
	"trade-journal/internal/store"
	"trade-journal/pkg/id"
)

// Store is the persistence the service needs.
type Store interface {
	store.StrategyStore
	GetTrades(ctx context.Context, filter store.TradeFilter) ([]models.Trade, error)
}

// Input describes a new strategy.
type Input struct {
	Name       string                `json:"name"`
	AssetClass string                `json:"assetClass"`
	Rules      string                `json:"rules"`
	Status     models.StrategyStatus `json:"status"`
}

// Patch holds optional descriptive edits. The performance snapshot is not editable.
type Patch struct {
	Name       *string                `json:"name"`
	AssetClass *string                `json:"assetClass"`
	Rules      *string                `json:"rules"`
	Status     *models.StrategyStatus `json:"status"`
}

// Service implements strategy CRUD and the performance roll-up.
type Service struct {
	store   Store
	cache   *ListCache
	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService creates a strategy service. cache may be nil to disable caching.
func NewService(st Store, cache *ListCache, logger zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   st,
		cache:   cache,
		logger:  logging.WithOperation(logger, "strategy"),
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewValidationError("name", name, "strategy name is required")
	}
	return nil
}

func validateStatus(status models.StrategyStatus) error {
	if !status.Valid() {
		return apperrors.NewValidationError("status", status, "must be 'active' or 'paused'")
	}
	return nil
}

// Create adds a strategy with an empty performance snapshot.
func (s *Service) Create(ctx context.Context, userID string, in Input) (*models.Strategy, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if in.Status == "" {
		in.Status = models.StrategyActive
	}
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if err := validateStatus(in.Status); err != nil {
		return nil, err
	}

	now := s.now()
	st := &models.Strategy{
		ID:         id.New(),
		UserID:     userID,
		Name:       strings.TrimSpace(in.Name),
		AssetClass: in.AssetClass,
		Rules:      in.Rules,
		Status:     in.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateStrategy(ctx, st); err != nil {
		return nil, err
	}
	s.InvalidateCache(userID)

	log := logging.WithUser(s.logger, userID)
	log.Info().Str("strategy_id", st.ID).Str("name", st.Name).Msg("Strategy created")
	return st, nil
}

// Get returns one strategy.
func (s *Service) Get(ctx context.Context, userID, strategyID string) (*models.Strategy, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	return s.store.GetStrategy(ctx, userID, strategyID)
}

// List returns the user's strategies, served from the cache while fresh.
func (s *Service) List(ctx context.Context, userID string) ([]models.Strategy, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	var version uint64
	if s.cache != nil {
		if list, ok := s.cache.Get(userID); ok {
			return list, nil
		}
		version = s.cache.Version()
	}

	list, err := s.store.ListStrategies(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetIfCurrent(userID, list, version)
	}
	return list, nil
}

// Update applies descriptive edits.
func (s *Service) Update(ctx context.Context, userID, strategyID string, patch Patch) (*models.Strategy, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	st, err := s.store.GetStrategy(ctx, userID, strategyID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			return nil, err
		}
		st.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.AssetClass != nil {
		st.AssetClass = *patch.AssetClass
	}
	if patch.Rules != nil {
		st.Rules = *patch.Rules
	}
	if patch.Status != nil {
		if err := validateStatus(*patch.Status); err != nil {
			return nil, err
		}
		st.Status = *patch.Status
	}
	st.UpdatedAt = s.now()

	if err := s.store.UpdateStrategy(ctx, st); err != nil {
		return nil, err
	}
	s.InvalidateCache(userID)
	return st, nil
}

// Delete removes a strategy. It fails with ErrStrategyInUse while trades reference it.
func (s *Service) Delete(ctx context.Context, userID, strategyID string) error {
	if userID == "" {
		return apperrors.ErrUnauthorized
	}
	if err := s.store.DeleteStrategy(ctx, userID, strategyID); err != nil {
		return err
	}
	s.InvalidateCache(userID)

	log := logging.WithUser(s.logger, userID)
	log.Info().Str("strategy_id", strategyID).Msg("Strategy deleted")
	return nil
}

// Recompute rebuilds a strategy's snapshot from all of its closed trades and
// overwrites the stored one in a single write.
//
// Two recomputes for the same strategy may interleave their read and write
// and leave a snapshot built from a stale read. No lock is taken; the next
// trade mutation on that strategy recomputes again and corrects it.
func (s *Service) Recompute(ctx context.Context, userID, strategyID string) (snap *models.PerformanceSnapshot, err error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	start := time.Now()
	defer func() {
		s.metrics.ObserveRollup(start, err)
		var total int
		var net float64
		if snap != nil {
			total, net = snap.TotalTrades, snap.NetPnL
		}
		logging.LogRollup(logging.WithUser(s.logger, userID), strategyID, total, net, time.Since(start), err)
	}()

	trades, err := s.store.GetTrades(ctx, store.TradeFilter{
		UserID:     userID,
		StrategyID: strategyID,
		Status:     models.StatusClosed,
		Order:      store.OrderExitAsc,
	})
	if err != nil {
		return nil, err
	}

	computed := analytics.ComputeSnapshot(trades)
	if err := s.store.UpdateStrategyPerformance(ctx, userID, strategyID, computed); err != nil {
		return nil, err
	}
	s.InvalidateCache(userID)
	return &computed, nil
}

// RecomputeAll rebuilds every snapshot of a user and returns how many
// succeeded. Failures are joined into the returned error.
func (s *Service) RecomputeAll(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, apperrors.ErrUnauthorized
	}
	list, err := s.store.ListStrategies(ctx, userID)
	if err != nil {
		return 0, err
	}

	p := pool.NewWithResults[string]().WithContext(ctx).WithMaxGoroutines(4)
	for _, st := range list {
		strategyID := st.ID
		p.Go(func(ctx context.Context) (string, error) {
			if _, err := s.Recompute(ctx, userID, strategyID); err != nil {
				return "", err
			}
			return strategyID, nil
		})
	}
	done, err := p.Wait()
	return len(done), err
}

// InvalidateCache drops the user's cached strategy list.
func (s *Service) InvalidateCache(userID string) {
	if s.cache != nil {
		s.cache.Invalidate(userID)
	}
}
