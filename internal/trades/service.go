package trades

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/logging"
	"trade-journal/internal/metrics"
	"trade-journal/internal/models"
	"trade-journal/internal/security"
	"trade-journal/internal/store"
	"trade-journal/pkg/id"
)

// Store is the persistence the service needs.
type Store interface {
	store.TradeStore
	GetStrategy(ctx context.Context, userID, id string) (*models.Strategy, error)
}

// Rollup refreshes a strategy's cached snapshot.
type Rollup interface {
	Recompute(ctx context.Context, userID, strategyID string) (*models.PerformanceSnapshot, error)
	InvalidateCache(userID string)
}

// Input describes a new trade. Supplying both ExitPrice and ExitDate
// records it as already closed.
type Input struct {
	Symbol     string           `json:"symbol"`
	Side       models.TradeSide `json:"side"`
	EntryPrice float64          `json:"entryPrice"`
	ExitPrice  *float64         `json:"exitPrice,omitempty"`
	StopLoss   float64          `json:"stopLoss"`
	Target     *float64         `json:"target,omitempty"`
	Quantity   float64          `json:"quantity"`
	Fees       float64          `json:"fees"`
	EntryDate  time.Time        `json:"entryDate"`
	ExitDate   *time.Time       `json:"exitDate,omitempty"`
	StrategyID string           `json:"strategyId,omitempty"`
	Tags       []string         `json:"tags,omitempty"`
	Notes      string           `json:"notes,omitempty"`
	Emotion    models.Emotion   `json:"emotion,omitempty"`
}

// Patch holds optional edits. A nil field is left unchanged.
// ClearExit drops a partial exit on an open trade; closed trades never reopen.
type Patch struct {
	Symbol     *string           `json:"symbol,omitempty"`
	Side       *models.TradeSide `json:"side,omitempty"`
	EntryPrice *float64          `json:"entryPrice,omitempty"`
	ExitPrice  *float64          `json:"exitPrice,omitempty"`
	StopLoss   *float64          `json:"stopLoss,omitempty"`
	Target     *float64          `json:"target,omitempty"`
	Quantity   *float64          `json:"quantity,omitempty"`
	Fees       *float64          `json:"fees,omitempty"`
	EntryDate  *time.Time        `json:"entryDate,omitempty"`
	ExitDate   *time.Time        `json:"exitDate,omitempty"`
	StrategyID *string           `json:"strategyId,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Notes      *string           `json:"notes,omitempty"`
	Emotion    *models.Emotion   `json:"emotion,omitempty"`
	ClearExit  bool              `json:"clearExit,omitempty"`
}

// Service implements trade create, update and delete.
type Service struct {
	store   Store
	rollup  Rollup
	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService creates a trade service.
func NewService(st Store, rollup Rollup, logger zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   st,
		rollup:  rollup,
		logger:  logging.WithOperation(logger, "trades"),
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create records a trade, closed if both exit fields are supplied.
func (s *Service) Create(ctx context.Context, userID string, in Input) (*models.Trade, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	now := s.now()
	t := &models.Trade{
		ID:         id.New(),
		UserID:     userID,
		Symbol:     security.NormalizeSymbol(in.Symbol),
		Side:       in.Side,
		EntryPrice: in.EntryPrice,
		ExitPrice:  in.ExitPrice,
		StopLoss:   in.StopLoss,
		Target:     in.Target,
		Quantity:   in.Quantity,
		Fees:       in.Fees,
		EntryDate:  in.EntryDate,
		ExitDate:   in.ExitDate,
		StrategyID: in.StrategyID,
		Tags:       security.NormalizeTags(in.Tags),
		Notes:      security.SanitizeText(in.Notes),
		Emotion:    in.Emotion,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if t.EntryDate.IsZero() {
		t.EntryDate = now
	}
	if err := s.validate(ctx, t); err != nil {
		return nil, err
	}
	settle(t)

	if err := s.store.CreateTrade(ctx, t); err != nil {
		return nil, err
	}
	s.afterMutation("create", t)

	if t.IsClosed() && t.StrategyID != "" {
		s.refresh(ctx, userID, t.StrategyID)
	}
	return t, nil
}

// Get returns one trade.
func (s *Service) Get(ctx context.Context, userID, tradeID string) (*models.Trade, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	return s.store.GetTrade(ctx, userID, tradeID)
}

// List returns the user's trades matching filter.
func (s *Service) List(ctx context.Context, userID string, filter store.TradeFilter) ([]models.Trade, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	filter.UserID = userID
	filter.Tags = security.NormalizeTags(filter.Tags)
	return s.store.GetTrades(ctx, filter)
}

// Update applies a patch. An open trade closes once both exit fields are
// present; P/L is recomputed for closed trades.
func (s *Service) Update(ctx context.Context, userID, tradeID string, patch Patch) (*models.Trade, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	old, err := s.store.GetTrade(ctx, userID, tradeID)
	if err != nil {
		return nil, err
	}
	wasClosed := old.Status == models.StatusClosed

	t := *old
	if patch.ClearExit {
		if wasClosed {
			return nil, apperrors.InvalidTrade("exitPrice", nil, "closed trades cannot be reopened")
		}
		t.ExitPrice, t.ExitDate = nil, nil
	}
	apply(&t, patch)
	t.UpdatedAt = s.now()

	if err := s.validate(ctx, &t); err != nil {
		return nil, err
	}
	settle(&t)

	if err := s.store.UpdateTrade(ctx, &t); err != nil {
		return nil, err
	}
	s.afterMutation("update", &t)

	s.refresh(ctx, userID, affectedStrategies(old, &t)...)
	return &t, nil
}

// Delete removes a trade and refreshes its strategy if it was closed.
func (s *Service) Delete(ctx context.Context, userID, tradeID string) error {
	if userID == "" {
		return apperrors.ErrUnauthorized
	}
	t, err := s.store.GetTrade(ctx, userID, tradeID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTrade(ctx, userID, tradeID); err != nil {
		return err
	}
	s.afterMutation("delete", t)

	if t.Status == models.StatusClosed && t.StrategyID != "" {
		s.refresh(ctx, userID, t.StrategyID)
	}
	return nil
}

func (s *Service) afterMutation(action string, t *models.Trade) {
	s.metrics.TradeMutation(action)
	logging.LogTradeMutation(logging.WithUser(s.logger, t.UserID), action, t.ID, t.Symbol, string(t.Status))
	if s.rollup != nil {
		s.rollup.InvalidateCache(t.UserID)
	}
}

// refresh recomputes each strategy snapshot. A failed recompute is logged by
// the roll-up and never fails the trade mutation that triggered it.
func (s *Service) refresh(ctx context.Context, userID string, strategyIDs ...string) {
	if s.rollup == nil {
		return
	}
	for _, strategyID := range strategyIDs {
		if _, err := s.rollup.Recompute(ctx, userID, strategyID); err != nil {
			log := logging.WithStrategy(s.logger, strategyID)
			log.Warn().Err(err).
				Msg("Trade saved but strategy snapshot is stale until the next mutation")
		}
	}
}

func apply(t *models.Trade, p Patch) {
	if p.Symbol != nil {
		t.Symbol = security.NormalizeSymbol(*p.Symbol)
	}
	if p.Side != nil {
		t.Side = *p.Side
	}
	if p.EntryPrice != nil {
		t.EntryPrice = *p.EntryPrice
	}
	if p.ExitPrice != nil {
		v := *p.ExitPrice
		t.ExitPrice = &v
	}
	if p.StopLoss != nil {
		t.StopLoss = *p.StopLoss
	}
	if p.Target != nil {
		v := *p.Target
		t.Target = &v
	}
	if p.Quantity != nil {
		t.Quantity = *p.Quantity
	}
	if p.Fees != nil {
		t.Fees = *p.Fees
	}
	if p.EntryDate != nil {
		t.EntryDate = *p.EntryDate
	}
	if p.ExitDate != nil {
		v := *p.ExitDate
		t.ExitDate = &v
	}
	if p.StrategyID != nil {
		t.StrategyID = *p.StrategyID
	}
	if p.Tags != nil {
		t.Tags = security.NormalizeTags(p.Tags)
	}
	if p.Notes != nil {
		t.Notes = security.SanitizeText(*p.Notes)
	}
	if p.Emotion != nil {
		t.Emotion = *p.Emotion
	}
}

// settle derives status and P/L from the exit fields.
func settle(t *models.Trade) {
	if !t.IsClosed() {
		t.Status = models.StatusOpen
		t.PnL, t.PnLPercentage = 0, 0
		return
	}
	t.Status = models.StatusClosed
	t.PnL, t.PnLPercentage = ComputePnL(t.Side, t.EntryPrice, *t.ExitPrice, t.Quantity, t.Fees)
}

func (s *Service) validate(ctx context.Context, t *models.Trade) error {
	switch {
	case t.Symbol == "":
		return apperrors.InvalidTrade("symbol", t.Symbol, "symbol is required")
	case !security.ValidSymbol(t.Symbol):
		return apperrors.InvalidTrade("symbol", t.Symbol, "invalid symbol format")
	case !t.Side.Valid():
		return apperrors.InvalidTrade("side", t.Side, "must be LONG or SHORT")
	case t.EntryPrice <= 0:
		return apperrors.InvalidTrade("entryPrice", t.EntryPrice, "must be positive")
	case t.Quantity <= 0:
		return apperrors.InvalidTrade("quantity", t.Quantity, "must be positive")
	case t.Fees < 0:
		return apperrors.InvalidTrade("fees", t.Fees, "cannot be negative")
	case t.StopLoss < 0:
		return apperrors.InvalidTrade("stopLoss", t.StopLoss, "cannot be negative")
	case t.ExitPrice != nil && *t.ExitPrice <= 0:
		return apperrors.InvalidTrade("exitPrice", *t.ExitPrice, "must be positive")
	case t.ExitDate != nil && t.ExitDate.Before(t.EntryDate):
		return apperrors.InvalidTrade("exitDate", *t.ExitDate, "cannot be before the entry date")
	case t.Emotion != "" && !t.Emotion.Valid():
		return apperrors.InvalidTrade("emotion", t.Emotion, "unknown emotion")
	}

	if t.StrategyID != "" {
		if _, err := s.store.GetStrategy(ctx, t.UserID, t.StrategyID); err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				return apperrors.InvalidTrade("strategyId", t.StrategyID, "strategy not found")
			}
			return err
		}
	}
	return nil
}

// affectedStrategies lists the strategies whose closed set changed.
// Edits to a trade that is open before and after touch no snapshot.
func affectedStrategies(old, updated *models.Trade) []string {
	wasClosed := old.Status == models.StatusClosed
	isClosed := updated.Status == models.StatusClosed
	var ids []string

	if isClosed && updated.StrategyID != "" && (!wasClosed || rollupInputsChanged(old, updated)) {
		ids = append(ids, updated.StrategyID)
	}
	if wasClosed && old.StrategyID != "" && old.StrategyID != updated.StrategyID {
		ids = append(ids, old.StrategyID)
	}
	return ids
}

func rollupInputsChanged(a, b *models.Trade) bool {
	return a.StrategyID != b.StrategyID ||
		a.Side != b.Side ||
		a.EntryPrice != b.EntryPrice ||
		a.Quantity != b.Quantity ||
		a.Fees != b.Fees ||
		a.StopLoss != b.StopLoss ||
		a.PnL != b.PnL ||
		!floatPtrEqual(a.ExitPrice, b.ExitPrice) ||
		!a.ExitTime().Equal(b.ExitTime())
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
