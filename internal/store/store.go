// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"trade-journal/internal/models"
)

// TradeStore persists trades. Every read is scoped to the owning user.
type TradeStore interface {
	CreateTrade(ctx context.Context, trade *models.Trade) error
	UpdateTrade(ctx context.Context, trade *models.Trade) error
	DeleteTrade(ctx context.Context, userID, id string) error
	GetTrade(ctx context.Context, userID, id string) (*models.Trade, error)
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)
	CountTradesByStrategy(ctx context.Context, userID, strategyID string) (int, error)
}

// StrategyStore persists strategies and their cached performance snapshot.
type StrategyStore interface {
	CreateStrategy(ctx context.Context, strategy *models.Strategy) error
	// UpdateStrategy writes descriptive fields only; the snapshot is left untouched.
	UpdateStrategy(ctx context.Context, strategy *models.Strategy) error
	GetStrategy(ctx context.Context, userID, id string) (*models.Strategy, error)
	ListStrategies(ctx context.Context, userID string) ([]models.Strategy, error)
	// DeleteStrategy fails with ErrStrategyInUse while any trade references it.
	DeleteStrategy(ctx context.Context, userID, id string) error
	// UpdateStrategyPerformance replaces the whole snapshot in a single write.
	UpdateStrategyPerformance(ctx context.Context, userID, id string, snapshot models.PerformanceSnapshot) error
}

// JournalStore persists psychological journal entries.
type JournalStore interface {
	CreateJournalEntry(ctx context.Context, entry *models.JournalEntry) error
	UpdateJournalEntry(ctx context.Context, entry *models.JournalEntry) error
	DeleteJournalEntry(ctx context.Context, userID, id string) error
	GetJournalEntry(ctx context.Context, userID, id string) (*models.JournalEntry, error)
	GetJournal(ctx context.Context, filter JournalFilter) ([]models.JournalEntry, error)
}

// DataStore defines the interface for data persistence.
type DataStore interface {
	TradeStore
	StrategyStore
	JournalStore

	// Lifecycle
	Close() error
}

// TradeOrder selects the sort order of GetTrades.
type TradeOrder int

const (
	// OrderEntryDesc lists the newest entries first.
	OrderEntryDesc TradeOrder = iota
	// OrderExitAsc lists trades by exit date, oldest first. Trades without
	// an exit date sort first.
	OrderExitAsc
)

// TradeFilter represents filters for querying trades.
// Zero values mean "no constraint". ExitFrom and ExitTo are inclusive.
type TradeFilter struct {
	UserID     string
	StrategyID string
	Status     models.TradeStatus
	Symbol     string
	Tags       []string // any of
	ExitFrom   time.Time
	ExitTo     time.Time
	Order      TradeOrder
	Limit      int
}

// ClosedTrades returns a filter for a user's closed trades ordered by exit date.
// A nil window selects all time.
func ClosedTrades(userID string, window *models.DateRange) TradeFilter {
	f := TradeFilter{
		UserID: userID,
		Status: models.StatusClosed,
		Order:  OrderExitAsc,
	}
	if window != nil {
		f.ExitFrom = window.From
		f.ExitTo = window.To
	}
	return f
}

// JournalFilter represents filters for querying journal entries.
// From and To are inclusive on the entry date. Tags match entries carrying
// any of the listed tags.
type JournalFilter struct {
	UserID        string
	TradeID       string
	From          time.Time
	To            time.Time
	Emotion       models.Emotion
	Tags          []string
	PopulateTrade bool
	Limit         int
}

var (
	_ DataStore = (*SQLiteStore)(nil)
	_ DataStore = (*MongoStore)(nil)
)
