package models

import "time"

// Trade represents a single journaled trade.
type Trade struct {
	ID            string      `json:"id" bson:"_id"`
	UserID        string      `json:"userId" bson:"user_id"`
	Symbol        string      `json:"symbol" bson:"symbol"`
	Side          TradeSide   `json:"side" bson:"side"`
	EntryPrice    float64     `json:"entryPrice" bson:"entry_price"`
	ExitPrice     *float64    `json:"exitPrice,omitempty" bson:"exit_price,omitempty"`
	StopLoss      float64     `json:"stopLoss" bson:"stop_loss"`
	Target        *float64    `json:"target,omitempty" bson:"target,omitempty"`
	Quantity      float64     `json:"quantity" bson:"quantity"`
	Fees          float64     `json:"fees" bson:"fees"`
	PnL           float64     `json:"pnl" bson:"pnl"`
	PnLPercentage float64     `json:"pnlPercentage" bson:"pnl_percentage"`
	Status        TradeStatus `json:"status" bson:"status"`
	EntryDate     time.Time   `json:"entryDate" bson:"entry_date"`
	ExitDate      *time.Time  `json:"exitDate,omitempty" bson:"exit_date,omitempty"`
	StrategyID    string      `json:"strategyId,omitempty" bson:"strategy_id,omitempty"`
	Tags          []string    `json:"tags" bson:"tags"`
	Notes         string      `json:"notes,omitempty" bson:"notes,omitempty"`
	Emotion       Emotion     `json:"emotion,omitempty" bson:"emotion,omitempty"`
	CreatedAt     time.Time   `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time   `json:"updatedAt" bson:"updated_at"`
}

// IsClosed reports whether the trade has both exit fields set.
func (t *Trade) IsClosed() bool {
	return t.ExitPrice != nil && t.ExitDate != nil
}

// ExitTime returns the exit date, or the zero time for trades that never exited.
// Zero sorts before every real date so such trades order as earliest.
func (t *Trade) ExitTime() time.Time {
	if t.ExitDate == nil {
		return time.Time{}
	}
	return *t.ExitDate
}

// JournalEntry represents a psychological journal entry.
type JournalEntry struct {
	ID            string    `json:"id" bson:"_id"`
	UserID        string    `json:"userId" bson:"user_id"`
	TradeID       string    `json:"tradeId,omitempty" bson:"trade_id,omitempty"`
	Trade         *Trade    `json:"trade,omitempty" bson:"trade,omitempty"` // populated on read only
	Date          time.Time `json:"date" bson:"date"`
	Emotion       Emotion   `json:"emotion" bson:"emotion"`
	StressLevel   int       `json:"stressLevel" bson:"stress_level"`
	Profitability float64   `json:"profitability" bson:"profitability"`
	Content       string    `json:"content" bson:"content"`
	Tags          []string  `json:"tags" bson:"tags"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at"`
}
