// Package models provides domain models for the trading journal.
package models

import (
	"time"
)

// TradeSide represents the direction of a trade.
type TradeSide string

const (
	SideLong  TradeSide = "LONG"
	SideShort TradeSide = "SHORT"
)

// Valid reports whether the side is one of the known directions.
func (s TradeSide) Valid() bool {
	return s == SideLong || s == SideShort
}

// Sign returns +1 for LONG and -1 for SHORT.
func (s TradeSide) Sign() float64 {
	if s == SideShort {
		return -1
	}
	return 1
}

// TradeStatus represents the lifecycle state of a trade.
type TradeStatus string

const (
	StatusOpen   TradeStatus = "OPEN"
	StatusClosed TradeStatus = "CLOSED"
)

// StrategyStatus represents whether a strategy is in use.
type StrategyStatus string

const (
	StrategyActive StrategyStatus = "active"
	StrategyPaused StrategyStatus = "paused"
)

// Valid reports whether the strategy status is known.
func (s StrategyStatus) Valid() bool {
	return s == StrategyActive || s == StrategyPaused
}

// Emotion is the mood recorded on a journal entry or trade.
type Emotion string

const (
	EmotionConfident   Emotion = "confident"
	EmotionAnxious     Emotion = "anxious"
	EmotionFearful     Emotion = "fearful"
	EmotionGreedy      Emotion = "greedy"
	EmotionNeutral     Emotion = "neutral"
	EmotionDisciplined Emotion = "disciplined" // followed the rules
)

// Emotions lists every accepted mood.
var Emotions = []Emotion{
	EmotionConfident,
	EmotionAnxious,
	EmotionFearful,
	EmotionGreedy,
	EmotionNeutral,
	EmotionDisciplined,
}

// Valid reports whether the emotion is one of the enumerated moods.
func (e Emotion) Valid() bool {
	for _, known := range Emotions {
		if e == known {
			return true
		}
	}
	return false
}

// PerformanceSnapshot is the cached roll-up persisted on a strategy.
// It is only ever written as a whole by the roll-up recompute.
type PerformanceSnapshot struct {
	TotalTrades   int     `json:"totalTrades" bson:"total_trades"`
	WinRate       float64 `json:"winRate" bson:"win_rate"`
	ProfitFactor  float64 `json:"profitFactor" bson:"profit_factor"`
	AvgRiskReward float64 `json:"avgRiskReward" bson:"avg_risk_reward"`
	MaxDrawdown   float64 `json:"maxDrawdown" bson:"max_drawdown"`
	NetPnL        float64 `json:"netPnl" bson:"net_pnl"`
}

// Strategy represents a user's trading strategy.
type Strategy struct {
	ID          string              `json:"id" bson:"_id"`
	UserID      string              `json:"userId" bson:"user_id"`
	Name        string              `json:"name" bson:"name"`
	AssetClass  string              `json:"assetClass" bson:"asset_class"`
	Rules       string              `json:"rules" bson:"rules"`
	Status      StrategyStatus      `json:"status" bson:"status"`
	Performance PerformanceSnapshot `json:"performance" bson:"performance"`
	CreatedAt   time.Time           `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updated_at"`
}

// DateRange is an inclusive [From, To] window.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Duration returns To - From.
func (r DateRange) Duration() time.Duration {
	return r.To.Sub(r.From)
}

// Contains reports whether t falls inside the inclusive window.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}
