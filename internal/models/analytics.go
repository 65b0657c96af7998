package models

import "time"

// MetricsSummary is the aggregate over a set of closed trades.
type MetricsSummary struct {
	TotalPnL     float64 `json:"totalPnL"`
	TotalTrades  int     `json:"totalTrades"`
	WinRate      float64 `json:"winRate"`
	MaxDrawdown  float64 `json:"maxDrawdown"`
	AvgProfit    float64 `json:"avgProfit"`
	ProfitFactor float64 `json:"profitFactor"`
	GrossProfit  float64 `json:"grossProfit"`
	GrossLoss    float64 `json:"grossLoss"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
}

// MetricsChange holds percentage deltas against the preceding period.
type MetricsChange struct {
	TotalPnL     float64 `json:"totalPnL"`
	WinRate      float64 `json:"winRate"`
	MaxDrawdown  float64 `json:"maxDrawdown"`
	TotalTrades  float64 `json:"totalTrades"`
	AvgProfit    float64 `json:"avgProfit"`
	ProfitFactor float64 `json:"profitFactor"`
}

// MetricsComparison pairs the current period with its deltas.
// Window and PreviousWindow are nil for an all-time query.
type MetricsComparison struct {
	Current        MetricsSummary  `json:"current"`
	Previous       *MetricsSummary `json:"previous,omitempty"`
	Changes        MetricsChange   `json:"changes"`
	Window         *DateRange      `json:"window,omitempty"`
	PreviousWindow *DateRange      `json:"previousWindow,omitempty"`
}

// EquityPoint is one step of the cumulative P/L series.
type EquityPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// TrendPoint is a month-bucketed performance point.
type TrendPoint struct {
	Period       string  `json:"periodLabel"`
	WinRate      float64 `json:"winRate"`
	ProfitFactor float64 `json:"profitFactor"`
	Trades       int     `json:"trades"`
}

// StrategyPerfRow is one strategy's performance in a comparison table.
type StrategyPerfRow struct {
	StrategyID   string `json:"strategyId"`
	StrategyName string `json:"strategyName"`
	PerformanceSnapshot
}

// EmotionPnLRow correlates a mood with trading outcomes.
type EmotionPnLRow struct {
	Emotion        Emotion `json:"emotion"`
	AvgPnL         float64 `json:"avgPnL"`
	AvgStressLevel float64 `json:"avgStressLevel"`
	Count          int     `json:"count"`
}

// PsychologySource tells which path produced the psychology view.
type PsychologySource string

const (
	SourceJournal   PsychologySource = "journal"
	SourceTradeTags PsychologySource = "tradeTags"
)

// PsychologyInsights is the emotion/outcome correlation bundle.
type PsychologyInsights struct {
	Source       PsychologySource `json:"source"`
	Rows         []EmotionPnLRow  `json:"rows"`
	DominantMood Emotion          `json:"dominantMood,omitempty"`
	MindsetScore float64          `json:"mindsetScore"`
	TotalEntries int              `json:"totalEntries"`
}

// HeatmapCell is the P/L of a single calendar day.
type HeatmapCell struct {
	Day   int       `json:"day"`
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Count int       `json:"count"`
}

// Dashboard bundles every analytics view for one window.
type Dashboard struct {
	Metrics    *MetricsComparison  `json:"metrics"`
	Equity     []EquityPoint       `json:"equity"`
	Trend      []TrendPoint        `json:"trend"`
	Strategies []StrategyPerfRow   `json:"strategies"`
	Psychology *PsychologyInsights `json:"psychology"`
}
