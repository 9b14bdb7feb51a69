package types

import "time"

// PickFilter narrows daily pick history queries
type PickFilter struct {
	Symbol string
	Source string
	From   time.Time
	To     time.Time
	Limit  int
}

// StrategyFilter narrows options strategy queries
type StrategyFilter struct {
	Symbol       string
	StrategyName string
	Since        time.Time
	Limit        int
}

// SymbolFreshness reports the latest stored bar for a symbol
type SymbolFreshness struct {
	Symbol     string    `json:"symbol"`
	LatestDate time.Time `json:"latest_date"`
	BarCount   int64     `json:"bar_count"`
}

// SentimentSummary aggregates recent news sentiment for a symbol
type SentimentSummary struct {
	Symbol       string  `json:"symbol"`
	Articles     int64   `json:"articles"`
	AvgSentiment float64 `json:"avg_sentiment"`
}
