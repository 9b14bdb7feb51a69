package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Pick sources
const (
	SourceStock   = "stock"
	SourceOptions = "options"
)

// Symbol is a tradable ticker in the ranking universe.
//
// Key Fields:
//   - Symbol: The ticker (primary key)
//   - Active: Inactive symbols are kept for history but skipped by ingestion
//   - LastIngestedAt: When bars were last fetched for this symbol
type Symbol struct {
	Symbol         string     `gorm:"size:16;primaryKey" json:"symbol"`
	Name           string     `gorm:"size:128" json:"name,omitempty"`
	Exchange       string     `gorm:"size:16" json:"exchange,omitempty"`
	Active         bool       `gorm:"default:true;index" json:"active"`
	LastIngestedAt *time.Time `json:"last_ingested_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Symbol
func (Symbol) TableName() string {
	return "symbols"
}

// PriceBar is one daily OHLCV bar for a symbol.
// Bars are append-only and keyed by (symbol, date); re-ingesting a day replaces its values.
//
// Key Fields:
//   - Symbol + Date: Composite primary key
//   - Open/High/Low/Close: Split-adjusted daily prices
//   - Volume: Shares traded
//   - Source: Provider that produced the bar (e.g. "alpaca")
type PriceBar struct {
	Symbol    string    `gorm:"size:16;primaryKey" json:"symbol"`
	Date      time.Time `gorm:"type:date;primaryKey;index:idx_price_history_date" json:"date"`
	Open      float64   `gorm:"type:decimal(15,4);not null" json:"open"`
	High      float64   `gorm:"type:decimal(15,4);not null" json:"high"`
	Low       float64   `gorm:"type:decimal(15,4);not null" json:"low"`
	Close     float64   `gorm:"type:decimal(15,4);not null" json:"close"`
	Volume    int64     `gorm:"not null" json:"volume"`
	Source    string    `gorm:"size:32" json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for PriceBar
func (PriceBar) TableName() string {
	return "price_history"
}

// NewsSentiment is a scored headline for a symbol, unique per (symbol, headline, date).
type NewsSentiment struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol         string    `gorm:"size:16;not null;uniqueIndex:idx_news_symbol_headline_date" json:"symbol"`
	Headline       string    `gorm:"type:text;not null;uniqueIndex:idx_news_symbol_headline_date" json:"headline"`
	Date           time.Time `gorm:"type:date;not null;uniqueIndex:idx_news_symbol_headline_date" json:"date"`
	Summary        string    `gorm:"type:text" json:"summary,omitempty"`
	URL            string    `gorm:"type:text" json:"url,omitempty"`
	Source         string    `gorm:"size:64" json:"source,omitempty"`
	Category       string    `gorm:"size:32;default:general" json:"category"`
	SentimentScore float64   `gorm:"type:decimal(6,4)" json:"sentiment_score"`
	PublishedAt    time.Time `gorm:"index" json:"published_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName specifies the table name for NewsSentiment
func (NewsSentiment) TableName() string {
	return "news_sentiment"
}

// DailyPick is the single recommendation produced by a ranking run.
// At most one row exists per calendar day; a same-day re-run replaces it.
//
// Key Fields:
//   - PickDate: Calendar day of the run (unique)
//   - RunID: Identifier of the run that wrote the row
//   - TradeType: Strategy label for stock picks, snake_case template name for options picks
//   - Entry/Stop/Target: Prices for stock picks; expected return / max loss / max profit in
//     dollars per contract for options picks
//   - KellyFrac/SizePct: Capped Kelly fraction and the position size in percent
//   - Source: "stock" or "options"
type DailyPick struct {
	ID             int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	PickDate       time.Time      `gorm:"type:date;uniqueIndex;not null" json:"pick_date"`
	RunID          string         `gorm:"size:36;index" json:"run_id"`
	PickTS         time.Time      `gorm:"not null" json:"pick_ts"`
	Symbol         string         `gorm:"size:16;not null;index" json:"symbol"`
	TradeType      string         `gorm:"size:64;not null" json:"trade_type"`
	Entry          float64        `gorm:"type:decimal(15,4)" json:"entry"`
	Stop           float64        `gorm:"type:decimal(15,4)" json:"stop"`
	Target         float64        `gorm:"type:decimal(15,4)" json:"target"`
	KellyFrac      float64        `gorm:"type:decimal(6,4)" json:"kelly_frac"`
	SizePct        float64        `gorm:"type:decimal(6,2)" json:"size_pct"`
	SharpeRatio    *float64       `gorm:"type:decimal(10,4)" json:"sharpe_ratio,omitempty"`
	ExpectedReturn *float64       `gorm:"type:decimal(15,4)" json:"expected_return,omitempty"`
	RiskAmount     *float64       `gorm:"type:decimal(15,4)" json:"risk_amount,omitempty"`
	ReasonBullets  pq.StringArray `gorm:"type:text[]" json:"reason_bullets"`
	Source         string         `gorm:"size:16;not null;default:stock" json:"source"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName specifies the table name for DailyPick
func (DailyPick) TableName() string {
	return "daily_pick"
}

// OptionsStrategy is an accepted, backtested options strategy.
// Only strategies that cleared the acceptance gate are stored.
//
// Key Fields:
//   - Legs: JSON array of {action, type, strike, quantity}
//   - BreakevenPoints: Underlying prices at which the position breaks even
//   - Backtest*: Aggregates of the weekly-stepped replay
//   - ExpectedValue: win_rate*avg_profit - (1-win_rate)*avg_loss, used for ranking
type OptionsStrategy struct {
	ID                        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID                     string          `gorm:"size:36;index" json:"run_id"`
	Symbol                    string          `gorm:"size:16;not null;index" json:"symbol"`
	StrategyName              string          `gorm:"size:64;not null" json:"strategy_name"`
	StrategyType              string          `gorm:"size:32;not null" json:"strategy_type"`
	Legs                      datatypes.JSON  `gorm:"type:jsonb" json:"legs"`
	MaxProfit                 float64         `gorm:"type:decimal(15,4)" json:"max_profit"`
	MaxLoss                   float64         `gorm:"type:decimal(15,4)" json:"max_loss"`
	BreakevenPoints           pq.Float64Array `gorm:"type:double precision[]" json:"breakeven_points"`
	ExpectedReturn            float64         `gorm:"type:decimal(15,4)" json:"expected_return"`
	RiskRewardRatio           float64         `gorm:"type:decimal(10,4)" json:"risk_reward_ratio"`
	DaysToExpiration          int             `json:"days_to_expiration"`
	IVRank                    float64         `gorm:"type:decimal(8,4)" json:"iv_rank"`
	ConfidenceScore           float64         `gorm:"type:decimal(8,4)" json:"confidence_score"`
	ExpectedProfitProbability float64         `gorm:"type:decimal(6,4)" json:"expected_profit_probability"`
	UnderlyingPrice           float64         `gorm:"type:decimal(15,4)" json:"underlying_price"`
	MarketRegime              string          `gorm:"size:32" json:"market_regime"`
	BacktestWinRate           *float64        `gorm:"type:decimal(6,4)" json:"backtest_win_rate,omitempty"`
	BacktestTrades            *int            `json:"backtest_trades,omitempty"`
	BacktestAvgProfit         *float64        `gorm:"type:decimal(15,4)" json:"backtest_avg_profit,omitempty"`
	BacktestAvgLoss           *float64        `gorm:"type:decimal(15,4)" json:"backtest_avg_loss,omitempty"`
	BacktestValidated         bool            `gorm:"default:false" json:"backtest_validated"`
	ExpectedValue             float64         `gorm:"type:decimal(15,4)" json:"expected_value"`
	DataFreshness             string          `gorm:"size:16" json:"data_freshness"`
	LastPriceUpdate           *time.Time      `json:"last_price_update,omitempty"`
	CreatedAt                 time.Time       `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for OptionsStrategy
func (OptionsStrategy) TableName() string {
	return "options_strategies"
}
