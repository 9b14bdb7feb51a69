package options

// Strategy directions
const (
	TypeBullish        = "bullish"
	TypeBearish        = "bearish"
	TypeNeutral        = "neutral"
	TypeIncome         = "income"
	TypeNeutralBullish = "neutral_bullish"
)

// Template names
const (
	BullCallSpread = "Bull Call Spread"
	BearPutSpread  = "Bear Put Spread"
	CashSecuredPut = "Cash Secured Put"
	CoveredCall    = "Covered Call"
	IronCondor     = "Iron Condor"
)

// DaysToExpiry is the holding horizon of every template
const DaysToExpiry = 30

const (
	contractShares = 100
	minCondorRatio = 0.3
	spreadNetDebit = 150.0
)

// Leg is one option or stock position within a strategy
type Leg struct {
	Action   string  `json:"action"` // buy | sell
	Type     string  `json:"type"`   // call | put | stock
	Strike   float64 `json:"strike,omitempty"`
	Quantity int     `json:"quantity"`
}

// Strategy is a synthesized options trade with its payoff profile
type Strategy struct {
	Symbol                    string    `json:"symbol"`
	StrategyName              string    `json:"strategy_name"`
	StrategyType              string    `json:"strategy_type"`
	Legs                      []Leg     `json:"legs"`
	MaxProfit                 float64   `json:"max_profit"`
	MaxLoss                   float64   `json:"max_loss"`
	BreakevenPoints           []float64 `json:"breakeven_points"`
	ExpectedReturn            float64   `json:"expected_return"`
	RiskRewardRatio           float64   `json:"risk_reward_ratio"`
	DaysToExpiration          int       `json:"days_to_expiration"`
	IVRank                    float64   `json:"iv_rank"`
	ConfidenceScore           float64   `json:"confidence_score"`
	ExpectedProfitProbability float64   `json:"expected_profit_probability"`
	UnderlyingPrice           float64   `json:"underlying_price"`

	Backtest *BacktestResult `json:"backtest,omitempty"`
}

// ExpectedValue is win_rate*avg_profit - (1-win_rate)*avg_loss from the backtest, or 0 without one
func (s *Strategy) ExpectedValue() float64 {
	if s == nil || s.Backtest == nil {
		return 0
	}
	return s.Backtest.ExpectedValue()
}
