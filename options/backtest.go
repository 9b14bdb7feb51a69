package options

import (
	"fmt"
	"math"
	"strings"

	"daily-pick-ranker/indicators"
)

const (
	holdingPeriod      = 30
	entryStep          = 7
	directionalMove    = 0.02
	neutralRange       = 0.05
	directionalPayout  = 1.5
	neutralPayout      = 0.8
	partialLossFactor  = 0.5
	minBacktestHistory = 60
)

// BacktestResult aggregates the synthetic trades of one replay
type BacktestResult struct {
	WinRate     float64 `json:"win_rate"`
	AvgProfit   float64 `json:"avg_profit"`
	AvgLoss     float64 `json:"avg_loss"`
	TotalTrades int     `json:"total_trades"`
}

// ExpectedValue is win_rate*avg_profit - (1-win_rate)*avg_loss
func (r BacktestResult) ExpectedValue() float64 {
	return r.WinRate*r.AvgProfit - (1-r.WinRate)*r.AvgLoss
}

// TradePnL applies the rule table to one realized price change
func TradePnL(s *Strategy, change float64) float64 {
	switch {
	case s.StrategyType == TypeBullish && change > directionalMove:
		return math.Min(s.MaxProfit, s.ExpectedReturn*directionalPayout)
	case s.StrategyType == TypeBearish && change < -directionalMove:
		return math.Min(s.MaxProfit, s.ExpectedReturn*directionalPayout)
	case s.StrategyType == TypeNeutral && math.Abs(change) < neutralRange:
		return s.ExpectedReturn * neutralPayout
	default:
		return -math.Min(s.MaxLoss*partialLossFactor, s.ExpectedReturn)
	}
}

// Backtest replays weekly entries from bar 30, each held 30 bars, over ascending bars.
// Fewer than minBars bars yields an empty result.
func Backtest(bars []indicators.Bar, s *Strategy, minBars int) BacktestResult {
	if minBars < minBacktestHistory {
		minBars = minBacktestHistory
	}
	if s == nil || len(bars) < minBars {
		return BacktestResult{}
	}

	var trades []float64
	for i := holdingPeriod; i < len(bars)-holdingPeriod; i += entryStep {
		entry := bars[i].Close
		if entry == 0 {
			continue
		}
		exit := bars[i+holdingPeriod].Close
		trades = append(trades, TradePnL(s, (exit-entry)/entry))
	}
	if len(trades) == 0 {
		return BacktestResult{}
	}

	var wins, losses []float64
	for _, t := range trades {
		switch {
		case t > 0:
			wins = append(wins, t)
		case t < 0:
			losses = append(losses, t)
		}
	}

	return BacktestResult{
		WinRate:     float64(len(wins)) / float64(len(trades)),
		AvgProfit:   indicators.Mean(wins),
		AvgLoss:     math.Abs(indicators.Mean(losses)),
		TotalTrades: len(trades),
	}
}

// GateConfig is the acceptance bar a backtested strategy must clear
type GateConfig struct {
	MinWinRate           float64
	MinTrades            int
	MinRiskReward        float64
	MinProfitProbability float64
}

// DefaultGate is the strict acceptance bar
func DefaultGate() GateConfig {
	return GateConfig{
		MinWinRate:           0.65,
		MinTrades:            5,
		MinRiskReward:        2.0,
		MinProfitProbability: 0.70,
	}
}

// GateError lists every clause a strategy failed
type GateError struct {
	Symbol   string
	Strategy string
	Failed   []string
}

func (e *GateError) Error() string {
	return fmt.Sprintf("%s %s rejected: %s", e.Symbol, e.Strategy, strings.Join(e.Failed, "; "))
}

// Check returns a *GateError naming the failed clauses, or nil when accepted
func (g GateConfig) Check(s *Strategy, r BacktestResult) error {
	var failed []string
	if r.WinRate < g.MinWinRate {
		failed = append(failed, fmt.Sprintf("win rate %.2f < %.2f", r.WinRate, g.MinWinRate))
	}
	if r.TotalTrades < g.MinTrades {
		failed = append(failed, fmt.Sprintf("trades %d < %d", r.TotalTrades, g.MinTrades))
	}
	if s.RiskRewardRatio < g.MinRiskReward {
		failed = append(failed, fmt.Sprintf("risk/reward %.2f < %.2f", s.RiskRewardRatio, g.MinRiskReward))
	}
	if s.ExpectedProfitProbability < g.MinProfitProbability {
		failed = append(failed, fmt.Sprintf("profit probability %.2f < %.2f", s.ExpectedProfitProbability, g.MinProfitProbability))
	}
	if len(failed) == 0 {
		return nil
	}
	return &GateError{Symbol: s.Symbol, Strategy: s.StrategyName, Failed: failed}
}
