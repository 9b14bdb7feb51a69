package options

import (
	"errors"
	"fmt"

	"daily-pick-ranker/indicators"
)

// ErrInsufficientHistory marks a symbol without enough bars to backtest
var ErrInsufficientHistory = errors.New("insufficient history for options analysis")

// ErrNoStrategy means no template produced a strategy (e.g. a condor under the quality ratio)
var ErrNoStrategy = errors.New("no qualifying options strategy")

// Analysis is the options view of one symbol
type Analysis struct {
	Symbol     string         `json:"symbol"`
	Regime     Regime         `json:"regime"`
	Volatility float64        `json:"volatility"`
	Strategy   *Strategy      `json:"strategy,omitempty"`
	Backtest   BacktestResult `json:"backtest"`
}

// Analyze generates, backtests and gates a strategy for ascending bars.
// The returned error is ErrInsufficientHistory, ErrNoStrategy or a *GateError;
// the Analysis is populated as far as the pipeline got.
func Analyze(symbol string, bars []indicators.Bar, minBars int, gate GateConfig) (*Analysis, error) {
	a := &Analysis{Symbol: symbol}
	if minBars < minBacktestHistory {
		minBars = minBacktestHistory
	}
	if len(bars) < minBars {
		return a, fmt.Errorf("%s: %w (%d bars, need %d)", symbol, ErrInsufficientHistory, len(bars), minBars)
	}

	a.Volatility = indicators.RealizedVolatility(bars)
	a.Regime = DetectRegime(bars, a.Volatility)
	price := bars[len(bars)-1].Close

	s := Select(symbol, price, a.Volatility, a.Regime)
	if s == nil {
		return a, fmt.Errorf("%s: %w (regime %s, volatility %.3f)", symbol, ErrNoStrategy, a.Regime, a.Volatility)
	}

	a.Backtest = Backtest(bars, s, minBars)
	bt := a.Backtest
	s.Backtest = &bt
	a.Strategy = s

	if err := gate.Check(s, a.Backtest); err != nil {
		return a, err
	}
	return a, nil
}
