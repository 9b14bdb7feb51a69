package risk

import (
	"math"

	"daily-pick-ranker/indicators"
)

// DefaultKellyCap is the conservative cap applied to every Kelly fraction
const DefaultKellyCap = 0.15

// DefaultReturnWindow is how many of the most recent daily returns feed the metrics
const DefaultReturnWindow = 30

// defaultAvg stands in for an empty win or loss partition
const defaultAvg = 0.01

// Metrics summarizes a daily return series for sizing
type Metrics struct {
	WinRate       float64 `json:"win_rate"`
	PayoffRatio   float64 `json:"payoff_ratio"`
	KellyFraction float64 `json:"kelly_fraction"`
	Volatility    float64 `json:"volatility"`
	SharpeRatio   float64 `json:"sharpe_ratio"`
	ExcessReturn  float64 `json:"excess_return"`
}

// Neutral is returned for an empty return series
func Neutral() Metrics {
	return Metrics{
		WinRate:       0.5,
		PayoffRatio:   1,
		KellyFraction: 0,
		Volatility:    0.2,
		SharpeRatio:   0,
		ExcessReturn:  0,
	}
}

// Kelly returns (p*b - q) / b clamped to [0, cap].
// Non-positive or non-finite payoff ratios size to zero.
func Kelly(winRate, payoffRatio, cap float64) float64 {
	if math.IsNaN(winRate) || math.IsNaN(payoffRatio) || math.IsInf(payoffRatio, 0) || payoffRatio <= 0 {
		return 0
	}
	if cap < 0 {
		cap = 0
	}
	p := math.Max(0, math.Min(1, winRate))
	q := 1 - p
	f := (p*payoffRatio - q) / payoffRatio
	return math.Max(0, math.Min(cap, f))
}

// FromReturns computes win rate, payoff, capped Kelly, volatility and Sharpe
func FromReturns(returns []float64, cap float64) Metrics {
	if len(returns) == 0 {
		return Neutral()
	}

	var wins, losses []float64
	for _, r := range returns {
		switch {
		case r > 0:
			wins = append(wins, r)
		case r < 0:
			losses = append(losses, r)
		}
	}

	winRate := float64(len(wins)) / float64(len(returns))

	avgWin := defaultAvg
	if len(wins) > 0 {
		avgWin = indicators.Mean(wins)
	}
	avgLoss := defaultAvg
	if len(losses) > 0 {
		avgLoss = math.Abs(indicators.Mean(losses))
	}

	payoff := avgWin / avgLoss
	volatility := indicators.Volatility(returns)
	excess := avgWin*winRate - avgLoss*(1-winRate)

	sharpe := 0.0
	if volatility > 0 {
		sharpe = excess / volatility
	}

	return Metrics{
		WinRate:       winRate,
		PayoffRatio:   payoff,
		KellyFraction: Kelly(winRate, payoff, cap),
		Volatility:    volatility,
		SharpeRatio:   sharpe,
		ExcessReturn:  excess,
	}
}

// FromPrices derives metrics from the most recent window simple returns of prices
func FromPrices(prices []float64, window int, cap float64) Metrics {
	returns := indicators.SimpleReturns(prices)
	if window > 0 && len(returns) > window {
		returns = returns[len(returns)-window:]
	}
	return FromReturns(returns, cap)
}
