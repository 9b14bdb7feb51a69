package options

import "daily-pick-ranker/indicators"

// Regime is a coarse classification of recent price behaviour
type Regime string

const (
	RegimeTrendingUp     Regime = "trending_up"
	RegimeTrendingDown   Regime = "trending_down"
	RegimeSideways       Regime = "sideways"
	RegimeHighVolatility Regime = "high_volatility"
)

const (
	regimeWindow       = 10
	highVolatility     = 0.35
	smaSpreadThreshold = 0.02
	priceMoveThreshold = 0.05
)

// DetectRegime classifies the last 10 ascending bars. Fewer bars are sideways.
func DetectRegime(bars []indicators.Bar, volatility float64) Regime {
	if len(bars) < regimeWindow {
		return RegimeSideways
	}

	recent := indicators.Closes(bars[len(bars)-regimeWindow:])
	sma5 := indicators.SMA(recent, 5)
	sma10 := indicators.SMA(recent, regimeWindow)

	first := recent[0]
	change := 0.0
	if first != 0 {
		change = (indicators.Last(recent) - first) / first
	}

	switch {
	case volatility > highVolatility:
		return RegimeHighVolatility
	case sma5 > sma10*(1+smaSpreadThreshold) && change > priceMoveThreshold:
		return RegimeTrendingUp
	case sma5 < sma10*(1-smaSpreadThreshold) && change < -priceMoveThreshold:
		return RegimeTrendingDown
	default:
		return RegimeSideways
	}
}
