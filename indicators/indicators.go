// Package indicators computes the scalar technical indicators used for ranking.
// Every function expects data ordered oldest first and degrades to a default
// instead of failing on short input.
package indicators

import (
	"math"
	"time"
)

// TradingDaysPerYear annualizes daily volatility
const TradingDaysPerYear = 252

// Bar is one daily OHLCV bar
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Snapshot is the indicator set computed for one symbol
type Snapshot struct {
	SMA5     float64 `json:"sma5"`
	SMA10    float64 `json:"sma10"`
	SMA20    float64 `json:"sma20"`
	Momentum float64 `json:"momentum"`
	ATR      float64 `json:"atr"`
}

// Closes extracts closing prices
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts volumes
func Volumes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}

// Last returns the most recent value, or 0 for an empty slice
func Last(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return data[len(data)-1]
}

// SMA is the mean of the last min(period, len) values.
// period <= 0 degrades to the latest value.
func SMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if period <= 0 {
		return Last(prices)
	}
	if period > len(prices) {
		period = len(prices)
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period)
}

// TrueRange of bar i against the previous close
func TrueRange(cur, prev Bar) float64 {
	tr1 := cur.High - cur.Low
	tr2 := math.Abs(cur.High - prev.Close)
	tr3 := math.Abs(cur.Low - prev.Close)
	return math.Max(tr1, math.Max(tr2, tr3))
}

// ATR is the mean true range over the last min(period, len-1) bars.
// A single bar falls back to its high-low range and no bars to 1.
func ATR(bars []Bar, period int) float64 {
	switch len(bars) {
	case 0:
		return 1
	case 1:
		return math.Abs(bars[0].High - bars[0].Low)
	}

	if period <= 0 || period > len(bars)-1 {
		period = len(bars) - 1
	}

	sum := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		sum += TrueRange(bars[i], bars[i-1])
	}
	return math.Abs(sum / float64(period))
}

// Momentum is the fractional change over lookback periods.
// The lookback shrinks to len-1 on short history.
func Momentum(prices []float64, lookback int) float64 {
	k := MomentumPeriod(len(prices), lookback)
	if k <= 0 {
		return 0
	}
	base := prices[len(prices)-1-k]
	if base == 0 {
		return 0
	}
	return (Last(prices) - base) / base
}

// MomentumPeriod returns the effective lookback for a series of length n
func MomentumPeriod(n, lookback int) int {
	if lookback > n-1 {
		lookback = n - 1
	}
	if lookback < 0 {
		return 0
	}
	return lookback
}

// Mean of data, 0 when empty
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// StdDev is the population standard deviation
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	mean := Mean(data)
	variance := 0.0
	for _, v := range data {
		variance += math.Pow(v-mean, 2)
	}
	return math.Sqrt(variance / float64(len(data)))
}

// Volatility annualizes the standard deviation of daily returns
func Volatility(returns []float64) float64 {
	return StdDev(returns) * math.Sqrt(TradingDaysPerYear)
}

// SimpleReturns converts prices to period-over-period fractional returns.
// Zero prices produce a zero return for that step.
func SimpleReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (prices[i]-prices[i-1])/prices[i-1])
	}
	return out
}

// LogReturns converts prices to log returns, skipping non-positive prices
func LogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 || prices[i] <= 0 {
			continue
		}
		out = append(out, math.Log(prices[i]/prices[i-1]))
	}
	return out
}

// RealizedVolatility is the annualized stdev of the last 20 daily log returns.
// Fewer than two bars yields 0.3.
func RealizedVolatility(bars []Bar) float64 {
	if len(bars) < 2 {
		return 0.3
	}
	start := len(bars) - 21
	if start < 0 {
		start = 0
	}
	returns := LogReturns(Closes(bars[start:]))
	if len(returns) == 0 {
		return 0.3
	}
	return Volatility(returns)
}

// Highest returns the max of the last n values
func Highest(data []float64, n int) float64 {
	if len(data) == 0 {
		return 0
	}
	if n <= 0 || n > len(data) {
		n = len(data)
	}
	high := data[len(data)-n]
	for _, v := range data[len(data)-n:] {
		if v > high {
			high = v
		}
	}
	return high
}

// Compute builds the standard 5/10/20 SMA, 5-day momentum and 14-day ATR snapshot
func Compute(bars []Bar) Snapshot {
	closes := Closes(bars)
	return Snapshot{
		SMA5:     SMA(closes, 5),
		SMA10:    SMA(closes, 10),
		SMA20:    SMA(closes, 20),
		Momentum: Momentum(closes, 5),
		ATR:      ATR(bars, 14),
	}
}
