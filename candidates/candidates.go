package candidates

import (
	"errors"
	"fmt"
	"math"

	"daily-pick-ranker/helpers"
	"daily-pick-ranker/indicators"
	"daily-pick-ranker/risk"
)

// Strategy labels assigned to stock candidates
const (
	StrategyMomentumBreakout  = "momentum-breakout"
	StrategyTrendFollowing    = "trend-following"
	StrategyMeanReversion     = "mean-reversion"
	StrategyConsolidationPlay = "consolidation-play"
)

const (
	momentumLookback  = 5
	volumeLookback    = 5
	highLookback      = 20
	atrPeriod         = 14
	maxReasonBullets  = 5
	sizeStepPct       = 0.05
	volumeSurgeFactor = 1.2
	nearHighRatio     = 0.9
	momentumSignal    = 0.01
)

// ErrInsufficientData marks a symbol with too few bars to be scored
var ErrInsufficientData = errors.New("insufficient price history")

// FilterError reports a scored symbol that failed the inclusion filter
type FilterError struct {
	Symbol         string
	TechnicalScore int
	KellyFraction  float64
	MinScore       int
	MinKelly       float64
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("%s filtered out: technical score %d (min %d), kelly %.4f (min >%.4f)",
		e.Symbol, e.TechnicalScore, e.MinScore, e.KellyFraction, e.MinKelly)
}

// Config controls candidate construction and the inclusion filter
type Config struct {
	MinBars             int
	ReturnWindow        int
	KellyCap            float64
	MinTechnicalScore   int
	MinKellyFraction    float64
	StopATRMultiplier   float64
	TargetATRMultiplier float64
	MaxStopPct          float64
	MaxTargetPct        float64
}

// DefaultConfig is the canonical candidate policy
func DefaultConfig() Config {
	return Config{
		MinBars:             10,
		ReturnWindow:        risk.DefaultReturnWindow,
		KellyCap:            risk.DefaultKellyCap,
		MinTechnicalScore:   1,
		MinKellyFraction:    0.005,
		StopATRMultiplier:   2.0,
		TargetATRMultiplier: 2.5,
		MaxStopPct:          0.03,
		MaxTargetPct:        0.12,
	}
}

// Technicals is the rule-scored technical view of a symbol
type Technicals struct {
	Score      int                 `json:"technical_score"`
	Signals    []string            `json:"signals"`
	Indicators indicators.Snapshot `json:"indicators"`
}

// Candidate is a scored stock trade idea. It is not modified after Build returns.
type Candidate struct {
	Symbol         string   `json:"symbol"`
	Strategy       string   `json:"strategy"`
	EntryPrice     float64  `json:"entry_price"`
	StopLoss       float64  `json:"stop_loss"`
	TargetPrice    float64  `json:"target_price"`
	SharpeRatio    float64  `json:"sharpe_ratio"`
	ExpectedReturn float64  `json:"expected_return"`
	KellyFraction  float64  `json:"kelly_fraction"`
	SizePct        float64  `json:"size_pct"`
	TechnicalScore int      `json:"technical_score"`
	WinRate        float64  `json:"win_rate"`
	PayoffRatio    float64  `json:"payoff_ratio"`
	Volatility     float64  `json:"volatility"`
	ReasonBullets  []string `json:"reason_bullets"`
	DataPoints     int      `json:"data_points"`
	CompositeScore float64  `json:"composite_score"`
}

// CompositeScore blends technical strength, sizing and positive Sharpe
func CompositeScore(technicalScore int, kelly, sharpe float64) float64 {
	return float64(technicalScore) * kelly * (1 + math.Max(0, sharpe))
}

// AnalyzeTechnicals scores trend, momentum, volume and proximity to the recent high
func AnalyzeTechnicals(bars []indicators.Bar) Technicals {
	closes := indicators.Closes(bars)
	volumes := indicators.Volumes(bars)
	snap := indicators.Compute(bars)
	current := indicators.Last(closes)

	score := 0
	var signals []string

	// Trend alignment
	switch {
	case snap.SMA5 > snap.SMA10 && snap.SMA10 > snap.SMA20:
		score += 3
		signals = append(signals, "Strong uptrend: 5 > 10 > 20 SMA")
	case snap.SMA5 > snap.SMA10:
		score += 2
		signals = append(signals, "Short-term uptrend: 5 > 10 SMA")
	case snap.SMA5 > snap.SMA20:
		score += 1
		signals = append(signals, "Price above 20-day average")
	}

	// Momentum
	if snap.Momentum > momentumSignal {
		score += 2
		period := indicators.MomentumPeriod(len(closes), momentumLookback)
		signals = append(signals, fmt.Sprintf("Positive %d-day momentum: %s", period, helpers.Percent(snap.Momentum)))
	}

	// Volume
	if len(volumes) >= volumeLookback {
		avgVolume := indicators.SMA(volumes, volumeLookback)
		if indicators.Last(volumes) > avgVolume*volumeSurgeFactor {
			score += 1
			signals = append(signals, "Above-average volume")
		}
	}

	// Price action near recent highs
	if high := indicators.Highest(closes, highLookback); high > 0 && current/high > nearHighRatio {
		score += 1
		signals = append(signals, "Near recent highs")
	}

	if len(signals) > maxReasonBullets {
		signals = signals[:maxReasonBullets]
	}

	return Technicals{Score: score, Signals: signals, Indicators: snap}
}

// DetermineStrategy labels the setup from SMA ordering and momentum
func DetermineStrategy(snap indicators.Snapshot) string {
	switch {
	case snap.SMA5 > snap.SMA10 && snap.SMA10 > snap.SMA20 && snap.Momentum > 0.02:
		return StrategyMomentumBreakout
	case snap.SMA5 > snap.SMA10:
		return StrategyTrendFollowing
	case snap.Momentum < -0.015:
		return StrategyMeanReversion
	default:
		return StrategyConsolidationPlay
	}
}

// ExitLevels places the stop and target from ATR, clamped to the configured maximum moves
func ExitLevels(entry, atr float64, cfg Config) (stop, target float64) {
	stop = math.Max(entry-atr*cfg.StopATRMultiplier, entry*(1-cfg.MaxStopPct))
	target = math.Min(entry+atr*cfg.TargetATRMultiplier, entry*(1+cfg.MaxTargetPct))
	return stop, target
}

// Build scores one symbol from ascending bars.
// It returns ErrInsufficientData (wrapped) below cfg.MinBars and *FilterError when
// the symbol does not clear the inclusion filter.
func Build(symbol string, bars []indicators.Bar, cfg Config) (*Candidate, error) {
	if len(bars) < cfg.MinBars || len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w (%d bars, need %d)", symbol, ErrInsufficientData, len(bars), cfg.MinBars)
	}

	tech := AnalyzeTechnicals(bars)
	closes := indicators.Closes(bars)
	metrics := risk.FromPrices(closes, cfg.ReturnWindow, cfg.KellyCap)

	if tech.Score < cfg.MinTechnicalScore || metrics.KellyFraction <= cfg.MinKellyFraction {
		return nil, &FilterError{
			Symbol:         symbol,
			TechnicalScore: tech.Score,
			KellyFraction:  metrics.KellyFraction,
			MinScore:       cfg.MinTechnicalScore,
			MinKelly:       cfg.MinKellyFraction,
		}
	}

	entry := indicators.Last(closes)
	stop, target := ExitLevels(entry, tech.Indicators.ATR, cfg)

	bullets := make([]string, len(tech.Signals))
	copy(bullets, tech.Signals)

	c := &Candidate{
		Symbol:         symbol,
		Strategy:       DetermineStrategy(tech.Indicators),
		EntryPrice:     helpers.Round(entry, 2),
		StopLoss:       helpers.Round(stop, 2),
		TargetPrice:    helpers.Round(target, 2),
		SharpeRatio:    helpers.Round(metrics.SharpeRatio, 2),
		ExpectedReturn: helpers.Round(metrics.ExcessReturn, 3),
		KellyFraction:  helpers.Round(metrics.KellyFraction, 3),
		SizePct:        helpers.RoundToStep(metrics.KellyFraction*100, sizeStepPct),
		TechnicalScore: tech.Score,
		WinRate:        helpers.Round(metrics.WinRate, 2),
		PayoffRatio:    helpers.Round(metrics.PayoffRatio, 2),
		Volatility:     helpers.Round(metrics.Volatility, 2),
		ReasonBullets:  bullets,
		DataPoints:     len(bars),
	}
	c.CompositeScore = CompositeScore(c.TechnicalScore, metrics.KellyFraction, metrics.SharpeRatio)
	return c, nil
}
