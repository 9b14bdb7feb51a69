package ranking

import (
	"time"

	"daily-pick-ranker/candidates"
	"daily-pick-ranker/config"
	"daily-pick-ranker/options"
)

// Policy is the single source of truth for every ranking threshold
type Policy struct {
	KellyCap             float64
	MaxDataAge           time.Duration
	RecentStrategyWindow time.Duration
	// AllowStaleData reports zero candidates when no symbol is fresh instead of failing the run
	AllowStaleData  bool
	HistoryLimit    int
	MinBacktestBars int
	Workers         int

	Candidates candidates.Config
	Gate       options.GateConfig
}

// DefaultPolicy is the strict canonical policy: 24h freshness, 0.15 Kelly cap,
// 2:1 reward/risk and a 65% backtest win rate.
func DefaultPolicy() Policy {
	return Policy{
		KellyCap:             0.15,
		MaxDataAge:           24 * time.Hour,
		RecentStrategyWindow: 24 * time.Hour,
		HistoryLimit:         90,
		MinBacktestBars:      60,
		Workers:              8,
		Candidates:           candidates.DefaultConfig(),
		Gate:                 options.DefaultGate(),
	}
}

// PolicyFromConfig maps RANK_* settings onto a Policy
func PolicyFromConfig(cfg config.RankingConfig) Policy {
	p := Policy{
		KellyCap:             cfg.KellyCap,
		MaxDataAge:           cfg.MaxDataAge,
		RecentStrategyWindow: cfg.RecentStrategyWindow,
		AllowStaleData:       cfg.AllowStaleData,
		HistoryLimit:         cfg.PriceHistoryLimit,
		MinBacktestBars:      cfg.MinBacktestBars,
		Workers:              cfg.Workers,
		Candidates: candidates.Config{
			MinBars:             cfg.MinCandidateBars,
			ReturnWindow:        cfg.RiskReturnWindow,
			KellyCap:            cfg.KellyCap,
			MinTechnicalScore:   cfg.MinTechnicalScore,
			MinKellyFraction:    cfg.MinKellyFraction,
			StopATRMultiplier:   cfg.StopATRMultiplier,
			TargetATRMultiplier: cfg.TargetATRMultiplier,
			MaxStopPct:          cfg.MaxStopPct,
			MaxTargetPct:        cfg.MaxTargetPct,
		},
		Gate: options.GateConfig{
			MinWinRate:           cfg.MinBacktestWinRate,
			MinTrades:            cfg.MinBacktestTrades,
			MinRiskReward:        cfg.MinRiskReward,
			MinProfitProbability: cfg.MinProfitProbability,
		},
	}
	return p.normalized()
}

// normalized fills zero values from DefaultPolicy.
// A zero gate or filter threshold takes the default, so the acceptance bar cannot be switched off.
func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	if p.KellyCap <= 0 {
		p.KellyCap = def.KellyCap
	}
	if p.MaxDataAge <= 0 {
		p.MaxDataAge = def.MaxDataAge
	}
	if p.RecentStrategyWindow <= 0 {
		p.RecentStrategyWindow = def.RecentStrategyWindow
	}
	if p.HistoryLimit <= 0 {
		p.HistoryLimit = def.HistoryLimit
	}
	if p.MinBacktestBars <= 0 {
		p.MinBacktestBars = def.MinBacktestBars
	}
	if p.Workers <= 0 {
		p.Workers = def.Workers
	}
	if p.Candidates.MinBars <= 0 {
		p.Candidates.MinBars = def.Candidates.MinBars
	}
	if p.Candidates.ReturnWindow <= 0 {
		p.Candidates.ReturnWindow = def.Candidates.ReturnWindow
	}
	if p.Candidates.KellyCap <= 0 {
		p.Candidates.KellyCap = p.KellyCap
	}
	if p.Candidates.MinTechnicalScore <= 0 {
		p.Candidates.MinTechnicalScore = def.Candidates.MinTechnicalScore
	}
	if p.Candidates.MinKellyFraction <= 0 {
		p.Candidates.MinKellyFraction = def.Candidates.MinKellyFraction
	}
	if p.Candidates.StopATRMultiplier <= 0 {
		p.Candidates.StopATRMultiplier = def.Candidates.StopATRMultiplier
	}
	if p.Candidates.TargetATRMultiplier <= 0 {
		p.Candidates.TargetATRMultiplier = def.Candidates.TargetATRMultiplier
	}
	if p.Candidates.MaxStopPct <= 0 {
		p.Candidates.MaxStopPct = def.Candidates.MaxStopPct
	}
	if p.Candidates.MaxTargetPct <= 0 {
		p.Candidates.MaxTargetPct = def.Candidates.MaxTargetPct
	}
	if p.Gate.MinWinRate <= 0 {
		p.Gate.MinWinRate = def.Gate.MinWinRate
	}
	if p.Gate.MinTrades <= 0 {
		p.Gate.MinTrades = def.Gate.MinTrades
	}
	if p.Gate.MinRiskReward <= 0 {
		p.Gate.MinRiskReward = def.Gate.MinRiskReward
	}
	if p.Gate.MinProfitProbability <= 0 {
		p.Gate.MinProfitProbability = def.Gate.MinProfitProbability
	}
	return p
}

// Thresholds is the policy summary echoed in every result
type Thresholds struct {
	MaxDataAge           string  `json:"max_data_age"`
	RecentStrategyWindow string  `json:"recent_strategy_window"`
	KellyCap             float64 `json:"kelly_cap"`
	MinCandidateBars     int     `json:"min_candidate_bars"`
	MinBacktestBars      int     `json:"min_backtest_bars"`
	MinTechnicalScore    int     `json:"min_technical_score"`
	MinKellyFraction     float64 `json:"min_kelly_fraction"`
	MinBacktestWinRate   float64 `json:"min_backtest_win_rate"`
	MinBacktestTrades    int     `json:"min_backtest_trades"`
	MinRiskReward        float64 `json:"min_risk_reward"`
	MinProfitProbability float64 `json:"min_profit_probability"`
}

func (p Policy) thresholds() Thresholds {
	return Thresholds{
		MaxDataAge:           p.MaxDataAge.String(),
		RecentStrategyWindow: p.RecentStrategyWindow.String(),
		KellyCap:             p.KellyCap,
		MinCandidateBars:     p.Candidates.MinBars,
		MinBacktestBars:      p.MinBacktestBars,
		MinTechnicalScore:    p.Candidates.MinTechnicalScore,
		MinKellyFraction:     p.Candidates.MinKellyFraction,
		MinBacktestWinRate:   p.Gate.MinWinRate,
		MinBacktestTrades:    p.Gate.MinTrades,
		MinRiskReward:        p.Gate.MinRiskReward,
		MinProfitProbability: p.Gate.MinProfitProbability,
	}
}
