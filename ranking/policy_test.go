package ranking

import (
	"testing"
	"time"

	"daily-pick-ranker/config"
)

func TestPolicyFromConfig(t *testing.T) {
	t.Run("maps settings", func(t *testing.T) {
		p := PolicyFromConfig(config.RankingConfig{
			KellyCap:          0.1,
			MaxDataAge:        48 * time.Hour,
			AllowStaleData:    true,
			MinTechnicalScore: 2,
			MinRiskReward:     1.5,
			Workers:           3,
		})
		if p.KellyCap != 0.1 || p.Candidates.KellyCap != 0.1 {
			t.Errorf("KellyCap = %v / %v, want 0.1", p.KellyCap, p.Candidates.KellyCap)
		}
		if p.MaxDataAge != 48*time.Hour || !p.AllowStaleData {
			t.Errorf("freshness = %v allowStale=%v", p.MaxDataAge, p.AllowStaleData)
		}
		if p.Candidates.MinTechnicalScore != 2 || p.Gate.MinRiskReward != 1.5 || p.Workers != 3 {
			t.Errorf("policy = %+v", p)
		}
	})

	t.Run("zero values fall back to defaults", func(t *testing.T) {
		p := PolicyFromConfig(config.RankingConfig{})
		def := DefaultPolicy()
		if p.KellyCap != def.KellyCap || p.MaxDataAge != def.MaxDataAge || p.HistoryLimit != def.HistoryLimit {
			t.Errorf("policy = %+v, want defaults", p)
		}
		if p.Candidates.MinBars != def.Candidates.MinBars || p.MinBacktestBars != def.MinBacktestBars {
			t.Errorf("bar minimums = %d/%d", p.Candidates.MinBars, p.MinBacktestBars)
		}
		if p.Gate != def.Gate {
			t.Errorf("Gate = %+v, want %+v", p.Gate, def.Gate)
		}
		if p.Candidates != def.Candidates {
			t.Errorf("Candidates = %+v, want %+v", p.Candidates, def.Candidates)
		}
		if p.AllowStaleData {
			t.Error("zero config should fail runs on stale data")
		}
	})

	t.Run("zero policy keeps the acceptance bar", func(t *testing.T) {
		p := Policy{}.normalized()
		if p != DefaultPolicy() {
			t.Errorf("Policy{}.normalized() = %+v, want DefaultPolicy()", p)
		}
	})
}

func TestThresholdsEchoPolicy(t *testing.T) {
	th := DefaultPolicy().thresholds()
	if th.MaxDataAge != "24h0m0s" || th.KellyCap != 0.15 {
		t.Errorf("thresholds = %+v", th)
	}
	if th.MinBacktestWinRate != 0.65 || th.MinBacktestTrades != 5 || th.MinRiskReward != 2 || th.MinProfitProbability != 0.70 {
		t.Errorf("gate thresholds = %+v", th)
	}
}
