package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv("UNIVERSE", "")
	t.Setenv("RANK_KELLY_CAP", "")
	t.Setenv("RANK_MAX_DATA_AGE", "")

	cfg := LoadFromEnv()

	if cfg.Ranking.KellyCap != 0.15 {
		t.Errorf("KellyCap = %v, want 0.15", cfg.Ranking.KellyCap)
	}
	if cfg.Ranking.MaxDataAge != 24*time.Hour {
		t.Errorf("MaxDataAge = %v, want 24h", cfg.Ranking.MaxDataAge)
	}
	if cfg.Ranking.AllowStaleData {
		t.Error("stale data should fail runs by default")
	}
	if cfg.Ranking.MinBacktestWinRate != 0.65 || cfg.Ranking.MinRiskReward != 2.0 {
		t.Errorf("gate defaults = %v / %v", cfg.Ranking.MinBacktestWinRate, cfg.Ranking.MinRiskReward)
	}
	if !reflect.DeepEqual(cfg.Universe, DefaultUniverse) {
		t.Errorf("Universe = %v, want default", cfg.Universe)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("UNIVERSE", " aapl, msft ,,spy")
	t.Setenv("RANK_KELLY_CAP", "0.2")
	t.Setenv("RANK_MAX_DATA_AGE", "168h")
	t.Setenv("RANK_STRICT_STALE_DATA", "false")
	t.Setenv("RANK_WORKERS", "not-a-number")

	cfg := LoadFromEnv()

	if want := []string{"AAPL", "MSFT", "SPY"}; !reflect.DeepEqual(cfg.Universe, want) {
		t.Errorf("Universe = %v, want %v", cfg.Universe, want)
	}
	if cfg.Ranking.KellyCap != 0.2 {
		t.Errorf("KellyCap = %v, want 0.2", cfg.Ranking.KellyCap)
	}
	if cfg.Ranking.MaxDataAge != 7*24*time.Hour {
		t.Errorf("MaxDataAge = %v, want 168h", cfg.Ranking.MaxDataAge)
	}
	if !cfg.Ranking.AllowStaleData {
		t.Error("RANK_STRICT_STALE_DATA=false should allow stale data")
	}
	if cfg.Ranking.Workers != 8 {
		t.Errorf("Workers = %d, want fallback 8", cfg.Ranking.Workers)
	}
}

func TestIngestLookbackCoversHistoryLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit string
		want  int
	}{
		{"default history limit", "", 136},
		{"larger history limit", "120", 178},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RANK_HISTORY_LIMIT", tt.limit)
			t.Setenv("INGEST_LOOKBACK_DAYS", "")
			cfg := LoadFromEnv()
			if cfg.Ingest.LookbackDays != tt.want {
				t.Errorf("LookbackDays = %d, want %d", cfg.Ingest.LookbackDays, tt.want)
			}
		})
	}

	t.Setenv("INGEST_LOOKBACK_DAYS", "200")
	if got := LoadFromEnv().Ingest.LookbackDays; got != 200 {
		t.Errorf("explicit LookbackDays = %d, want 200", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"", false, false},
		{"TRUE", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"no", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			if got := getEnvBool("TEST_BOOL", tt.def); got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
			}
		})
	}
}

func TestAlpacaEnabled(t *testing.T) {
	if (AlpacaConfig{APIKey: "k"}).Enabled() {
		t.Error("Enabled() with missing secret should be false")
	}
	if !(AlpacaConfig{APIKey: "k", APISecret: "s"}).Enabled() {
		t.Error("Enabled() with both credentials should be true")
	}
}
