package risk

import (
	"math"
	"testing"
)

func TestKelly(t *testing.T) {
	tests := []struct {
		name    string
		winRate float64
		payoff  float64
		cap     float64
		want    float64
	}{
		{"coin flip even payoff", 0.5, 1, 0.15, 0},
		{"edge below cap", 0.55, 1, 0.15, 0.10},
		{"edge above cap", 0.7, 2, 0.15, 0.15},
		{"negative edge clamps to zero", 0.3, 1, 0.15, 0},
		{"zero payoff", 0.9, 0, 0.15, 0},
		{"negative payoff", 0.9, -1, 0.15, 0},
		{"nan payoff", 0.9, math.NaN(), 0.15, 0},
		{"infinite payoff", 0.9, math.Inf(1), 0.15, 0},
		{"higher cap", 0.7, 2, 0.25, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Kelly(tt.winRate, tt.payoff, tt.cap)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Kelly(%v, %v, %v) = %v, want %v", tt.winRate, tt.payoff, tt.cap, got, tt.want)
			}
		})
	}
}

func TestKellyStaysWithinBounds(t *testing.T) {
	for _, cap := range []float64{0.15, 0.20, 0.25} {
		for p := 0.0; p <= 1.0; p += 0.05 {
			for b := 0.05; b <= 10; b += 0.35 {
				f := Kelly(p, b, cap)
				if f < 0 || f > cap {
					t.Fatalf("Kelly(%v, %v, %v) = %v outside [0, %v]", p, b, cap, f, cap)
				}
			}
		}
	}
}

func TestFromReturnsEmpty(t *testing.T) {
	got := FromReturns(nil, DefaultKellyCap)
	if got != Neutral() {
		t.Errorf("FromReturns(nil) = %+v, want %+v", got, Neutral())
	}
}

func TestFromReturns(t *testing.T) {
	tests := []struct {
		name        string
		returns     []float64
		wantWinRate float64
		wantPayoff  float64
		wantKelly   float64
		wantExcess  float64
	}{
		{
			name:        "only gains defaults loss side",
			returns:     []float64{0.02, 0.02, 0.02, 0.02},
			wantWinRate: 1,
			wantPayoff:  2,
			wantKelly:   DefaultKellyCap,
			wantExcess:  0.02,
		},
		{
			name:        "only losses defaults win side",
			returns:     []float64{-0.02, -0.02},
			wantWinRate: 0,
			wantPayoff:  0.5,
			wantKelly:   0,
			wantExcess:  -0.02,
		},
		{
			name:        "zeros count against win rate",
			returns:     []float64{0.01, 0, 0, -0.01},
			wantWinRate: 0.25,
			wantPayoff:  1,
			wantKelly:   0,
			wantExcess:  0.01*0.25 - 0.01*0.75,
		},
		{
			name:        "mixed",
			returns:     []float64{0.03, 0.01, -0.01},
			wantWinRate: 2.0 / 3.0,
			wantPayoff:  2,
			wantKelly:   DefaultKellyCap,
			wantExcess:  0.02*(2.0/3.0) - 0.01*(1.0/3.0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FromReturns(tt.returns, DefaultKellyCap)
			if math.Abs(m.WinRate-tt.wantWinRate) > 1e-9 {
				t.Errorf("WinRate = %v, want %v", m.WinRate, tt.wantWinRate)
			}
			if math.Abs(m.PayoffRatio-tt.wantPayoff) > 1e-9 {
				t.Errorf("PayoffRatio = %v, want %v", m.PayoffRatio, tt.wantPayoff)
			}
			if math.Abs(m.KellyFraction-tt.wantKelly) > 1e-9 {
				t.Errorf("KellyFraction = %v, want %v", m.KellyFraction, tt.wantKelly)
			}
			if math.Abs(m.ExcessReturn-tt.wantExcess) > 1e-12 {
				t.Errorf("ExcessReturn = %v, want %v", m.ExcessReturn, tt.wantExcess)
			}
			if m.Volatility > 0 && math.Abs(m.SharpeRatio-m.ExcessReturn/m.Volatility) > 1e-12 {
				t.Errorf("SharpeRatio = %v, want excess/vol", m.SharpeRatio)
			}
			if m.Volatility == 0 && m.SharpeRatio != 0 {
				t.Errorf("SharpeRatio = %v with zero volatility", m.SharpeRatio)
			}
		})
	}
}

func TestFromPricesUsesMostRecentWindow(t *testing.T) {
	// 20 falling days followed by 5 rising days: only the rising tail is in a 5-return window.
	prices := []float64{200}
	for i := 0; i < 20; i++ {
		prices = append(prices, prices[len(prices)-1]*0.98)
	}
	for i := 0; i < 5; i++ {
		prices = append(prices, prices[len(prices)-1]*1.01)
	}

	recent := FromPrices(prices, 5, DefaultKellyCap)
	if recent.WinRate != 1 {
		t.Errorf("recent window WinRate = %v, want 1", recent.WinRate)
	}

	all := FromPrices(prices, 0, DefaultKellyCap)
	if math.Abs(all.WinRate-5.0/25.0) > 1e-9 {
		t.Errorf("unbounded window WinRate = %v, want 0.2", all.WinRate)
	}
}
