package indicators

import (
	"math"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func flatBars(n int, price float64) []Bar {
	bars := make([]Bar, n)
	for i := range bars {
		bars[i] = Bar{Open: price, High: price + 1, Low: price - 1, Close: price, Volume: 1000}
	}
	return bars
}

func TestSMA(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		period int
		want   float64
	}{
		{"empty", nil, 5, 0},
		{"zero period uses latest", []float64{1, 2, 3}, 0, 3},
		{"negative period uses latest", []float64{1, 2, 3}, -4, 3},
		{"exact window", []float64{1, 2, 3, 4}, 2, 3.5},
		{"full window", []float64{1, 2, 3, 4}, 4, 2.5},
		{"window beyond length", []float64{1, 2, 3, 4}, 10, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SMA(tt.prices, tt.period); !almostEqual(got, tt.want, eps) {
				t.Errorf("SMA() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSMAWindowBeyondLengthMatchesFullLength(t *testing.T) {
	prices := []float64{10, 11, 12.5, 9.75, 14, 13.2, 12}
	full := SMA(prices, len(prices))
	for n := len(prices) + 1; n < len(prices)+20; n++ {
		if got := SMA(prices, n); !almostEqual(got, full, eps) {
			t.Fatalf("SMA(prices, %d) = %v, want %v", n, got, full)
		}
	}
}

func TestATR(t *testing.T) {
	tests := []struct {
		name   string
		bars   []Bar
		period int
		want   float64
	}{
		{"empty falls back to 1", nil, 14, 1},
		{"single bar uses range", []Bar{{High: 105, Low: 101, Close: 103}}, 14, 4},
		{"single inverted bar stays positive", []Bar{{High: 100, Low: 102, Close: 101}}, 14, 2},
		{
			name: "gap up uses previous close",
			bars: []Bar{
				{High: 101, Low: 99, Close: 100},
				{High: 106, Low: 104, Close: 105},
			},
			period: 14,
			want:   6,
		},
		{
			name: "window limited to last period bars",
			bars: []Bar{
				{High: 101, Low: 99, Close: 100},
				{High: 120, Low: 90, Close: 100},
				{High: 101, Low: 99, Close: 100},
				{High: 102, Low: 98, Close: 100},
			},
			period: 2,
			want:   3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ATR(tt.bars, tt.period); !almostEqual(got, tt.want, eps) {
				t.Errorf("ATR() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestATRNeverNegative(t *testing.T) {
	series := [][]Bar{
		{{High: 1, Low: 5, Close: 3}},
		{{High: 10, Low: 10, Close: 10}, {High: 9, Low: 9, Close: 9}},
		flatBars(30, 50),
	}
	for i, bars := range series {
		for period := -1; period <= 20; period++ {
			if got := ATR(bars, period); got < 0 {
				t.Fatalf("series %d period %d: ATR = %v", i, period, got)
			}
		}
	}
}

func TestMomentum(t *testing.T) {
	tests := []struct {
		name     string
		prices   []float64
		lookback int
		want     float64
	}{
		{"empty", nil, 5, 0},
		{"single", []float64{10}, 5, 0},
		{"adapts to short history", []float64{100, 110}, 5, 0.10},
		{"standard lookback", []float64{100, 1, 1, 1, 1, 100, 105}, 5, 104},
		{"zero base", []float64{0, 5}, 1, 0},
		{"negative", []float64{100, 100, 100, 100, 100, 90}, 5, -0.10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Momentum(tt.prices, tt.lookback); !almostEqual(got, tt.want, 1e-12) {
				t.Errorf("Momentum() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVolatility(t *testing.T) {
	if got := Volatility(nil); got != 0 {
		t.Errorf("Volatility(nil) = %v, want 0", got)
	}
	if got := Volatility([]float64{0.01, 0.01, 0.01}); !almostEqual(got, 0, eps) {
		t.Errorf("constant returns volatility = %v, want 0", got)
	}
	got := Volatility([]float64{0.01, -0.01})
	want := 0.01 * math.Sqrt(252)
	if !almostEqual(got, want, eps) {
		t.Errorf("Volatility() = %v, want %v", got, want)
	}
}

func TestRealizedVolatility(t *testing.T) {
	if got := RealizedVolatility(flatBars(1, 10)); got != 0.3 {
		t.Errorf("single bar = %v, want 0.3", got)
	}

	bars := make([]Bar, 90)
	for i := range bars {
		price := 101.0
		if i%2 == 1 {
			price = 99
		}
		bars[i] = Bar{High: price, Low: price, Close: price}
	}
	got := RealizedVolatility(bars)
	want := math.Log(101.0/99.0) * math.Sqrt(252)
	if !almostEqual(got, want, 1e-9) {
		t.Errorf("RealizedVolatility() = %v, want %v", got, want)
	}
	if got <= 0.30 || got >= 0.35 {
		t.Errorf("alternating series volatility %v outside (0.30, 0.35)", got)
	}
}

func TestSimpleReturns(t *testing.T) {
	got := SimpleReturns([]float64{100, 110, 99, 0, 5})
	want := []float64{0.1, -0.1, -1, 0}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !almostEqual(got[i], want[i], 1e-12) {
			t.Errorf("returns[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if SimpleReturns([]float64{1}) != nil {
		t.Error("single price should produce no returns")
	}
}

func TestHighest(t *testing.T) {
	data := []float64{50, 10, 20, 15}
	if got := Highest(data, 3); got != 20 {
		t.Errorf("Highest(3) = %v, want 20", got)
	}
	if got := Highest(data, 10); got != 50 {
		t.Errorf("Highest(10) = %v, want 50", got)
	}
	if got := Highest(nil, 3); got != 0 {
		t.Errorf("Highest(nil) = %v, want 0", got)
	}
}
