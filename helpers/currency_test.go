package helpers

import "testing"

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0"},
		{999, "$999"},
		{1000, "$1,000"},
		{1234567.4, "$1,234,567"},
		{240.5, "$241"},
		{-15000, "-$15,000"},
	}
	for _, tt := range tests {
		if got := FormatUSD(tt.amount); got != tt.want {
			t.Errorf("FormatUSD(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		places int32
		want   float64
	}{
		{"two places", 101.23456, 2, 101.23},
		{"half up", 0.125, 2, 0.13},
		{"three places", 0.0446123, 3, 0.045},
		{"negative", -1.005, 2, -1.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Round(tt.value, tt.places); got != tt.want {
				t.Errorf("Round(%v, %d) = %v, want %v", tt.value, tt.places, got, tt.want)
			}
		})
	}
}

func TestRoundToStep(t *testing.T) {
	tests := []struct {
		value, step, want float64
	}{
		{15.000000000000002, 0.05, 15},
		{3.33, 0.05, 3.35},
		{3.32, 0.05, 3.3},
		{7.1, 0, 7.1},
	}
	for _, tt := range tests {
		if got := RoundToStep(tt.value, tt.step); got != tt.want {
			t.Errorf("RoundToStep(%v, %v) = %v, want %v", tt.value, tt.step, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(0.0512); got != "5.1%" {
		t.Errorf("Percent(0.0512) = %q, want 5.1%%", got)
	}
}
