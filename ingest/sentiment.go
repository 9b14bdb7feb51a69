package ingest

import (
	"math"
	"strings"
	"unicode"
)

var positiveWords = map[string]bool{
	"good": true, "great": true, "excellent": true, "positive": true, "strong": true,
	"growth": true, "profit": true, "gain": true, "success": true, "bullish": true,
	"buy": true, "upgrade": true, "outperform": true, "beat": true, "exceed": true,
}

var negativeWords = map[string]bool{
	"bad": true, "poor": true, "negative": true, "weak": true, "loss": true,
	"decline": true, "fail": true, "bearish": true, "sell": true, "downgrade": true,
	"underperform": true, "risk": true, "miss": true, "below": true,
}

// ScoreSentiment counts positive minus negative words and normalizes by the larger
// word list, clamped to [-1, 1].
func ScoreSentiment(text string) float64 {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	score := 0
	for _, w := range words {
		if positiveWords[w] {
			score++
		}
		if negativeWords[w] {
			score--
		}
	}

	maxWords := math.Max(float64(len(positiveWords)), float64(len(negativeWords)))
	return math.Max(-1, math.Min(1, float64(score)/maxWords))
}
