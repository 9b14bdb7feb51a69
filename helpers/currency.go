package helpers

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FormatUSD formats a number as whole US dollars with comma thousand separators
func FormatUSD(amount float64) string {
	value := decimal.NewFromFloat(amount).Round(0).IntPart()

	// Handle negative numbers
	negative := value < 0
	if negative {
		value = -value
	}

	str := fmt.Sprintf("%d", value)
	length := len(str)

	var result string
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result += ","
		}
		result += string(digit)
	}

	if negative {
		return "-$" + result
	}
	return "$" + result
}

// Round rounds half away from zero to the given number of decimal places
func Round(value float64, places int32) float64 {
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

// RoundToStep rounds value to the nearest multiple of step (e.g. 0.05)
func RoundToStep(value, step float64) float64 {
	if step <= 0 {
		return value
	}
	d := decimal.NewFromFloat(step)
	return decimal.NewFromFloat(value).Div(d).Round(0).Mul(d).InexactFloat64()
}

// Percent formats a fraction as a percentage with one decimal place
func Percent(fraction float64) string {
	return decimal.NewFromFloat(fraction).Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}
