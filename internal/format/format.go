// Package format renders counters for display.
package format

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

var suffixSteps = []struct {
	value  float64
	symbol string
}{
	{1, ""},
	{1e3, "k"},
	{1e6, "M"},
	{1e9, "G"},
	{1e12, "T"},
	{1e15, "P"},
	{1e18, "E"},
}

// NumericSuffix scales value to the largest step not exceeding it and
// appends the step's suffix: 1500 with 1 digit is "1.5k". Trailing zeros
// are stripped. Values below 1 render as "0".
func NumericSuffix(value float64, digits int) string {
	if digits < 0 {
		digits = 0
	}
	for i := len(suffixSteps) - 1; i >= 0; i-- {
		step := suffixSteps[i]
		if value >= step.value {
			return trimZeros(strconv.FormatFloat(value/step.value, 'f', digits, 64)) + step.symbol
		}
	}
	return "0"
}

// CommaSeparatedNumber groups the integer part in thousands: 1234567 is "1,234,567"
func CommaSeparatedNumber(value float64) string {
	return humanize.Commaf(value)
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
