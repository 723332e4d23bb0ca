// internal/engine/income.go
package engine

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeIncome converts the free-text income strings students type into
// an annual rupee amount. It understands currency symbols, grouping commas,
// "A-B" ranges (midpoint), and the Indian lakh/crore units. Anything it
// cannot make sense of comes back as 0 so a scholarship with an income
// constraint simply fails that check instead of erroring.
func NormalizeIncome(text string) float64 {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return 0
	}

	for _, junk := range []string{"₹", "rs.", "rs", "$", ","} {
		s = strings.ReplaceAll(s, junk, "")
	}
	s = strings.TrimSpace(s)

	if strings.Contains(s, "-") {
		parts := strings.Split(s, "-")
		if len(parts) != 2 {
			return 0
		}
		low, okLow := parseIncomeValue(parts[0])
		high, okHigh := parseIncomeValue(parts[1])
		if !okLow || !okHigh {
			return 0
		}
		return sanitize((low + high) / 2)
	}

	value, ok := parseIncomeValue(s)
	if !ok {
		return 0
	}
	return sanitize(value)
}

func parseIncomeValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)

	multiplier := 1.0
	switch {
	case strings.Contains(s, "crore"):
		multiplier = 10000000
		s = stripUnit(s, "crores", "crore")
	case strings.Contains(s, "lakh"):
		multiplier = 100000
		s = stripUnit(s, "lakhs", "lakh")
	case strings.Contains(s, "lac"):
		multiplier = 100000
		s = stripUnit(s, "lacs", "lac")
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return value * multiplier, true
}

func stripUnit(s string, units ...string) string {
	for _, u := range units {
		s = strings.ReplaceAll(s, u, "")
	}
	return strings.TrimSpace(s)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
