package invoice

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber converts user-entered numeric text to a float64 the way a
// browser's parseFloat does: leading whitespace is skipped and the longest
// decimal prefix is used, so "12abc" is 12. Text without such a prefix,
// NaN, infinities and overflow all coerce to 0. Callers never see an error:
// the form must not block on bad input.
func ParseNumber(raw string) float64 {
	prefix := decimalPrefix(strings.TrimSpace(raw))
	if prefix == "" {
		return 0
	}
	value, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

// decimalPrefix returns the longest leading [sign]digits[.digits][e[sign]digits]
// run of s, or "" when s does not start with a number.
func decimalPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
			digits++
		}
		if digits > 0 {
			i = j
		}
	}
	if digits == 0 {
		return ""
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return s[:i]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// FormatNumber renders a quantity or percentage in its shortest form ("3", "2.5").
func FormatNumber(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "0"
	}
	if value == 0 {
		return "0"
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
