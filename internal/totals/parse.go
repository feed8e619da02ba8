package totals

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumericOrDefault reads a number from form input. Leading whitespace
// is skipped and the longest numeric prefix is used, so "12abc" is 12.
// Input without a numeric prefix, or one that overflows, yields def.
func ParseNumericOrDefault(input string, def float64) float64 {
	prefix := numericPrefix(strings.TrimLeft(input, " \t\r\n\v\f"))
	if prefix == "" {
		return def
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func numericPrefix(s string) string {
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
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return ""
	}
	end := i
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
			end = k
		}
	}
	return s[:end]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// RawLine is a line exactly as typed into the invoice form.
type RawLine struct {
	ItemRef    *int64
	Name       string
	Quantity   string
	UnitPrice  string
	TaxPercent string
}

// FromRaw converts form input into a LineItem, coercing unreadable numbers
// to zero.
func FromRaw(r RawLine) LineItem {
	return LineItem{
		ItemRef:    r.ItemRef,
		Name:       strings.TrimSpace(r.Name),
		Quantity:   ParseNumericOrDefault(r.Quantity, 0),
		UnitPrice:  ParseNumericOrDefault(r.UnitPrice, 0),
		TaxPercent: ParseNumericOrDefault(r.TaxPercent, 0),
	}
}
