// Package format renders amounts and dates the way invoices display them:
// Indian rupees with en-IN digit grouping and short day-month-year dates.
package format

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "₹"

func toDecimal(amount float64) decimal.Decimal {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(amount).Round(2)
}

// Currency formats amount as rupees with two decimals, e.g. ₹1,23,456.78.
func Currency(amount float64) string {
	d := toDecimal(amount)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + CurrencySymbol + groupIndian(whole) + "." + frac
}

// Amount formats amount with two decimals and no grouping or symbol.
func Amount(amount float64) string {
	return toDecimal(amount).StringFixed(2)
}

// groupIndian inserts separators after the last three digits and then
// every two digits.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC1123,
	"2006-01-02 15:04:05",
}

// ParseDate accepts the date shapes the API and older databases produce.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date formats s as "19 Dec 2025". Unparseable input yields "".
func Date(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return ""
	}
	month := t.Format("Jan")
	if t.Month() == time.September {
		month = "Sept"
	}
	return t.Format("02") + " " + month + " " + t.Format("2006")
}

// Percent formats a tax rate without trailing zeros, e.g. 18% or 12.5%.
func Percent(p float64) string {
	return Number(p) + "%"
}

// Number formats a quantity or rate without trailing zeros.
func Number(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	return decimal.NewFromFloat(f).String()
}
