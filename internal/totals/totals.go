// Package totals computes invoice line and aggregate amounts.
//
// Amounts are plain float64 so results match the values already displayed
// and stored by earlier clients; rounding happens only when formatting.
package totals

import "strings"

// LineItem is one invoice line as entered by the user.
type LineItem struct {
	ItemRef    *int64  `json:"item_id"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TaxPercent float64 `json:"gst_percent"`
}

// Valid reports whether the line may be included in a submission.
func (l LineItem) Valid() bool {
	return strings.TrimSpace(l.Name) != "" && l.Quantity > 0 && l.UnitPrice >= 0
}

// LineBreakdown holds the derived amounts of a single line.
type LineBreakdown struct {
	LineTotal      float64 `json:"line_total"`
	LineTax        float64 `json:"line_tax"`
	LineGrandTotal float64 `json:"total"`
}

// Totals is the result of Compute.
type Totals struct {
	Lines      []LineBreakdown `json:"lines"`
	Subtotal   float64         `json:"subtotal"`
	TaxTotal   float64         `json:"tax_total"`
	GrandTotal float64         `json:"grand_total"`
}

// ComputeLine derives the amounts of one line.
func ComputeLine(l LineItem) LineBreakdown {
	lineTotal := l.Quantity * l.UnitPrice
	lineTax := lineTotal * l.TaxPercent / 100
	return LineBreakdown{
		LineTotal:      lineTotal,
		LineTax:        lineTax,
		LineGrandTotal: lineTotal + lineTax,
	}
}

// Compute derives per-line amounts and the invoice aggregates. It never
// fails and does not modify lines.
func Compute(lines []LineItem) Totals {
	t := Totals{Lines: make([]LineBreakdown, len(lines))}
	for i, l := range lines {
		b := ComputeLine(l)
		t.Lines[i] = b
		t.Subtotal += b.LineTotal
		t.TaxTotal += b.LineTax
	}
	t.GrandTotal = t.Subtotal + t.TaxTotal
	return t
}

// Valid returns the lines that pass LineItem.Valid, in order.
func Valid(lines []LineItem) []LineItem {
	out := make([]LineItem, 0, len(lines))
	for _, l := range lines {
		if l.Valid() {
			out = append(out, l)
		}
	}
	return out
}
