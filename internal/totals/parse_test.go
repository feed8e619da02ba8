package totals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumericOrDefault(t *testing.T) {
	tests := []struct {
		input string
		def   float64
		want  float64
	}{
		{"", 0, 0},
		{"   ", 7, 7},
		{"abc", 0, 0},
		{"2", 0, 2},
		{"  2.5 ", 0, 2.5},
		{"-3", 0, -3},
		{"+4", 0, 4},
		{".5", 0, 0.5},
		{"5.", 0, 5},
		{"12abc", 0, 12},
		{"1e3", 0, 1000},
		{"1e", 0, 1},
		{"1e+", 0, 1},
		{"0x10", 0, 0},
		{"-", 9, 9},
		{".", 9, 9},
		{"Infinity", 1, 1},
		{"1e999", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNumericOrDefault(tt.input, tt.def))
		})
	}
}

func TestFromRaw_CoercesToZero(t *testing.T) {
	ref := int64(3)
	line := FromRaw(RawLine{ItemRef: &ref, Name: "  Widget ", Quantity: "", UnitPrice: "oops", TaxPercent: "18"})

	assert.Equal(t, "Widget", line.Name)
	assert.Equal(t, 0.0, line.Quantity)
	assert.Equal(t, 0.0, line.UnitPrice)
	assert.Equal(t, 18.0, line.TaxPercent)
	assert.Equal(t, &ref, line.ItemRef)

	got := Compute([]LineItem{line})
	assert.Equal(t, 0.0, got.GrandTotal)
}
