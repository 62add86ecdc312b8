package latexcalc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	latexcalc "github.com/leo5358/latex-calc"
	"github.com/leo5358/latex-calc/symbolic"
)

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		name   string
		n      *symbolic.Num
		places int
		want   string
	}{
		{"third", symbolic.F(1, 3), 4, "0.3333"},
		{"two thirds rounds up", symbolic.F(2, 3), 4, "0.6667"},
		{"negative third", symbolic.F(-1, 3), 4, "-0.3333"},
		{"integer is bare", symbolic.N(2), 4, "2"},
		{"negative integer", symbolic.N(-17), 4, "-17"},
		{"trailing zeros dropped", symbolic.F(1, 2), 4, "0.5"},
		{"short exact", symbolic.F(7, 4), 4, "1.75"},
		{"half up", symbolic.F(12345, 100000), 4, "0.1235"},
		{"half up at two places", symbolic.F(1, 8), 2, "0.13"},
		{"no places", symbolic.F(5, 2), 0, "3"},
		{"rounds to zero", symbolic.F(1, 100000), 4, "0"},
		{"negative rounds to zero", symbolic.F(-1, 100000), 4, "0"},
		{"large", symbolic.F(123456789, 1000), 4, "123456.789"},
		{"float input", symbolic.NFloat(0.1), 4, "0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, latexcalc.FormatDecimal(tt.n, tt.places))
		})
	}
}

func TestResultFormat(t *testing.T) {
	assert.Equal(t, "0.25", latexcalc.Result{Decimal: symbolic.F(1, 4)}.Format(4))
	assert.Equal(t, `\frac{1}{4}`, latexcalc.Result{Exact: symbolic.F(1, 4)}.Format(4))
	assert.Equal(t, "", latexcalc.Result{}.Format(4))
}
