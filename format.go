package latexcalc

import (
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/leo5358/latex-calc/symbolic"
)

// FormatDecimal renders n for numeric mode. Integers print bare; anything
// else is rounded half-up to places digits, then trailing zeros and a bare
// decimal point are dropped.
func FormatDecimal(n *symbolic.Num, places int) string {
	r := n.Rat()
	if r.IsInt() {
		return r.Num().String()
	}
	num, _, err := apd.NewFromString(r.Num().String())
	if err != nil {
		return ""
	}
	den, _, err := apd.NewFromString(r.Denom().String())
	if err != nil {
		return ""
	}

	precision := uint32(len(r.Num().String()) + len(r.Denom().String()) + places + 2)

	// Truncate first so the half-up step sees the true digits.
	quo := apd.BaseContext.WithPrecision(precision)
	quo.Rounding = apd.RoundDown
	q := new(apd.Decimal)
	if _, err := quo.Quo(q, num, den); err != nil {
		return ""
	}

	round := apd.BaseContext.WithPrecision(precision)
	round.Rounding = apd.RoundHalfUp
	d := new(apd.Decimal)
	if _, err := round.Quantize(d, q, -int32(places)); err != nil {
		return ""
	}

	s := d.Text('f')
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}
