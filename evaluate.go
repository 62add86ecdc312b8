package latexcalc

import (
	"fmt"

	"github.com/leo5358/latex-calc/symbolic"
)

// Result holds exactly one of an exact expression or a decimal value.
type Result struct {
	Exact   symbolic.Expr
	Decimal *symbolic.Num
}

// Format renders an exact result as LaTeX and a decimal one with
// FormatDecimal.
func (r Result) Format(places int) string {
	switch {
	case r.Decimal != nil:
		return FormatDecimal(r.Decimal, places)
	case r.Exact != nil:
		return r.Exact.LaTeX()
	}
	return ""
}

// Evaluate forces every deferred operation in tree and reduces the result
// in the given mode.
func Evaluate(mode Mode, tree symbolic.Expr, cfg symbolic.ForceConfig) (Result, error) {
	forced, err := force(tree, cfg)
	if err != nil {
		return Result{}, err
	}
	return reduce(mode, forced)
}

func force(tree symbolic.Expr, cfg symbolic.ForceConfig) (symbolic.Expr, error) {
	forced, err := symbolic.ForceWith(tree, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEvaluation, err)
	}
	return forced, nil
}

func reduce(mode Mode, forced symbolic.Expr) (Result, error) {
	if mode == ModeNumeric {
		if containsMatrix(forced) {
			return Result{}, ErrNumericMatrix
		}
		n, ok := forced.Eval()
		if !ok {
			return Result{}, fmt.Errorf("%w: %s has no numeric value", ErrEvaluation, forced.String())
		}
		return Result{Decimal: n}, nil
	}

	out := symbolic.SimplifyFull(forced)
	if err := symbolic.CheckDefined(out); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrEvaluation, err)
	}
	return Result{Exact: out}, nil
}

func containsMatrix(e symbolic.Expr) bool {
	if _, ok := e.(*symbolic.Matrix); ok {
		return true
	}
	for _, c := range symbolic.Children(e) {
		if containsMatrix(c) {
			return true
		}
	}
	return false
}
