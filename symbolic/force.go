package symbolic

import (
	"fmt"
	"math/big"
)

// ============================================================
// Structural rewriting
// ============================================================

// Replace rewrites e top-down without simplifying anything. fn is offered
// every node; when it reports a replacement, that subtree is swapped and not
// visited further. Untouched subtrees keep their identity.
func Replace(e Expr, fn func(Expr) (Expr, bool)) Expr {
	if r, ok := fn(e); ok {
		return r
	}
	kids := e.children()
	if len(kids) == 0 {
		return e
	}
	next := make([]Expr, len(kids))
	changed := false
	for i, k := range kids {
		next[i] = Replace(k, fn)
		if next[i] != k {
			changed = true
		}
	}
	if !changed {
		return e
	}
	return e.rebuild(next)
}

// Children exposes the direct subexpressions of e.
func Children(e Expr) []Expr {
	kids := e.children()
	out := make([]Expr, len(kids))
	copy(out, kids)
	return out
}

// ============================================================
// Forced evaluation
// ============================================================

// ForceConfig bounds the work Force may do.
type ForceConfig struct {
	// MaxSeriesTerms caps the number of terms a finite sum or product expands to.
	MaxSeriesTerms int
	// NumericFallback lets definite integrals without a closed form be
	// approximated by quadrature.
	NumericFallback bool
}

func DefaultForceConfig() ForceConfig {
	return ForceConfig{MaxSeriesTerms: 10000}
}

// Force evaluates every deferred operation reachable from e, bottom-up:
// matrix arithmetic, inverse, transpose, det, trace, derivatives, integrals,
// limits and finite sums and products. Scalar arithmetic is left unsimplified.
func Force(e Expr) (Expr, error) {
	return ForceWith(e, DefaultForceConfig())
}

func ForceWith(e Expr, cfg ForceConfig) (Expr, error) {
	f := &forcer{cfg: cfg}
	return f.force(e)
}

type forcer struct {
	cfg ForceConfig
}

func (f *forcer) force(e Expr) (Expr, error) {
	kids := e.children()
	if len(kids) > 0 {
		next := make([]Expr, len(kids))
		for i, k := range kids {
			fk, err := f.force(k)
			if err != nil {
				return nil, err
			}
			next[i] = fk
		}
		e = e.rebuild(next)
	}

	switch v := e.(type) {
	case *Add:
		return forceAdd(v)
	case *Mul:
		return forceMul(v)
	case *Pow:
		return forcePow(v)
	case *Func:
		if m, ok := v.arg.(*Matrix); ok {
			if v.name == "abs" {
				return m.Det()
			}
			return nil, fmt.Errorf("%w: %s of a matrix", ErrUnsupported, v.name)
		}
	case *MatrixFunc:
		return forceMatrixFunc(v)
	case *Derivative:
		return forceDerivative(v)
	case *Integral:
		return f.forceIntegral(v)
	case *Lim:
		if _, ok := v.expr.(*Matrix); ok {
			return nil, fmt.Errorf("%w: limit of a matrix", ErrUnsupported)
		}
		res := Limit(v.expr, v.varName, v.point)
		if !res.Success {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, res.Error)
		}
		return res.Value, nil
	case *Series:
		return f.forceSeries(v)
	case *Equation:
		_, lm := v.LHS.(*Matrix)
		_, rm := v.RHS.(*Matrix)
		if lm || rm {
			return nil, fmt.Errorf("%w: matrix equation", ErrUnsupported)
		}
	}
	return e, nil
}

func forceAdd(a *Add) (Expr, error) {
	var sum *Matrix
	scalars := 0
	for _, t := range a.terms {
		m, ok := t.(*Matrix)
		if !ok {
			scalars++
			continue
		}
		if sum == nil {
			sum = m
			continue
		}
		next, err := sum.MatAdd(m)
		if err != nil {
			return nil, err
		}
		sum = next
	}
	if sum == nil {
		return a, nil
	}
	if scalars > 0 {
		return nil, fmt.Errorf("%w: cannot add a scalar to a matrix", ErrDimensionMismatch)
	}
	return sum, nil
}

// forceMul multiplies matrix factors in written order; scalar factors commute
// and scale the result.
func forceMul(m *Mul) (Expr, error) {
	var product *Matrix
	var scalars []Expr
	for _, f := range m.factors {
		mat, ok := f.(*Matrix)
		if !ok {
			scalars = append(scalars, f)
			continue
		}
		if product == nil {
			product = mat
			continue
		}
		next, err := product.MatMul(mat)
		if err != nil {
			return nil, err
		}
		product = next
	}
	if product == nil {
		return m, nil
	}
	if len(scalars) == 0 {
		return product, nil
	}
	return product.Scale(MulOf(scalars...)), nil
}

func forcePow(p *Pow) (Expr, error) {
	if _, ok := p.exp.(*Matrix); ok {
		return nil, fmt.Errorf("%w: matrix exponent", ErrUnsupported)
	}
	m, ok := p.base.(*Matrix)
	if !ok {
		return p, nil
	}
	if s, ok := p.exp.(*Sym); ok && s.name == "T" {
		return m.Transpose(), nil
	}
	if n, ok := p.exp.Simplify().(*Num); ok {
		if k, ok := n.Int64(); ok {
			return m.MatPow(k)
		}
	}
	return nil, fmt.Errorf("%w: matrix power %s", ErrUnsupported, p.exp.String())
}

func forceMatrixFunc(f *MatrixFunc) (Expr, error) {
	m, ok := f.arg.(*Matrix)
	if !ok {
		if f.name == "det" {
			return f.arg, nil
		}
		return nil, fmt.Errorf("%w: %s of a scalar", ErrUnsupported, f.name)
	}
	switch f.name {
	case "det":
		return m.Det()
	case "tr":
		return m.Trace()
	}
	return nil, fmt.Errorf("%w: matrix function %s", ErrUnsupported, f.name)
}

func forceDerivative(d *Derivative) (Expr, error) {
	if m, ok := d.expr.(*Matrix); ok {
		result := m
		for i := 0; i < d.order; i++ {
			result = result.Diff(d.varName).(*Matrix)
		}
		return result, nil
	}
	return DiffN(d.expr, d.varName, d.order), nil
}

func (f *forcer) forceIntegral(g *Integral) (Expr, error) {
	if m, ok := g.expr.(*Matrix); ok {
		var err error
		result := m.each(func(e Expr) Expr {
			if err != nil {
				return e
			}
			var r Expr
			r, err = f.forceIntegral(&Integral{expr: e, varName: g.varName, lower: g.lower, upper: g.upper})
			return r
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	anti, ok := Integrate(g.expr, g.varName)
	if !ok {
		if g.definite() && f.cfg.NumericFallback {
			a, aok := g.lower.Simplify().Eval()
			b, bok := g.upper.Simplify().Eval()
			if aok && bok {
				if v, ok := DefiniteIntegrate(g.expr, g.varName, a.Float64(), b.Float64()); ok {
					return NFloat(v), nil
				}
			}
		}
		return nil, fmt.Errorf("%w: no antiderivative for %s", ErrUnsupported, g.expr.String())
	}
	if !g.definite() {
		return anti, nil
	}
	upper := anti.Sub(g.varName, g.upper)
	lower := anti.Sub(g.varName, g.lower)
	return AddOf(upper, MulOf(N(-1), lower)), nil
}

func (f *forcer) forceSeries(s *Series) (Expr, error) {
	lo, ok1 := s.lower.Simplify().(*Num)
	hi, ok2 := s.upper.Simplify().(*Num)
	if !ok1 || !ok2 || !lo.IsInteger() || !hi.IsInteger() {
		return nil, fmt.Errorf("%w: %s bounds must be integers", ErrUnsupported, s.kind())
	}
	count := new(big.Int).Sub(hi.val.Num(), lo.val.Num())
	count.Add(count, big.NewInt(1))
	if count.Sign() <= 0 {
		if s.product {
			return N(1), nil
		}
		return N(0), nil
	}
	if !count.IsInt64() || count.Int64() > int64(f.cfg.MaxSeriesTerms) {
		return nil, fmt.Errorf("%w: %s over %s terms", ErrUnsupported, s.kind(), count.String())
	}
	start := lo.val.Num().Int64()
	terms := make([]Expr, 0, count.Int64())
	for i := int64(0); i < count.Int64(); i++ {
		terms = append(terms, s.body.Sub(s.varName, N(start+i)))
	}
	if s.product {
		return f.force(&Mul{factors: terms})
	}
	return f.force(&Add{terms: terms})
}
