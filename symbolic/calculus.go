package symbolic

import "math"

// ============================================================
// Differentiation helpers
// ============================================================

func Diff(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}

func DiffN(expr Expr, varName string, n int) Expr {
	result := expr
	for i := 0; i < n; i++ {
		result = Diff(result, varName)
	}
	return result
}

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

// ============================================================
// Free Symbols
// ============================================================

func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

func collectSymbols(e Expr, out map[string]struct{}) {
	if s, ok := e.(*Sym); ok {
		out[s.name] = struct{}{}
		return
	}
	for _, c := range e.children() {
		collectSymbols(c, out)
	}
}

func dependsOn(e Expr, varName string) bool {
	_, ok := FreeSymbols(e)[varName]
	return ok
}

func extractCoefficient(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) >= 2 {
		if coeff, ok2 := m.factors[0].(*Num); ok2 {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return coeff, rest[0]
			}
			return coeff, &Mul{factors: rest}
		}
	}
	return N(1), e
}

// ============================================================
// Limits
// ============================================================

// LimitResult holds the result of a limit computation.
type LimitResult struct {
	Value   Expr
	Success bool
	Error   string
}

// Limit computes lim_{varName -> point} expr.
// Tries direct substitution, L'Hôpital (0/0), then Taylor expansion.
func Limit(expr Expr, varName string, point Expr) LimitResult {
	return limitRecursive(expr, varName, point, 5)
}

func limitRecursive(expr Expr, varName string, point Expr, maxLhopital int) LimitResult {
	expr = expr.Simplify()
	if num, denom, ok := extractQuotient(expr); ok {
		dv, dok := denom.Sub(varName, point).Simplify().Eval()
		if dok && dv.IsZero() {
			nv, nok := num.Sub(varName, point).Simplify().Eval()
			if nok && nv.IsZero() && maxLhopital > 0 {
				dNum := Diff(num, varName)
				dDen := Diff(denom, varName)
				return limitRecursive(MulOf(dNum, PowOf(dDen, N(-1))), varName, point, maxLhopital-1)
			}
			return LimitResult{Error: "limit diverges: " + expr.String() + " as " + varName + " -> " + point.String()}
		}
	}
	subbed := expr.Sub(varName, point).Simplify()
	if CheckDefined(subbed) == nil {
		if _, ok := subbed.Eval(); ok {
			return LimitResult{Value: subbed, Success: true}
		}
		if !dependsOn(subbed, varName) {
			return LimitResult{Value: subbed, Success: true}
		}
	}
	if _, ok := point.Eval(); ok {
		series := TaylorSeries(expr, varName, point, 4)
		subSeries := series.Sub(varName, point).Simplify()
		if CheckDefined(subSeries) == nil {
			if _, ok2 := subSeries.Eval(); ok2 {
				return LimitResult{Value: subSeries, Success: true}
			}
		}
	}
	return LimitResult{
		Error:   "limit could not be determined: " + expr.String() + " as " + varName + " -> " + point.String(),
		Success: false,
	}
}

func extractQuotient(e Expr) (num, denom Expr, ok bool) {
	m, isMul := e.(*Mul)
	if !isMul {
		return nil, nil, false
	}
	var numFactors, denomFactors []Expr
	for _, f := range m.factors {
		if p, isPow := f.(*Pow); isPow {
			if en, isNum := p.exp.(*Num); isNum && en.IsNegative() {
				denomFactors = append(denomFactors, PowOf(p.base, numNeg(en)))
				continue
			}
		}
		numFactors = append(numFactors, f)
	}
	if len(denomFactors) == 0 {
		return nil, nil, false
	}
	return MulOf(numFactors...), MulOf(denomFactors...), true
}

// ============================================================
// Integration (rule-based symbolic + numerical)
// ============================================================

// Integrate returns an antiderivative of expr with respect to varName, or
// false when no rule applies.
func Integrate(expr Expr, varName string) (Expr, bool) {
	expr = expr.Simplify()
	if r, ok := integrateRules(expr, varName); ok {
		return r, true
	}
	if expanded := Expand(expr); !expanded.Equal(expr) {
		return integrateRules(expanded, varName)
	}
	return nil, false
}

func integrateRules(expr Expr, varName string) (Expr, bool) {
	x := S(varName)
	if !dependsOn(expr, varName) {
		return MulOf(expr, x), true
	}
	switch v := expr.(type) {
	case *Sym:
		return MulOf(F(1, 2), PowOf(x, N(2))), true
	case *Pow:
		if sym, ok := v.base.(*Sym); ok && sym.name == varName {
			if n, ok2 := v.exp.(*Num); ok2 {
				if n.IsNegOne() {
					return LnOf(AbsOf(x)), true
				}
				newExp := numAdd(n, N(1))
				return MulOf(numRecip(newExp), PowOf(x, newExp)), true
			}
		}
		if a, ok := linearCoeff(v.base, varName); ok {
			if n, ok2 := v.exp.(*Num); ok2 {
				if n.IsNegOne() {
					return MulOf(numRecip(a), LnOf(AbsOf(v.base))), true
				}
				newExp := numAdd(n, N(1))
				return MulOf(numRecip(numMul(a, newExp)), PowOf(v.base, newExp)), true
			}
		}
		if sym, ok := v.exp.(*Sym); ok && sym.name == varName {
			if _, ok2 := v.base.(*Num); ok2 {
				return MulOf(PowOf(v.base, x), PowOf(LnOf(v.base), N(-1))), true
			}
		}
		return nil, false
	case *Mul:
		var constant, rest []Expr
		for _, f := range v.factors {
			if dependsOn(f, varName) {
				rest = append(rest, f)
			} else {
				constant = append(constant, f)
			}
		}
		if len(constant) == 0 {
			return nil, false
		}
		intInner, ok := integrateRules(MulOf(rest...), varName)
		if !ok {
			return nil, false
		}
		return MulOf(append(constant, intInner)...), true
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			intT, ok := Integrate(t, varName)
			if !ok {
				return nil, false
			}
			terms[i] = intT
		}
		return AddOf(terms...), true
	case *Func:
		a, linear := linearCoeff(v.arg, varName)
		if !linear {
			return nil, false
		}
		inv := numRecip(a)
		switch v.name {
		case "sin":
			return MulOf(N(-1), inv, CosOf(v.arg)), true
		case "cos":
			return MulOf(inv, SinOf(v.arg)), true
		case "exp":
			return MulOf(inv, ExpOf(v.arg)), true
		case "sinh":
			return MulOf(inv, CoshOf(v.arg)), true
		case "cosh":
			return MulOf(inv, SinhOf(v.arg)), true
		case "tan":
			return MulOf(N(-1), inv, LnOf(AbsOf(CosOf(v.arg)))), true
		case "ln":
			return MulOf(inv, AddOf(MulOf(v.arg, LnOf(v.arg)), MulOf(N(-1), v.arg))), true
		case "asin":
			if isVar(v.arg, varName) {
				return AddOf(
					MulOf(x, AsinOf(x)),
					SqrtOf(AddOf(N(1), MulOf(N(-1), PowOf(x, N(2))))),
				), true
			}
		case "atan":
			if isVar(v.arg, varName) {
				return AddOf(
					MulOf(x, AtanOf(x)),
					MulOf(N(-1), F(1, 2), LnOf(AddOf(N(1), PowOf(x, N(2))))),
				), true
			}
		}
	}
	return nil, false
}

func isVar(e Expr, varName string) bool {
	s, ok := e.(*Sym)
	return ok && s.name == varName
}

// linearCoeff reports a when e has the form a*x + b with numeric a != 0.
func linearCoeff(e Expr, varName string) (*Num, bool) {
	d := Diff(e, varName)
	a, ok := d.(*Num)
	if !ok || a.IsZero() {
		return nil, false
	}
	return a, true
}

// DefiniteIntegrate approximates the integral over [a, b] with 10-point
// Gauss-Legendre quadrature.
func DefiniteIntegrate(expr Expr, varName string, a, b float64) (float64, bool) {
	nodes := []float64{
		-0.9739065285, -0.8650633667, -0.6794095683,
		-0.4333953941, -0.1488743390, 0.1488743390,
		0.4333953941, 0.6794095683, 0.8650633667, 0.9739065285,
	}
	weights := []float64{
		0.0666713443, 0.1494513492, 0.2190863625,
		0.2692667193, 0.2955242247, 0.2955242247,
		0.2692667193, 0.2190863625, 0.1494513492, 0.0666713443,
	}
	sum := 0.0
	mid := (a + b) / 2
	half := (b - a) / 2
	for i, t := range nodes {
		xi := mid + half*t
		v, ok := expr.Sub(varName, NFloat(xi)).Eval()
		if !ok {
			return 0, false
		}
		f, _ := v.val.Float64()
		sum += weights[i] * f
	}
	r := half * sum
	return r, !math.IsNaN(r) && !math.IsInf(r, 0)
}

// ============================================================
// Taylor series
// ============================================================

func TaylorSeries(expr Expr, varName string, a Expr, order int) Expr {
	terms := []Expr{}
	current := expr
	factorial := N(1)
	for k := 0; k <= order; k++ {
		if k > 0 {
			factorial = numMul(factorial, N(int64(k)))
		}
		coeff := MulOf(current.Sub(varName, a), PowOf(factorial, N(-1)))
		if n, ok := coeff.(*Num); ok && n.IsZero() {
			current = Diff(current, varName)
			continue
		}
		var xTerm Expr
		switch k {
		case 0:
			xTerm = coeff
		case 1:
			xTerm = MulOf(coeff, AddOf(S(varName), MulOf(N(-1), a)))
		default:
			xTerm = MulOf(coeff, PowOf(AddOf(S(varName), MulOf(N(-1), a)), N(int64(k))))
		}
		terms = append(terms, xTerm)
		current = Diff(current, varName)
	}
	return AddOf(terms...)
}
