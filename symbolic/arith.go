package symbolic

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// maxExactPower bounds integer exponents that are computed exactly.
const maxExactPower = 1024

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// NewAdd builds a sum node as written, without simplifying it.
func NewAdd(terms ...Expr) *Add { return &Add{terms: terms} }

// Simplify flattens nested sums, folds numbers and combines like terms.
// Terms are ordered by descending degree, then by their printed form, with
// the numeric constant last.
func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	type likeTerms struct {
		base   Expr
		key    string
		coeff  *Num
		degree int
	}
	numAccum := N(0)
	groups := map[string]*likeTerms{}
	var order []*likeTerms
	for _, t := range flat {
		if v, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, v)
			continue
		}
		coeff, rest := extractCoefficient(t)
		key := rest.String()
		g, seen := groups[key]
		if !seen {
			g = &likeTerms{base: rest, key: key, coeff: N(0), degree: termDegree(rest)}
			groups[key] = g
			order = append(order, g)
		}
		g.coeff = numAdd(g.coeff, coeff)
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].degree != order[j].degree {
			return order[i].degree > order[j].degree
		}
		return order[i].key < order[j].key
	})

	result := []Expr{}
	for _, g := range order {
		switch {
		case g.coeff.IsZero():
		case g.coeff.IsOne():
			result = append(result, g.base)
		default:
			result = append(result, MulOf(g.coeff, g.base))
		}
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

// termDegree is the total polynomial degree of a monomial, used for ordering.
func termDegree(e Expr) int {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		if _, ok := v.base.(*Sym); ok {
			if n, ok := v.exp.(*Num); ok {
				if d, ok := n.Int64(); ok {
					return int(d)
				}
			}
		}
	case *Mul:
		total := 0
		for _, f := range v.factors {
			total += termDegree(f)
		}
		return total
	}
	return 0
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		s := t.LaTeX()
		switch {
		case i == 0:
			sb.WriteString(s)
		case strings.HasPrefix(s, "-"):
			sb.WriteString(" - ")
			sb.WriteString(s[1:])
		default:
			sb.WriteString(" + ")
			sb.WriteString(s)
		}
	}
	return sb.String()
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	return ok && equalAll(a.terms, o.terms)
}

func (a *Add) exprType() string      { return "add" }
func (a *Add) children() []Expr      { return a.terms }
func (a *Add) rebuild(c []Expr) Expr { return &Add{terms: c} }
func (a *Add) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "add", "terms": jsonList(a.terms)}
}
func (a *Add) Terms() []Expr { return a.terms }

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// NewMul builds a product node in written order, without simplifying it.
// Order matters until matrices have been forced.
func NewMul(factors ...Expr) *Mul { return &Mul{factors: factors} }

// Neg returns -e as an unsimplified product.
func Neg(e Expr) *Mul { return &Mul{factors: []Expr{N(-1), e}} }

// Div returns a/b as an unsimplified product with a reciprocal.
func Div(a, b Expr) *Mul { return &Mul{factors: []Expr{a, &Pow{base: b, exp: N(-1)}}} }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	others := []Expr{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
		} else {
			others = append(others, f)
		}
	}
	if coeff.IsZero() {
		if anyUndefined(others) {
			return &Mul{factors: append([]Expr{coeff}, others...)}
		}
		return N(0)
	}
	if containsMatrix(others) {
		return buildMul(coeff, others)
	}
	others, coeff = combinePowers(others, coeff)
	if coeff.IsZero() {
		return N(0)
	}

	// Precompute sort keys to avoid repeated String() calls in comparator.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	for i := range ks {
		others[i] = ks[i].e
	}

	if len(others) == 1 && !coeff.IsOne() {
		if sum, ok := others[0].(*Add); ok {
			terms := make([]Expr, len(sum.terms))
			for i, t := range sum.terms {
				terms[i] = MulOf(coeff, t)
			}
			return AddOf(terms...)
		}
	}
	return buildMul(coeff, others)
}

func buildMul(coeff *Num, others []Expr) Expr {
	if len(others) == 0 {
		return coeff
	}
	if coeff.IsOne() {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

// combinePowers merges factors sharing a base by adding their exponents.
// Numeric results are folded into the coefficient.
func combinePowers(factors []Expr, coeff *Num) ([]Expr, *Num) {
	type powers struct {
		base  Expr
		first Expr
		exps  []Expr
	}
	groups := map[string]*powers{}
	var order []*powers
	for _, f := range factors {
		base, exp := asPower(f)
		key := base.String()
		g, ok := groups[key]
		if !ok {
			g = &powers{base: base, first: f}
			groups[key] = g
			order = append(order, g)
		}
		g.exps = append(g.exps, exp)
	}
	out := make([]Expr, 0, len(order))
	for _, g := range order {
		p := g.first
		if len(g.exps) > 1 {
			p = PowOf(g.base, AddOf(g.exps...))
		}
		switch v := p.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Mul:
			for _, f := range v.factors {
				if n, ok := f.(*Num); ok {
					coeff = numMul(coeff, n)
				} else {
					out = append(out, f)
				}
			}
		default:
			out = append(out, p)
		}
	}
	return out, coeff
}

func asPower(e Expr) (Expr, Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}
	return e, N(1)
}

func containsMatrix(es []Expr) bool {
	for _, e := range es {
		if _, ok := e.(*Matrix); ok {
			return true
		}
	}
	return false
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		if _, isAdd := f.(*Add); isAdd {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, "*")
}

// LaTeX writes a product as a single fraction when any factor carries a
// negative exponent or the coefficient is not an integer.
func (m *Mul) LaTeX() string {
	coeff := N(1)
	var num, den []string
	for _, f := range m.factors {
		switch v := f.(type) {
		case *Num:
			coeff = numMul(coeff, v)
			continue
		case *Pow:
			if e, ok := v.exp.(*Num); ok && e.IsNegative() {
				den = append(den, powLaTeX(v.base, numNeg(e)))
				continue
			}
		}
		num = append(num, factorLaTeX(f))
	}
	sign := ""
	if coeff.IsNegative() {
		sign = "-"
		coeff = numNeg(coeff)
	}
	if p := coeff.val.Num(); p.Cmp(big.NewInt(1)) != 0 {
		num = append([]string{p.String()}, num...)
	}
	if q := coeff.val.Denom(); q.Cmp(big.NewInt(1)) != 0 {
		den = append([]string{q.String()}, den...)
	}
	numStr := strings.Join(num, " ")
	if numStr == "" {
		numStr = "1"
	}
	if len(den) == 0 {
		return sign + numStr
	}
	return sign + "\\frac{" + numStr + "}{" + strings.Join(den, " ") + "}"
}

func factorLaTeX(e Expr) string {
	switch e.(type) {
	case *Add, *Equation:
		return "\\left(" + e.LaTeX() + "\\right)"
	}
	return e.LaTeX()
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		if len(others) == 0 {
			terms[i] = dfi
		} else {
			terms[i] = MulOf(append([]Expr{dfi}, others...)...)
		}
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	return ok && equalAll(m.factors, o.factors)
}

func (m *Mul) exprType() string      { return "mul" }
func (m *Mul) children() []Expr      { return m.factors }
func (m *Mul) rebuild(c []Expr) Expr { return &Mul{factors: c} }
func (m *Mul) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "mul", "factors": jsonList(m.factors)}
}
func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

// NewPow builds a power node without simplifying it.
func NewPow(base, exp Expr) *Pow { return &Pow{base: base, exp: exp} }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()
	en, expIsNum := exp.(*Num)

	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}
	if _, ok := base.(*Matrix); ok {
		return &Pow{base: base, exp: exp}
	}

	if bn, ok := base.(*Num); ok {
		// 0^negative stays unevaluated so CheckDefined can reject it.
		if bn.IsZero() {
			if expIsNum && en.IsPositive() {
				return N(0)
			}
			return &Pow{base: base, exp: exp}
		}
		if bn.IsOne() {
			return N(1)
		}
		if expIsNum {
			if e, ok := en.Int64(); ok && e >= -maxExactPower && e <= maxExactPower {
				if r, ok := numPowInt(bn, e); ok {
					return r
				}
			}
			if !en.IsInteger() {
				if r, ok := rationalPower(bn, en); ok {
					return r
				}
			}
		}
	}
	if c, ok := base.(*Const); ok && c.name == "e" {
		return funcOf("exp", exp).Simplify()
	}
	if expIsNum && en.IsInteger() {
		switch b := base.(type) {
		case *Pow:
			return PowOf(b.base, MulOf(b.exp, exp))
		case *Mul:
			factors := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				factors[i] = PowOf(f, exp)
			}
			return MulOf(factors...)
		}
	}
	return &Pow{base: base, exp: exp}
}

// rationalPower evaluates base^(p/q) for a positive rational base, pulling
// perfect q-th powers out of the radical and clearing it from the
// denominator: 8^(1/2) = 2 sqrt(2), 2^(-1/2) = sqrt(2)/2.
func rationalPower(base, exp *Num) (Expr, bool) {
	p, q := exp.val.Num(), exp.val.Denom()
	if base.IsNegative() || !p.IsInt64() || !q.IsInt64() || q.Int64() > 64 {
		return nil, false
	}
	pe := p.Int64()
	if pe > maxExactPower || pe < -maxExactPower {
		return nil, false
	}
	qi := q.Int64()
	raised, ok := numPowInt(base, pe)
	if !ok {
		return nil, false
	}
	a, b := raised.val.Num(), raised.val.Denom()
	n := new(big.Int).Mul(a, new(big.Int).Exp(b, big.NewInt(qi-1), nil))
	if n.BitLen() > 96 {
		return nil, false
	}
	outside, inside := extractRoot(n, qi)
	coeff := &Num{val: new(big.Rat).SetFrac(outside, b)}
	if inside.Cmp(big.NewInt(1)) == 0 {
		return coeff, true
	}
	radical := &Pow{base: &Num{val: new(big.Rat).SetInt(inside)}, exp: F(1, qi)}
	if coeff.IsOne() {
		return radical, true
	}
	return &Mul{factors: []Expr{coeff, radical}}, true
}

// extractRoot splits n into outside^q * inside using trial division.
func extractRoot(n *big.Int, q int64) (outside, inside *big.Int) {
	outside, inside = big.NewInt(1), big.NewInt(1)
	rem := new(big.Int).Set(n)
	for d := int64(2); d <= 100000; d++ {
		bd := big.NewInt(d)
		if new(big.Int).Mul(bd, bd).Cmp(rem) > 0 {
			break
		}
		count := int64(0)
		for new(big.Int).Mod(rem, bd).Sign() == 0 {
			rem.Quo(rem, bd)
			count++
		}
		if count == 0 {
			continue
		}
		outside.Mul(outside, new(big.Int).Exp(bd, big.NewInt(count/q), nil))
		inside.Mul(inside, new(big.Int).Exp(bd, big.NewInt(count%q), nil))
	}
	inside.Mul(inside, rem)
	return outside, inside
}

func (p *Pow) String() string {
	baseStr := p.base.String()
	expStr := p.exp.String()
	switch p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "(" + baseStr + ")"
	}
	switch p.exp.(type) {
	case *Add, *Mul, *Pow:
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func (p *Pow) LaTeX() string {
	if e, ok := p.exp.(*Num); ok {
		if e.IsNegative() {
			return "\\frac{1}{" + powLaTeX(p.base, numNeg(e)) + "}"
		}
		return powLaTeX(p.base, e)
	}
	return baseLaTeX(p.base) + "^{" + p.exp.LaTeX() + "}"
}

// powLaTeX renders base^e for a positive rational e.
func powLaTeX(base Expr, e *Num) string {
	if e.IsOne() {
		return factorLaTeX(base)
	}
	if !e.IsInteger() && e.val.Num().Cmp(big.NewInt(1)) == 0 {
		root := e.val.Denom()
		if root.Cmp(big.NewInt(2)) == 0 {
			return "\\sqrt{" + base.LaTeX() + "}"
		}
		return "\\sqrt[" + root.String() + "]{" + base.LaTeX() + "}"
	}
	if f, ok := base.(*Func); ok && e.IsInteger() {
		if cmd, ok := f.command(); ok {
			return cmd + "^{" + e.LaTeX() + "}\\left(" + f.arg.LaTeX() + "\\right)"
		}
	}
	return baseLaTeX(base) + "^{" + e.LaTeX() + "}"
}

func baseLaTeX(base Expr) string {
	switch b := base.(type) {
	case *Sym, *Const:
		return b.LaTeX()
	case *Num:
		if b.IsInteger() && !b.IsNegative() {
			return b.LaTeX()
		}
	}
	return "\\left(" + base.LaTeX() + "\\right)"
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	if _, expIsNum := p.exp.(*Num); expIsNum {
		newExp := AddOf(p.exp, N(-1))
		return MulOf(p.exp, PowOf(p.base, newExp), du)
	}
	if _, baseIsNum := p.base.(*Num); baseIsNum {
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), dv)
	}
	logTerm := MulOf(dv, LnOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

// Eval is exact for integer exponents and falls back to float64 otherwise.
func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	if ei, ok := e.Int64(); ok && ei >= -maxExactPower && ei <= maxExactPower {
		return numPowInt(b, ei)
	}
	bf, _ := b.val.Float64()
	ef, _ := e.val.Float64()
	return finite(math.Pow(bf, ef))
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string      { return "pow" }
func (p *Pow) children() []Expr      { return []Expr{p.base, p.exp} }
func (p *Pow) rebuild(c []Expr) Expr { return &Pow{base: c[0], exp: c[1]} }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

func equalAll(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func jsonList(es []Expr) []map[string]interface{} {
	out := make([]map[string]interface{}, len(es))
	for i, e := range es {
		out[i] = e.toJSON()
	}
	return out
}
