package symbolic

import "fmt"

// ============================================================
// Deep Simplification and Trig Identities
// ============================================================

// TrigSimplify applies trig identities: sin²+cos²=1, exp(ln(x))=x, ln(exp(x))=x.
func TrigSimplify(e Expr) Expr {
	return trigSimplifyExpr(e.Simplify()).Simplify()
}

func trigSimplifyExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = trigSimplifyExpr(t)
		}
		return trigFindPythagorean(AddOf(newTerms...))
	case *Mul:
		newFactors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			newFactors[i] = trigSimplifyExpr(f)
		}
		return MulOf(newFactors...)
	case *Pow:
		return PowOf(trigSimplifyExpr(v.base), v.exp)
	case *Func:
		return funcOf(v.name, trigSimplifyExpr(v.arg)).Simplify()
	case *Matrix:
		return v.each(trigSimplifyExpr)
	}
	return e
}

func trigFindPythagorean(e Expr) Expr {
	add, ok := e.(*Add)
	if !ok {
		return e
	}
	type trigTerm struct {
		funcName string
		argStr   string
		coeff    *Num
		idx      int
	}
	var trigTerms []trigTerm
	for idx, t := range add.terms {
		coeff, inner := extractCoefficient(t)
		if p, ok2 := inner.(*Pow); ok2 {
			if fn, ok3 := p.base.(*Func); ok3 && isNumEqual(p.exp, 2) {
				if fn.name == "sin" || fn.name == "cos" {
					trigTerms = append(trigTerms, trigTerm{fn.name, fn.arg.String(), coeff, idx})
				}
			}
		}
	}
	for i := 0; i < len(trigTerms); i++ {
		for j := i + 1; j < len(trigTerms); j++ {
			ti, tj := trigTerms[i], trigTerms[j]
			if ti.argStr == tj.argStr && ti.funcName != tj.funcName && numCmp(ti.coeff, tj.coeff) == 0 {
				newTerms := []Expr{}
				for idx, t := range add.terms {
					if idx != ti.idx && idx != tj.idx {
						newTerms = append(newTerms, t)
					}
				}
				newTerms = append(newTerms, ti.coeff)
				return AddOf(newTerms...)
			}
		}
	}
	return e
}

// DeepSimplify applies repeated simplification+trig passes until stable.
func DeepSimplify(e Expr) Expr {
	prev := ""
	curr := e.Simplify()
	for i := 0; i < 10; i++ {
		str := curr.String()
		if str == prev {
			break
		}
		prev = str
		curr = TrigSimplify(curr).Simplify()
	}
	return curr
}

// SimplifyFull is the canonical reduction used for exact results: the deep
// simplification of e or of its expansion, whichever has fewer nodes.
func SimplifyFull(e Expr) Expr {
	if m, ok := e.(*Matrix); ok {
		return m.each(SimplifyFull)
	}
	if eq, ok := e.(*Equation); ok {
		return &Equation{LHS: SimplifyFull(eq.LHS), RHS: SimplifyFull(eq.RHS)}
	}
	plain := DeepSimplify(e)
	expanded := DeepSimplify(Expand(plain))
	if countNodes(expanded) < countNodes(plain) {
		return expanded
	}
	return plain
}

func countNodes(e Expr) int {
	n := 1
	for _, c := range e.children() {
		n += countNodes(c)
	}
	return n
}

// ============================================================
// Expansion
// ============================================================

func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			if a, ok := f.(*Add); ok {
				rest := make([]Expr, 0, len(expanded)-1)
				for j, ef := range expanded {
					if j != i {
						rest = append(rest, ef)
					}
				}
				terms := make([]Expr, len(a.terms))
				for k, t := range a.terms {
					terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
				}
				return expandExpr(AddOf(terms...))
			}
		}
		return MulOf(expanded...)
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		base := expandExpr(v.base)
		if _, ok := base.(*Add); ok {
			if n, ok := v.exp.(*Num); ok {
				if exp, ok := n.Int64(); ok && exp >= 2 && exp <= 10 {
					result := base
					for i := int64(1); i < exp; i++ {
						result = distribute(result, base)
					}
					return result
				}
			}
		}
		return PowOf(base, expandExpr(v.exp))
	}
	return e
}

// distribute multiplies two already expanded expressions term by term.
// Products are built with MulOf only, so a power of a non-sum is never
// expanded again.
func distribute(a, b Expr) Expr {
	left, right := sumTerms(a), sumTerms(b)
	terms := make([]Expr, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			terms = append(terms, MulOf(l, r))
		}
	}
	return AddOf(terms...)
}

func sumTerms(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// ============================================================
// Definedness
// ============================================================

// CheckDefined rejects trees that still contain a reciprocal of zero or a
// logarithm of zero after simplification.
func CheckDefined(e Expr) error {
	switch v := e.(type) {
	case *Pow:
		if isUndefinedPow(v) {
			return fmt.Errorf("%w: %s", ErrDivisionByZero, v.String())
		}
	case *Func:
		if v.name == "ln" && isNumEqual(v.arg, 0) {
			return fmt.Errorf("%w: %s", ErrDomain, v.String())
		}
	}
	for _, c := range e.children() {
		if err := CheckDefined(c); err != nil {
			return err
		}
	}
	return nil
}

func isUndefinedPow(p *Pow) bool {
	b, ok1 := p.base.(*Num)
	x, ok2 := p.exp.(*Num)
	return ok1 && ok2 && b.IsZero() && x.IsNegative()
}

func anyUndefined(es []Expr) bool {
	for _, e := range es {
		if CheckDefined(e) != nil {
			return true
		}
	}
	return false
}
