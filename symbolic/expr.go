// Package symbolic is the algebra engine behind latex-calc.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat)
//   - Deterministic simplification and stable output
//   - Deferred calculus and matrix operations, forced explicitly with Force
//   - LaTeX rendering that the latex package can read back
package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is a node of an expression tree. Trees are immutable: every
// operation returns a new tree.
type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
	children() []Expr
	rebuild(children []Expr) Expr
}

// ============================================================
// Num: exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}
func NFloat(f float64) *Num { return &Num{val: new(big.Rat).SetFloat64(f)} }
func NRat(r *big.Rat) *Num  { return &Num{val: new(big.Rat).Set(r)} }

// NFromString parses an integer or decimal literal ("12", "0.25") exactly.
func NFromString(s string) (*Num, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("symbolic: invalid number literal %q", s)
	}
	return &Num{val: r}, nil
}

func (n *Num) Simplify() Expr                 { return n }
func (n *Num) Sub(string, Expr) Expr          { return n }
func (n *Num) Diff(string) Expr               { return N(0) }
func (n *Num) Eval() (*Num, bool)             { return n, true }
func (n *Num) Equal(other Expr) bool          { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) exprType() string               { return "num" }
func (n *Num) children() []Expr               { return nil }
func (n *Num) rebuild([]Expr) Expr            { return n }
func (n *Num) Float64() float64               { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool                   { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool                    { return n.val.Cmp(new(big.Rat).SetInt64(1)) == 0 }
func (n *Num) IsNegOne() bool                 { return n.val.Cmp(new(big.Rat).SetInt64(-1)) == 0 }
func (n *Num) IsInteger() bool                { return n.val.IsInt() }
func (n *Num) Rat() *big.Rat                  { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool               { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool               { return n.val.Sign() < 0 }
func (n *Num) toJSON() map[string]interface{} { return map[string]interface{}{"type": "num", "value": n.String()} }

// Int64 reports the value as an int64 when it is an integer that fits.
func (n *Num) Int64() (int64, bool) {
	if !n.val.IsInt() || !n.val.Num().IsInt64() {
		return 0, false
	}
	return n.val.Num().Int64(), true
}

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numSub(a, b *Num) *Num { return &Num{val: new(big.Rat).Sub(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}
func numAbs(a *Num) *Num {
	r := new(big.Rat).Set(a.val)
	if r.Sign() < 0 {
		r.Neg(r)
	}
	return &Num{val: r}
}
func numCmp(a, b *Num) int { return a.val.Cmp(b.val) }

// numFloor returns the largest integer not greater than a.
func numFloor(a *Num) *Num {
	q := new(big.Int)
	q.DivMod(a.val.Num(), a.val.Denom(), new(big.Int))
	return &Num{val: new(big.Rat).SetInt(q)}
}

func numPowInt(base *Num, e int64) (*Num, bool) {
	if e < 0 {
		if base.IsZero() {
			return nil, false
		}
		base = numRecip(base)
		e = -e
	}
	x := big.NewInt(e)
	num := new(big.Int).Exp(base.val.Num(), x, nil)
	den := new(big.Int).Exp(base.val.Denom(), x, nil)
	return &Num{val: new(big.Rat).SetFrac(num, den)}, true
}

// finite wraps a float result, rejecting NaN and infinities.
func finite(f float64) (*Num, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return NFloat(f), true
}

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym              { return &Sym{name: name} }
func (s *Sym) Simplify() Expr         { return s }
func (s *Sym) String() string         { return s.name }
func (s *Sym) Eval() (*Num, bool)     { return nil, false }
func (s *Sym) Equal(other Expr) bool  { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string       { return "sym" }
func (s *Sym) children() []Expr       { return nil }
func (s *Sym) rebuild([]Expr) Expr    { return s }
func (s *Sym) Name() string           { return s.name }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}

func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}

func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

// LaTeX renders Greek names as commands, subscripts in braces and other
// multi-letter names upright.
func (s *Sym) LaTeX() string {
	base, sub, hasSub := strings.Cut(s.name, "_")
	out := latexName(base)
	if hasSub {
		out += "_{" + sub + "}"
	}
	return out
}

func latexName(name string) string {
	if IsGreek(name) {
		return "\\" + name
	}
	if len(name) > 1 {
		return "\\mathrm{" + name + "}"
	}
	return name
}

var greekLetters = map[string]bool{
	"alpha": true, "beta": true, "gamma": true, "delta": true, "epsilon": true,
	"varepsilon": true, "zeta": true, "eta": true, "theta": true, "vartheta": true,
	"iota": true, "kappa": true, "lambda": true, "mu": true, "nu": true, "xi": true,
	"rho": true, "varrho": true, "sigma": true, "varsigma": true, "tau": true,
	"upsilon": true, "phi": true, "varphi": true, "chi": true, "psi": true, "omega": true,
	"Gamma": true, "Delta": true, "Theta": true, "Lambda": true, "Xi": true, "Pi": true,
	"Sigma": true, "Upsilon": true, "Phi": true, "Psi": true, "Omega": true,
}

// IsGreek reports whether name is a Greek letter command name (without the
// backslash). Lowercase pi is a constant, not a symbol.
func IsGreek(name string) bool { return greekLetters[name] }

// ============================================================
// Const: named mathematical constants
// ============================================================

type Const struct{ name string }

var (
	Pi = &Const{name: "pi"}
	E  = &Const{name: "e"}
)

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Diff(string) Expr      { return N(0) }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }
func (c *Const) exprType() string      { return "const" }
func (c *Const) children() []Expr      { return nil }
func (c *Const) rebuild([]Expr) Expr   { return c }
func (c *Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "const", "name": c.name}
}

func (c *Const) LaTeX() string {
	if c.name == "pi" {
		return "\\pi"
	}
	return c.name
}

func (c *Const) Eval() (*Num, bool) {
	switch c.name {
	case "pi":
		return NFloat(math.Pi), true
	case "e":
		return NFloat(math.E), true
	}
	return nil, false
}
