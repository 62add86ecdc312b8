package symbolic

import (
	"fmt"
	"strconv"
)

// ============================================================
// Equation
// ============================================================

type Equation struct{ LHS, RHS Expr }

func Eq(lhs, rhs Expr) *Equation { return &Equation{LHS: lhs, RHS: rhs} }

func (e *Equation) Simplify() Expr { return &Equation{LHS: e.LHS.Simplify(), RHS: e.RHS.Simplify()} }
func (e *Equation) String() string { return e.LHS.String() + " = " + e.RHS.String() }
func (e *Equation) LaTeX() string  { return e.LHS.LaTeX() + " = " + e.RHS.LaTeX() }
func (e *Equation) Sub(varName string, value Expr) Expr {
	return &Equation{LHS: e.LHS.Sub(varName, value), RHS: e.RHS.Sub(varName, value)}
}
func (e *Equation) Diff(varName string) Expr {
	return &Equation{LHS: e.LHS.Diff(varName), RHS: e.RHS.Diff(varName)}
}
func (e *Equation) Eval() (*Num, bool) { return nil, false }
func (e *Equation) Equal(other Expr) bool {
	o, ok := other.(*Equation)
	return ok && e.LHS.Equal(o.LHS) && e.RHS.Equal(o.RHS)
}
func (e *Equation) exprType() string      { return "equation" }
func (e *Equation) children() []Expr      { return []Expr{e.LHS, e.RHS} }
func (e *Equation) rebuild(c []Expr) Expr { return &Equation{LHS: c[0], RHS: c[1]} }
func (e *Equation) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "equation", "lhs": e.LHS.toJSON(), "rhs": e.RHS.toJSON()}
}

// Residual returns LHS - RHS.
func (e *Equation) Residual() Expr {
	return AddOf(e.LHS, MulOf(N(-1), e.RHS))
}

// ============================================================
// Derivative: deferred d^n/dx^n
// ============================================================

// Derivative stays unevaluated until Force.
type Derivative struct {
	expr    Expr
	varName string
	order   int
}

func NewDerivative(expr Expr, varName string, order int) *Derivative {
	if order < 1 {
		order = 1
	}
	return &Derivative{expr: expr, varName: varName, order: order}
}

func (d *Derivative) Simplify() Expr {
	return &Derivative{expr: d.expr.Simplify(), varName: d.varName, order: d.order}
}
func (d *Derivative) String() string {
	return fmt.Sprintf("Derivative(%s, %s, %d)", d.expr.String(), d.varName, d.order)
}
func (d *Derivative) LaTeX() string {
	v := S(d.varName).LaTeX()
	if d.order == 1 {
		return "\\frac{d}{d" + v + "}\\left(" + d.expr.LaTeX() + "\\right)"
	}
	n := strconv.Itoa(d.order)
	return "\\frac{d^{" + n + "}}{d" + v + "^{" + n + "}}\\left(" + d.expr.LaTeX() + "\\right)"
}
func (d *Derivative) Sub(varName string, value Expr) Expr {
	if varName == d.varName {
		return d
	}
	return &Derivative{expr: d.expr.Sub(varName, value), varName: d.varName, order: d.order}
}
func (d *Derivative) Diff(varName string) Expr { return NewDerivative(d, varName, 1) }
func (d *Derivative) Eval() (*Num, bool)       { return nil, false }
func (d *Derivative) Equal(other Expr) bool {
	o, ok := other.(*Derivative)
	return ok && d.varName == o.varName && d.order == o.order && d.expr.Equal(o.expr)
}
func (d *Derivative) exprType() string { return "derivative" }
func (d *Derivative) children() []Expr { return []Expr{d.expr} }
func (d *Derivative) rebuild(c []Expr) Expr {
	return &Derivative{expr: c[0], varName: d.varName, order: d.order}
}
func (d *Derivative) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "derivative", "expr": d.expr.toJSON(), "var": d.varName, "order": d.order}
}

// ============================================================
// Integral: deferred indefinite or definite integral
// ============================================================

type Integral struct {
	expr         Expr
	varName      string
	lower, upper Expr
}

// NewIntegral builds an integral node; lower and upper are both nil for an
// indefinite integral.
func NewIntegral(expr Expr, varName string, lower, upper Expr) *Integral {
	return &Integral{expr: expr, varName: varName, lower: lower, upper: upper}
}

func (g *Integral) definite() bool { return g.lower != nil && g.upper != nil }

func (g *Integral) Simplify() Expr {
	return g.rebuild(simplifyAll(g.children()))
}
func (g *Integral) String() string {
	if g.definite() {
		return fmt.Sprintf("Integral(%s, (%s, %s, %s))", g.expr.String(), g.varName, g.lower.String(), g.upper.String())
	}
	return fmt.Sprintf("Integral(%s, %s)", g.expr.String(), g.varName)
}
func (g *Integral) LaTeX() string {
	head := "\\int "
	if g.definite() {
		head = "\\int_{" + g.lower.LaTeX() + "}^{" + g.upper.LaTeX() + "} "
	}
	return head + factorLaTeX(g.expr) + "\\, d" + S(g.varName).LaTeX()
}
func (g *Integral) Sub(varName string, value Expr) Expr {
	c := g.children()
	for i := range c {
		if i == 0 && varName == g.varName {
			continue
		}
		c[i] = c[i].Sub(varName, value)
	}
	return g.rebuild(c)
}
func (g *Integral) Diff(varName string) Expr { return NewDerivative(g, varName, 1) }
func (g *Integral) Eval() (*Num, bool)       { return nil, false }
func (g *Integral) Equal(other Expr) bool {
	o, ok := other.(*Integral)
	return ok && g.varName == o.varName && g.definite() == o.definite() && equalAll(g.children(), o.children())
}
func (g *Integral) exprType() string { return "integral" }
func (g *Integral) children() []Expr {
	if g.definite() {
		return []Expr{g.expr, g.lower, g.upper}
	}
	return []Expr{g.expr}
}
func (g *Integral) rebuild(c []Expr) Expr {
	if len(c) == 3 {
		return &Integral{expr: c[0], varName: g.varName, lower: c[1], upper: c[2]}
	}
	return &Integral{expr: c[0], varName: g.varName}
}
func (g *Integral) toJSON() map[string]interface{} {
	out := map[string]interface{}{"type": "integral", "expr": g.expr.toJSON(), "var": g.varName}
	if g.definite() {
		out["lower"] = g.lower.toJSON()
		out["upper"] = g.upper.toJSON()
	}
	return out
}

// ============================================================
// Lim: deferred limit
// ============================================================

type Lim struct {
	expr    Expr
	varName string
	point   Expr
}

func NewLimit(expr Expr, varName string, point Expr) *Lim {
	return &Lim{expr: expr, varName: varName, point: point}
}

func (l *Lim) Simplify() Expr { return l.rebuild(simplifyAll(l.children())) }
func (l *Lim) String() string {
	return fmt.Sprintf("Limit(%s, %s, %s)", l.expr.String(), l.varName, l.point.String())
}
func (l *Lim) LaTeX() string {
	return "\\lim_{" + S(l.varName).LaTeX() + " \\to " + l.point.LaTeX() + "} " + factorLaTeX(l.expr)
}
func (l *Lim) Sub(varName string, value Expr) Expr {
	if varName == l.varName {
		return &Lim{expr: l.expr, varName: l.varName, point: l.point.Sub(varName, value)}
	}
	return l.rebuild([]Expr{l.expr.Sub(varName, value), l.point.Sub(varName, value)})
}
func (l *Lim) Diff(varName string) Expr { return NewDerivative(l, varName, 1) }
func (l *Lim) Eval() (*Num, bool)       { return nil, false }
func (l *Lim) Equal(other Expr) bool {
	o, ok := other.(*Lim)
	return ok && l.varName == o.varName && l.expr.Equal(o.expr) && l.point.Equal(o.point)
}
func (l *Lim) exprType() string      { return "limit" }
func (l *Lim) children() []Expr      { return []Expr{l.expr, l.point} }
func (l *Lim) rebuild(c []Expr) Expr { return &Lim{expr: c[0], varName: l.varName, point: c[1]} }
func (l *Lim) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "limit", "expr": l.expr.toJSON(), "var": l.varName, "point": l.point.toJSON()}
}

// ============================================================
// Series: deferred finite sum or product
// ============================================================

type Series struct {
	product      bool
	body         Expr
	varName      string
	lower, upper Expr
}

func NewSum(body Expr, varName string, lower, upper Expr) *Series {
	return &Series{body: body, varName: varName, lower: lower, upper: upper}
}

func NewProduct(body Expr, varName string, lower, upper Expr) *Series {
	return &Series{product: true, body: body, varName: varName, lower: lower, upper: upper}
}

func (s *Series) kind() string {
	if s.product {
		return "prod"
	}
	return "sum"
}

func (s *Series) Simplify() Expr { return s.rebuild(simplifyAll(s.children())) }
func (s *Series) String() string {
	return fmt.Sprintf("%s(%s, (%s, %s, %s))", s.kind(), s.body.String(), s.varName, s.lower.String(), s.upper.String())
}
func (s *Series) LaTeX() string {
	return "\\" + s.kind() + "_{" + S(s.varName).LaTeX() + "=" + s.lower.LaTeX() + "}^{" + s.upper.LaTeX() + "} " + factorLaTeX(s.body)
}
func (s *Series) Sub(varName string, value Expr) Expr {
	body := s.body
	if varName != s.varName {
		body = body.Sub(varName, value)
	}
	return s.rebuild([]Expr{body, s.lower.Sub(varName, value), s.upper.Sub(varName, value)})
}
func (s *Series) Diff(varName string) Expr { return NewDerivative(s, varName, 1) }
func (s *Series) Eval() (*Num, bool)       { return nil, false }
func (s *Series) Equal(other Expr) bool {
	o, ok := other.(*Series)
	return ok && s.product == o.product && s.varName == o.varName && equalAll(s.children(), o.children())
}
func (s *Series) exprType() string { return s.kind() }
func (s *Series) children() []Expr { return []Expr{s.body, s.lower, s.upper} }
func (s *Series) rebuild(c []Expr) Expr {
	return &Series{product: s.product, body: c[0], varName: s.varName, lower: c[1], upper: c[2]}
}
func (s *Series) toJSON() map[string]interface{} {
	return map[string]interface{}{
		"type": s.kind(), "body": s.body.toJSON(), "var": s.varName,
		"lower": s.lower.toJSON(), "upper": s.upper.toJSON(),
	}
}

// ============================================================
// MatrixFunc: deferred det / trace
// ============================================================

type MatrixFunc struct {
	name string
	arg  Expr
}

// NewMatrixFunc builds a deferred "det" or "tr" application.
func NewMatrixFunc(name string, arg Expr) *MatrixFunc { return &MatrixFunc{name: name, arg: arg} }

func (f *MatrixFunc) Simplify() Expr { return &MatrixFunc{name: f.name, arg: f.arg.Simplify()} }
func (f *MatrixFunc) String() string { return f.name + "(" + f.arg.String() + ")" }
func (f *MatrixFunc) LaTeX() string {
	if f.name == "det" {
		return "\\det\\left(" + f.arg.LaTeX() + "\\right)"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}
func (f *MatrixFunc) Sub(varName string, value Expr) Expr {
	return &MatrixFunc{name: f.name, arg: f.arg.Sub(varName, value)}
}
func (f *MatrixFunc) Diff(varName string) Expr { return NewDerivative(f, varName, 1) }
func (f *MatrixFunc) Eval() (*Num, bool)       { return nil, false }
func (f *MatrixFunc) Equal(other Expr) bool {
	o, ok := other.(*MatrixFunc)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}
func (f *MatrixFunc) exprType() string      { return "matrixfunc" }
func (f *MatrixFunc) children() []Expr      { return []Expr{f.arg} }
func (f *MatrixFunc) rebuild(c []Expr) Expr { return &MatrixFunc{name: f.name, arg: c[0]} }
func (f *MatrixFunc) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "matrixfunc", "name": f.name, "arg": f.arg.toJSON()}
}

func simplifyAll(es []Expr) []Expr {
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = e.Simplify()
	}
	return out
}
