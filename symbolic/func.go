package symbolic

import (
	"math"
	"math/big"
)

// ============================================================
// Func: named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

var knownFuncs = map[string]bool{
	"sin": true, "cos": true, "tan": true, "asin": true, "acos": true, "atan": true,
	"sinh": true, "cosh": true, "tanh": true, "exp": true, "ln": true, "abs": true,
	"floor": true, "ceil": true, "sign": true, "factorial": true,
}

// IsFunction reports whether name is a function the engine knows.
func IsFunction(name string) bool { return knownFuncs[name] }

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

// NewFunc builds an unsimplified application of a known function.
func NewFunc(name string, arg Expr) *Func { return funcOf(name, arg) }

func SinOf(arg Expr) Expr       { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr       { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr       { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr       { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr        { return funcOf("ln", arg).Simplify() }
func SqrtOf(arg Expr) Expr      { return PowOf(arg, F(1, 2)) }
func AbsOf(arg Expr) Expr       { return funcOf("abs", arg).Simplify() }
func AsinOf(arg Expr) Expr      { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr      { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr      { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr      { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr      { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr      { return funcOf("tanh", arg).Simplify() }
func SignOf(arg Expr) Expr      { return funcOf("sign", arg).Simplify() }
func FactorialOf(arg Expr) Expr { return funcOf("factorial", arg).Simplify() }

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if n, ok := arg.(*Num); ok {
		if v, ok := exactFuncValue(f.name, n); ok {
			return v
		}
	}
	if k, ok := piMultiple(arg); ok {
		if v, ok := trigAtPiMultiple(f.name, k); ok {
			return v
		}
	}
	switch f.name {
	case "sin", "tan", "asin", "atan", "sinh", "tanh":
		if pos, ok := negated(arg); ok {
			return MulOf(N(-1), funcOf(f.name, pos).Simplify())
		}
	case "cos", "cosh":
		if pos, ok := negated(arg); ok {
			return funcOf(f.name, pos).Simplify()
		}
	case "ln":
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
		if c, ok := arg.(*Const); ok && c.name == "e" {
			return N(1)
		}
	case "exp":
		if inner, ok := arg.(*Func); ok && inner.name == "ln" {
			return inner.arg
		}
		if n, ok := arg.(*Num); ok && n.IsOne() {
			return E
		}
	case "abs":
		if _, ok := arg.(*Const); ok {
			return arg
		}
		if pos, ok := negated(arg); ok {
			return AbsOf(pos)
		}
	}
	return &Func{name: f.name, arg: arg}
}

// negated returns -e when e carries a negative numeric sign.
func negated(e Expr) (Expr, bool) {
	switch v := e.(type) {
	case *Num:
		if v.IsNegative() {
			return numNeg(v), true
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			rest := append([]Expr{numNeg(c)}, v.factors[1:]...)
			return MulOf(rest...), true
		}
	}
	return nil, false
}

// exactFuncValue evaluates f(n) when the result is exactly representable.
func exactFuncValue(name string, n *Num) (Expr, bool) {
	switch name {
	case "abs":
		return numAbs(n), true
	case "sign":
		return N(int64(n.val.Sign())), true
	case "floor":
		return numFloor(n), true
	case "ceil":
		return numNeg(numFloor(numNeg(n))), true
	case "factorial":
		if v, ok := n.Int64(); ok && v >= 0 && v <= 1000 {
			if v == 0 {
				return N(1), true
			}
			return &Num{val: new(big.Rat).SetInt(new(big.Int).MulRange(1, v))}, true
		}
	case "exp":
		if n.IsZero() {
			return N(1), true
		}
	case "ln":
		if n.IsOne() {
			return N(0), true
		}
	case "sin", "tan", "asin", "atan", "sinh", "tanh":
		if n.IsZero() {
			return N(0), true
		}
		if name == "asin" && n.IsOne() {
			return MulOf(F(1, 2), Pi), true
		}
		if name == "atan" && n.IsOne() {
			return MulOf(F(1, 4), Pi), true
		}
	case "cos", "cosh":
		if n.IsZero() {
			return N(1), true
		}
	case "acos":
		if n.IsOne() {
			return N(0), true
		}
		if n.IsZero() {
			return MulOf(F(1, 2), Pi), true
		}
	}
	return nil, false
}

func piMultiple(e Expr) (*big.Rat, bool) {
	switch v := e.(type) {
	case *Const:
		if v.name == "pi" {
			return big.NewRat(1, 1), true
		}
	case *Mul:
		if len(v.factors) == 2 {
			c, ok1 := v.factors[0].(*Num)
			k, ok2 := v.factors[1].(*Const)
			if ok1 && ok2 && k.name == "pi" {
				return c.Rat(), true
			}
		}
	}
	return nil, false
}

func trigAtPiMultiple(name string, k *big.Rat) (Expr, bool) {
	switch name {
	case "sin":
		return sinPiMultiple(k)
	case "cos":
		return sinPiMultiple(new(big.Rat).Add(k, big.NewRat(1, 2)))
	case "tan":
		s, ok1 := sinPiMultiple(k)
		c, ok2 := sinPiMultiple(new(big.Rat).Add(k, big.NewRat(1, 2)))
		if !ok1 || !ok2 || isNumEqual(c, 0) {
			return nil, false
		}
		return MulOf(s, PowOf(c, N(-1))), true
	}
	return nil, false
}

// sinPiMultiple evaluates sin(k*pi) for k on the sixths and quarters of a turn.
func sinPiMultiple(k *big.Rat) (Expr, bool) {
	r := new(big.Rat).Set(k)
	half := numFloor(&Num{val: new(big.Rat).Quo(r, big.NewRat(2, 1))})
	r.Sub(r, new(big.Rat).Mul(half.val, big.NewRat(2, 1)))
	sign := int64(1)
	if r.Cmp(big.NewRat(1, 1)) >= 0 {
		r.Sub(r, big.NewRat(1, 1))
		sign = -1
	}
	if r.Cmp(big.NewRat(1, 2)) > 0 {
		r.Sub(big.NewRat(1, 1), r)
	}
	var v Expr
	switch r.RatString() {
	case "0":
		v = N(0)
	case "1/6":
		v = F(1, 2)
	case "1/4":
		v = MulOf(F(1, 2), SqrtOf(N(2)))
	case "1/3":
		v = MulOf(F(1, 2), SqrtOf(N(3)))
	case "1/2":
		v = N(1)
	default:
		return nil, false
	}
	return MulOf(N(sign), v), true
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

// command is the LaTeX operator name for functions written as \name(arg).
func (f *Func) command() (string, bool) {
	switch f.name {
	case "sin", "cos", "tan", "ln", "sinh", "cosh", "tanh":
		return "\\" + f.name, true
	case "asin":
		return "\\arcsin", true
	case "acos":
		return "\\arccos", true
	case "atan":
		return "\\arctan", true
	}
	return "", false
}

func (f *Func) LaTeX() string {
	if cmd, ok := f.command(); ok {
		return cmd + "\\left(" + f.arg.LaTeX() + "\\right)"
	}
	switch f.name {
	case "exp":
		return "e^{" + f.arg.LaTeX() + "}"
	case "abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	case "floor":
		return "\\lfloor " + f.arg.LaTeX() + " \\rfloor"
	case "ceil":
		return "\\lceil " + f.arg.LaTeX() + " \\rceil"
	case "factorial":
		switch a := f.arg.(type) {
		case *Sym, *Const:
			return a.LaTeX() + "!"
		case *Num:
			if a.IsInteger() && !a.IsNegative() {
				return a.LaTeX() + "!"
			}
		}
		return "\\left(" + f.arg.LaTeX() + "\\right)!"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(f.arg)
	case "cos":
		outer = MulOf(N(-1), SinOf(f.arg))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(f.arg), N(2)))
	case "exp":
		outer = ExpOf(f.arg)
	case "ln":
		outer = PowOf(f.arg, N(-1))
	case "asin":
		outer = PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2))
	case "acos":
		outer = MulOf(N(-1), PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(f.arg, N(2))), N(-1))
	case "sinh":
		outer = CoshOf(f.arg)
	case "cosh":
		outer = SinhOf(f.arg)
	case "tanh":
		outer = AddOf(N(1), MulOf(N(-1), PowOf(TanhOf(f.arg), N(2))))
	case "abs":
		outer = SignOf(f.arg)
	case "floor", "ceil", "sign":
		return N(0)
	default:
		return MulOf(funcOf("D["+f.name+"]", f.arg), du)
	}
	return MulOf(outer, du).Simplify()
}

func (f *Func) Eval() (*Num, bool) {
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	if v, ok := exactFuncValue(f.name, n); ok {
		if num, ok := v.(*Num); ok {
			return num, true
		}
	}
	v, _ := n.val.Float64()
	switch f.name {
	case "sin":
		return finite(math.Sin(v))
	case "cos":
		return finite(math.Cos(v))
	case "tan":
		return finite(math.Tan(v))
	case "exp":
		return finite(math.Exp(v))
	case "ln":
		return finite(math.Log(v))
	case "asin":
		return finite(math.Asin(v))
	case "acos":
		return finite(math.Acos(v))
	case "atan":
		return finite(math.Atan(v))
	case "sinh":
		return finite(math.Sinh(v))
	case "cosh":
		return finite(math.Cosh(v))
	case "tanh":
		return finite(math.Tanh(v))
	case "factorial":
		return finite(math.Gamma(v + 1))
	}
	return nil, false
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) exprType() string      { return "func" }
func (f *Func) children() []Expr      { return []Expr{f.arg} }
func (f *Func) rebuild(c []Expr) Expr { return &Func{name: f.name, arg: c[0]} }
func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}
func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}
