package symbolic

import (
	"fmt"
	"strings"
	"unicode"
)

// ============================================================
// Generic infix constructor
// ============================================================

// Parse reads a plain infix expression such as "2*x^2 + sin(x)/3" into an
// unsimplified tree. Identifiers found in bindings resolve to the bound
// expression, "pi" and "E" to constants, known function names followed by
// "(" to applications and anything else to a symbol. Multiplication must be
// written explicitly.
func Parse(src string, bindings map[string]Expr) (Expr, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &infixParser{toks: toks, bindings: bindings}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, p.toks[p.pos].text)
	}
	return e, nil
}

type tokenKind int

const (
	tokNum tokenKind = iota
	tokIdent
	tokOp
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			j := i
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.') {
				j++
			}
			toks = append(toks, token{tokNum, string(rs[i:j])})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_') {
				j++
			}
			toks = append(toks, token{tokIdent, string(rs[i:j])})
			i = j
		case r == '*' && i+1 < len(rs) && rs[i+1] == '*':
			toks = append(toks, token{tokOp, "^"})
			i += 2
		case strings.ContainsRune("+-*/^(),", r):
			toks = append(toks, token{tokOp, string(r)})
			i++
		default:
			return nil, fmt.Errorf("%w: unexpected character %q", ErrSyntax, r)
		}
	}
	return toks, nil
}

type infixParser struct {
	toks     []token
	pos      int
	bindings map[string]Expr
}

func (p *infixParser) peekOp(op string) bool {
	return p.pos < len(p.toks) && p.toks[p.pos].kind == tokOp && p.toks[p.pos].text == op
}

func (p *infixParser) expect(op string) error {
	if !p.peekOp(op) {
		return fmt.Errorf("%w: expected %q", ErrSyntax, op)
	}
	p.pos++
	return nil
}

func (p *infixParser) parseExpr() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	terms := []Expr{left}
	for p.peekOp("+") || p.peekOp("-") {
		neg := p.peekOp("-")
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if neg {
			right = Neg(right)
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return left, nil
	}
	return NewAdd(terms...), nil
}

func (p *infixParser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peekOp("*") || p.peekOp("/") {
		div := p.peekOp("/")
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if div {
			left = Div(left, right)
		} else {
			left = NewMul(left, right)
		}
	}
	return left, nil
}

func (p *infixParser) parseUnary() (Expr, error) {
	switch {
	case p.peekOp("-"):
		p.pos++
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Neg(e), nil
	case p.peekOp("+"):
		p.pos++
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *infixParser) parsePower() (Expr, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.peekOp("^") {
		p.pos++
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return NewPow(base, exp), nil
	}
	return base, nil
}

func (p *infixParser) parseAtom() (Expr, error) {
	if p.pos >= len(p.toks) {
		return nil, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	}
	t := p.toks[p.pos]
	p.pos++
	switch t.kind {
	case tokNum:
		n, err := NFromString(t.text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return n, nil
	case tokIdent:
		if p.peekOp("(") {
			return p.parseCall(t.text)
		}
		if e, ok := p.bindings[t.text]; ok {
			return e, nil
		}
		switch t.text {
		case "pi":
			return Pi, nil
		case "E":
			return E, nil
		}
		return S(t.text), nil
	}
	if t.text == "(" {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return e, p.expect(")")
	}
	return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, t.text)
}

func (p *infixParser) parseCall(name string) (Expr, error) {
	p.pos++
	arg, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	switch name {
	case "sqrt":
		return NewPow(arg, F(1, 2)), nil
	case "log":
		return NewFunc("ln", arg), nil
	case "det", "tr":
		return NewMatrixFunc(name, arg), nil
	}
	if !IsFunction(name) {
		return nil, fmt.Errorf("%w: unknown function %q", ErrSyntax, name)
	}
	return NewFunc(name, arg), nil
}
