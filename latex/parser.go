// Package latex parses LaTeX math fragments into symbolic expression trees.
//
// The parser is a hand-written recursive descent over the source bytes. It
// produces unsimplified trees: operand order is exactly as written, so matrix
// products and deferred operations survive until the caller forces them.
package latex

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/leo5358/latex-calc/symbolic"
)

// ErrSyntax is wrapped by every error the parser reports.
var ErrSyntax = errors.New("latex: syntax error")

// Parse parses a complete fragment. The optional symbols are opaque names
// (such as matrix placeholders) that are matched verbatim before ordinary
// letters.
func Parse(src string, symbols ...string) (symbolic.Expr, error) {
	p := NewParser(src, symbols...)
	e, err := p.ParseRelation()
	if err != nil {
		return nil, err
	}
	p.SkipSpaces()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q", p.Remaining())
	}
	return e, nil
}

type Parser struct {
	src      string
	pos      int
	symbols  []string
	absDepth int
	intDepth int
}

func NewParser(src string, symbols ...string) *Parser {
	sorted := append([]string(nil), symbols...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	return &Parser{src: src, symbols: sorted}
}

func (p *Parser) Pos() int          { return p.pos }
func (p *Parser) Remaining() string { return p.src[p.pos:] }

func (p *Parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w at %d: %s", ErrSyntax, p.pos, fmt.Sprintf(format, args...))
}

func (p *Parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *Parser) HasPrefix(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *Parser) Consume(s string) error {
	if !p.HasPrefix(s) {
		return p.errorf("expected %q", s)
	}
	p.pos += len(s)
	return nil
}

// peekCommand returns the name of the control sequence at the cursor, or "".
func (p *Parser) peekCommand() string {
	if p.peek() != '\\' || p.pos+1 >= len(p.src) {
		return ""
	}
	i := p.pos + 1
	if !isLetter(p.src[i]) {
		return p.src[i : i+1]
	}
	for i < len(p.src) && isLetter(p.src[i]) {
		i++
	}
	return p.src[p.pos+1 : i]
}

func (p *Parser) readCommand() string {
	name := p.peekCommand()
	p.pos += 1 + len(name)
	return name
}

func (p *Parser) atCommand(name string) bool {
	return p.peekCommand() == name
}

var spacingCommands = map[string]bool{
	",": true, ";": true, ":": true, "!": true, " ": true,
	"quad": true, "qquad": true, "displaystyle": true, "textstyle": true,
	"limits": true, "nolimits": true,
}

// SkipSpaces skips whitespace, ties and spacing commands.
func (p *Parser) SkipSpaces() {
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '~':
			p.pos++
		case c == '\\' && spacingCommands[p.peekCommand()]:
			p.readCommand()
		case p.HasPrefix("\u00a0"):
			p.pos += len("\u00a0")
		default:
			return
		}
	}
}

// ParseRelation parses an expression optionally followed by "= expression".
func (p *Parser) ParseRelation() (symbolic.Expr, error) {
	lhs, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	p.SkipSpaces()
	if p.peek() != '=' {
		return lhs, nil
	}
	p.pos++
	rhs, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	return symbolic.Eq(lhs, rhs), nil
}

// ParseExpr parses a sum of terms.
func (p *Parser) ParseExpr() (symbolic.Expr, error) {
	first, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	terms := []symbolic.Expr{first}
	for {
		p.SkipSpaces()
		neg := false
		switch {
		case p.peek() == '+':
			p.pos++
		case p.peek() == '-':
			p.pos++
			neg = true
		case p.HasPrefix("−"):
			p.pos += len("−")
			neg = true
		default:
			if len(terms) == 1 {
				return first, nil
			}
			return symbolic.NewAdd(terms...), nil
		}
		term, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		if neg {
			term = symbolic.Neg(term)
		}
		terms = append(terms, term)
	}
}

func (p *Parser) parseMul() (symbolic.Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		p.SkipSpaces()
		switch {
		case p.peek() == '*' || p.atCommand("cdot") || p.atCommand("times") || p.HasPrefix("×") || p.HasPrefix("·"):
			p.skipOperator()
			right, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			left = symbolic.NewMul(left, right)
		case p.peek() == '/' || p.atCommand("div") || p.HasPrefix("÷"):
			p.skipOperator()
			right, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			left = symbolic.Div(left, right)
		case p.canStartImplicitMul():
			right, err := p.parsePostfix()
			if err != nil {
				return nil, err
			}
			left = symbolic.NewMul(left, right)
		default:
			return left, nil
		}
	}
}

func (p *Parser) skipOperator() {
	switch c := p.peek(); {
	case c == '*' || c == '/':
		p.pos++
	case c == '\\':
		p.readCommand()
	default:
		for _, op := range []string{"×", "·", "÷"} {
			if p.HasPrefix(op) {
				p.pos += len(op)
				return
			}
		}
	}
}

func (p *Parser) canStartImplicitMul() bool {
	if p.pos >= len(p.src) {
		return false
	}
	if p.intDepth > 0 && p.atDifferential() {
		return false
	}
	if _, ok := p.matchSymbol(); ok {
		return true
	}
	c := p.src[p.pos]
	switch {
	case isDigit(c) || isLetter(c) || c == '(' || c == '[' || c == '{':
		return true
	case c == '|':
		return p.absDepth == 0
	case c == '\\':
		return startsPrimary(p.peekCommand())
	}
	return p.HasPrefix("π")
}

func (p *Parser) parseFactor() (symbolic.Expr, error) {
	p.SkipSpaces()
	switch {
	case p.peek() == '-':
		p.pos++
	case p.HasPrefix("−"):
		p.pos += len("−")
	case p.peek() == '+':
		p.pos++
		return p.parseFactor()
	default:
		return p.parsePostfix()
	}
	operand, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	return symbolic.Neg(operand), nil
}

func (p *Parser) parsePostfix() (symbolic.Expr, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		save := p.pos
		p.SkipSpaces()
		switch p.peek() {
		case '^':
			p.pos++
			exp, err := p.parseScript()
			if err != nil {
				return nil, err
			}
			node = symbolic.NewPow(node, exp)
		case '!':
			p.pos++
			node = symbolic.NewFunc("factorial", node)
		case '\\':
			if !p.atCommand("%") {
				p.pos = save
				return node, nil
			}
			p.readCommand()
			node = symbolic.NewMul(node, symbolic.F(1, 100))
		default:
			p.pos = save
			return node, nil
		}
	}
}

// parseScript parses the argument of ^ or a one-token macro argument: a
// braced group, a single digit, a single letter or a command.
func (p *Parser) parseScript() (symbolic.Expr, error) {
	p.SkipSpaces()
	if name, ok := p.matchSymbol(); ok {
		p.pos += len(name)
		return symbolic.S(name), nil
	}
	switch c := p.peek(); {
	case c == '{':
		return p.parseBraced()
	case isDigit(c):
		p.pos++
		return symbolic.N(int64(c - '0')), nil
	case isLetter(c):
		p.pos++
		return p.letter(string(c))
	case c == '-':
		p.pos++
		e, err := p.parseScript()
		if err != nil {
			return nil, err
		}
		return symbolic.Neg(e), nil
	case c == '\\':
		return p.parsePrimary()
	}
	return nil, p.errorf("missing argument")
}

func (p *Parser) parseBraced() (symbolic.Expr, error) {
	if err := p.Consume("{"); err != nil {
		return nil, err
	}
	e, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	p.SkipSpaces()
	if err := p.Consume("}"); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *Parser) matchSymbol() (string, bool) {
	for _, name := range p.symbols {
		if !p.HasPrefix(name) {
			continue
		}
		end := p.pos + len(name)
		if end < len(p.src) && isDigit(p.src[end]) {
			continue
		}
		return name, true
	}
	return "", false
}

func (p *Parser) parsePrimary() (symbolic.Expr, error) {
	p.SkipSpaces()
	if p.pos >= len(p.src) {
		return nil, p.errorf("unexpected end of input")
	}
	if name, ok := p.matchSymbol(); ok {
		p.pos += len(name)
		return symbolic.S(name), nil
	}
	c := p.src[p.pos]
	switch {
	case isDigit(c) || (c == '.' && p.pos+1 < len(p.src) && isDigit(p.src[p.pos+1])):
		return p.parseNumber()
	case isLetter(c):
		p.pos++
		return p.letter(string(c))
	case c == '(':
		return p.parseGroup("(", ")")
	case c == '[':
		return p.parseGroup("[", "]")
	case c == '{':
		return p.parseBraced()
	case c == '|':
		p.pos++
		p.absDepth++
		inner, err := p.ParseExpr()
		p.absDepth--
		if err != nil {
			return nil, err
		}
		p.SkipSpaces()
		if err := p.Consume("|"); err != nil {
			return nil, err
		}
		return symbolic.NewFunc("abs", inner), nil
	case c == '\\':
		return p.parseCommand()
	case p.HasPrefix("π"):
		p.pos += len("π")
		return symbolic.Pi, nil
	}
	return nil, p.errorf("unexpected %q", string(c))
}

func (p *Parser) parseNumber() (symbolic.Expr, error) {
	start := p.pos
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
	if p.peek() == '.' && p.pos+1 < len(p.src) && isDigit(p.src[p.pos+1]) {
		p.pos++
		for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			p.pos++
		}
	}
	n, err := symbolic.NFromString(p.src[start:p.pos])
	if err != nil {
		return nil, p.errorf("bad number %q", p.src[start:p.pos])
	}
	return n, nil
}

func (p *Parser) parseGroup(open, close string) (symbolic.Expr, error) {
	p.pos += len(open)
	inner, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	p.SkipSpaces()
	if err := p.Consume(close); err != nil {
		return nil, err
	}
	return inner, nil
}

// letter finishes a symbol whose base name has been consumed, attaching an
// optional subscript. A bare e is Euler's number.
func (p *Parser) letter(base string) (symbolic.Expr, error) {
	save := p.pos
	p.SkipSpaces()
	if p.peek() != '_' {
		p.pos = save
		if base == "e" {
			return symbolic.E, nil
		}
		return symbolic.S(base), nil
	}
	p.pos++
	sub, err := p.readArgRaw()
	if err != nil {
		return nil, err
	}
	sub = strings.Join(strings.Fields(sub), "")
	if sub == "" {
		return nil, p.errorf("empty subscript")
	}
	return symbolic.S(base + "_" + sub), nil
}

// readArgRaw returns the unparsed text of a macro argument.
func (p *Parser) readArgRaw() (string, error) {
	p.SkipSpaces()
	switch c := p.peek(); {
	case c == '{':
		return p.readBracedRaw()
	case c == '\\':
		return `\` + p.readCommand(), nil
	case c == 0 || c == '}':
		return "", p.errorf("missing argument")
	}
	p.pos++
	return p.src[p.pos-1 : p.pos], nil
}

func (p *Parser) readBracedRaw() (string, error) {
	if err := p.Consume("{"); err != nil {
		return "", err
	}
	start, depth := p.pos, 1
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\\':
			p.pos++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				text := p.src[start:p.pos]
				p.pos++
				return text, nil
			}
		}
		p.pos++
	}
	return "", p.errorf("unbalanced braces")
}

// sub parses a nested fragment with the same symbol table.
func (p *Parser) sub(text string) (symbolic.Expr, error) {
	e, err := Parse(text, p.symbols...)
	if err != nil {
		return nil, fmt.Errorf("in %q: %w", text, err)
	}
	return e, nil
}

func (p *Parser) parseCommand() (symbolic.Expr, error) {
	start := p.pos
	name := p.readCommand()
	switch name {
	case "left":
		return p.parseLeftRight()
	case "frac", "dfrac", "tfrac", "cfrac":
		return p.parseFrac()
	case "sqrt":
		return p.parseSqrt()
	case "binom", "dbinom", "tbinom":
		return p.parseBinom()
	case "pi":
		return symbolic.Pi, nil
	case "top", "intercal":
		return symbolic.S("T"), nil
	case "mathrm", "operatorname", "mathit", "mathsf", "mathbf", "text":
		raw, err := p.readArgRaw()
		if err != nil {
			return nil, err
		}
		return p.namedOperand(strings.Join(strings.Fields(raw), ""))
	case "lfloor":
		return p.parseDelimited("rfloor", "floor")
	case "lceil":
		return p.parseDelimited("rceil", "ceil")
	case "lvert":
		return p.parseDelimited("rvert", "abs")
	case "int":
		return p.parseIntegral()
	case "sum":
		return p.parseSeries(false)
	case "prod":
		return p.parseSeries(true)
	case "lim":
		return p.parseLimit()
	case "log":
		return p.parseLog()
	case "infty":
		return nil, p.errorf("infinity is not supported")
	case "begin":
		return nil, p.errorf("unexpected environment")
	}
	if symbolic.IsGreek(name) {
		return p.letter(name)
	}
	if fn, ok := functionCommands[name]; ok {
		return p.parseFunction(fn)
	}
	p.pos = start
	return nil, p.errorf("unsupported command \\%s", name)
}

func (p *Parser) namedOperand(name string) (symbolic.Expr, error) {
	switch {
	case name == "":
		return nil, p.errorf("empty name")
	case name == "e":
		return symbolic.E, nil
	case name == "T":
		return symbolic.S("T"), nil
	}
	if fn, ok := namedOperators[name]; ok {
		return p.parseFunction(fn)
	}
	return p.letter(name)
}

// parseFunction parses an optional power and the argument of a function
// whose name has been consumed. \sin^{-1} x is the inverse function.
func (p *Parser) parseFunction(name string) (symbolic.Expr, error) {
	var power symbolic.Expr
	p.SkipSpaces()
	if p.peek() == '^' {
		p.pos++
		e, err := p.parseScript()
		if err != nil {
			return nil, err
		}
		power = e
	}
	arg, err := p.parseFuncArg()
	if err != nil {
		return nil, err
	}
	if power != nil {
		if n, ok := power.Simplify().(*symbolic.Num); ok && n.IsNegOne() {
			if inv, ok := inverseFunctions[name]; ok {
				return symbolic.NewFunc(inv, arg), nil
			}
		}
		return symbolic.NewPow(applyFunction(name, arg), power), nil
	}
	return applyFunction(name, arg), nil
}

// parseFuncArg reads a delimited argument, or an undelimited run of
// implicitly multiplied operands that stops before the next function.
func (p *Parser) parseFuncArg() (symbolic.Expr, error) {
	p.SkipSpaces()
	if c := p.peek(); c == '(' || c == '[' || c == '{' || p.atCommand("left") {
		return p.parsePrimary()
	}
	arg, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for {
		save := p.pos
		p.SkipSpaces()
		if !p.canStartImplicitMul() || p.atFunction() {
			p.pos = save
			return arg, nil
		}
		right, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		arg = symbolic.NewMul(arg, right)
	}
}

func (p *Parser) atFunction() bool {
	name := p.peekCommand()
	if _, ok := functionCommands[name]; ok {
		return true
	}
	switch name {
	case "int", "sum", "prod", "lim", "frac", "dfrac", "tfrac":
		return true
	}
	return false
}

func (p *Parser) parseLog() (symbolic.Expr, error) {
	p.SkipSpaces()
	if p.peek() != '_' {
		return p.parseFunction("ln")
	}
	p.pos++
	base, err := p.parseScript()
	if err != nil {
		return nil, err
	}
	arg, err := p.parseFuncArg()
	if err != nil {
		return nil, err
	}
	return symbolic.Div(symbolic.NewFunc("ln", arg), symbolic.NewFunc("ln", base)), nil
}

func (p *Parser) readDelimiter() (string, error) {
	p.SkipSpaces()
	switch c := p.peek(); {
	case c == '\\':
		return p.readCommand(), nil
	case c == 0:
		return "", p.errorf("missing delimiter")
	}
	p.pos++
	return p.src[p.pos-1 : p.pos], nil
}

func (p *Parser) parseLeftRight() (symbolic.Expr, error) {
	open, err := p.readDelimiter()
	if err != nil {
		return nil, err
	}
	want, known := closingDelimiters[open]
	if !known && open != "." {
		return nil, p.errorf("unknown delimiter %q", open)
	}
	inner, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	p.SkipSpaces()
	if !p.atCommand("right") {
		return nil, p.errorf(`missing \right`)
	}
	p.readCommand()
	closer, err := p.readDelimiter()
	if err != nil {
		return nil, err
	}
	if open != "." && closer != "." && closer != want {
		return nil, p.errorf("mismatched delimiters %q and %q", open, closer)
	}
	switch open {
	case "|", "lvert", "vert":
		return symbolic.NewFunc("abs", inner), nil
	case "lfloor":
		return symbolic.NewFunc("floor", inner), nil
	case "lceil":
		return symbolic.NewFunc("ceil", inner), nil
	}
	return inner, nil
}

func (p *Parser) parseDelimited(closing, fn string) (symbolic.Expr, error) {
	inner, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	p.SkipSpaces()
	if !p.atCommand(closing) {
		return nil, p.errorf(`missing \%s`, closing)
	}
	p.readCommand()
	return symbolic.NewFunc(fn, inner), nil
}

var (
	derivativeNumerator = regexp.MustCompile(`^(d|\\partial)\s*(?:\^\s*\{?\s*(\d+)\s*\}?)?\s*(.*)$`)
	derivativeDenom     = regexp.MustCompile(`^(?:d|\\partial)\s*([A-Za-z]|\\[A-Za-z]+)\s*(?:\^\s*\{?\s*(\d+)\s*\}?)?$`)
)

// parseFrac handles \frac{a}{b} and the Leibniz forms \frac{d}{dx},
// \frac{d^n}{dx^n}, \frac{\partial f}{\partial x}.
func (p *Parser) parseFrac() (symbolic.Expr, error) {
	numRaw, err := p.readArgRaw()
	if err != nil {
		return nil, err
	}
	denRaw, err := p.readArgRaw()
	if err != nil {
		return nil, err
	}
	if d, ok, err := p.leibniz(strings.TrimSpace(numRaw), strings.TrimSpace(denRaw)); ok || err != nil {
		return d, err
	}
	num, err := p.sub(numRaw)
	if err != nil {
		return nil, err
	}
	den, err := p.sub(denRaw)
	if err != nil {
		return nil, err
	}
	return symbolic.Div(num, den), nil
}

func (p *Parser) leibniz(num, den string) (symbolic.Expr, bool, error) {
	dm := derivativeDenom.FindStringSubmatch(den)
	nm := derivativeNumerator.FindStringSubmatch(num)
	if dm == nil || nm == nil {
		return nil, false, nil
	}
	order := 1
	if nm[2] != "" {
		order, _ = strconv.Atoi(nm[2])
	}
	denOrder := 1
	if dm[2] != "" {
		denOrder, _ = strconv.Atoi(dm[2])
	}
	if denOrder != order {
		return nil, false, nil
	}
	if order < 1 {
		return nil, true, p.errorf("derivative order %d", order)
	}
	varName := strings.TrimPrefix(dm[1], `\`)
	var operand symbolic.Expr
	var err error
	if rest := strings.TrimSpace(nm[3]); rest != "" {
		operand, err = p.sub(rest)
	} else {
		operand, err = p.parseMul()
	}
	if err != nil {
		return nil, true, err
	}
	return symbolic.NewDerivative(operand, varName, order), true, nil
}

func (p *Parser) parseSqrt() (symbolic.Expr, error) {
	p.SkipSpaces()
	var index symbolic.Expr
	if p.peek() == '[' {
		end := strings.IndexByte(p.src[p.pos:], ']')
		if end < 0 {
			return nil, p.errorf("unterminated root index")
		}
		raw := p.src[p.pos+1 : p.pos+end]
		p.pos += end + 1
		idx, err := p.sub(raw)
		if err != nil {
			return nil, err
		}
		index = idx
	}
	arg, err := p.parseScript()
	if err != nil {
		return nil, err
	}
	if index == nil {
		return symbolic.NewPow(arg, symbolic.F(1, 2)), nil
	}
	return symbolic.NewPow(arg, symbolic.Div(symbolic.N(1), index)), nil
}

func (p *Parser) parseBinom() (symbolic.Expr, error) {
	n, err := p.parseScript()
	if err != nil {
		return nil, err
	}
	k, err := p.parseScript()
	if err != nil {
		return nil, err
	}
	fact := func(e symbolic.Expr) symbolic.Expr { return symbolic.NewFunc("factorial", e) }
	return symbolic.Div(fact(n), symbolic.NewMul(fact(k), fact(symbolic.NewAdd(n, symbolic.Neg(k))))), nil
}

// scanDifferential matches "dx", "d x", "\mathrm{d}x" or "d\theta" at the
// cursor and reports the variable and where the match ends.
func (p *Parser) scanDifferential() (string, int, bool) {
	i := p.pos
	rest := p.src[i:]
	switch {
	case strings.HasPrefix(rest, `\mathrm{d}`):
		i += len(`\mathrm{d}`)
	case strings.HasPrefix(rest, `\operatorname{d}`):
		i += len(`\operatorname{d}`)
	case strings.HasPrefix(rest, "d"):
		i++
	default:
		return "", 0, false
	}
	for i < len(p.src) && p.src[i] == ' ' {
		i++
	}
	if i >= len(p.src) {
		return "", 0, false
	}
	if isLetter(p.src[i]) {
		if i+1 < len(p.src) && isLetter(p.src[i+1]) {
			return "", 0, false
		}
		return p.src[i : i+1], i + 1, true
	}
	if p.src[i] == '\\' {
		j := i + 1
		for j < len(p.src) && isLetter(p.src[j]) {
			j++
		}
		if name := p.src[i+1 : j]; symbolic.IsGreek(name) {
			return name, j, true
		}
	}
	return "", 0, false
}

func (p *Parser) atDifferential() bool {
	_, _, ok := p.scanDifferential()
	return ok
}

func (p *Parser) parseIntegral() (symbolic.Expr, error) {
	var lower, upper symbolic.Expr
	for i := 0; i < 2; i++ {
		p.SkipSpaces()
		var err error
		switch p.peek() {
		case '_':
			p.pos++
			lower, err = p.parseScript()
		case '^':
			p.pos++
			upper, err = p.parseScript()
		}
		if err != nil {
			return nil, err
		}
	}
	if (lower == nil) != (upper == nil) {
		return nil, p.errorf("integral needs both bounds")
	}
	p.SkipSpaces()
	var body symbolic.Expr = symbolic.N(1)
	if !p.atDifferential() {
		p.intDepth++
		e, err := p.ParseExpr()
		p.intDepth--
		if err != nil {
			return nil, err
		}
		body = e
		p.SkipSpaces()
	}
	v, end, ok := p.scanDifferential()
	if !ok {
		return nil, p.errorf("integral without differential")
	}
	p.pos = end
	return symbolic.NewIntegral(body, v, lower, upper), nil
}

// boundVariable reads the name on the left of "i=" or "x \to".
func (p *Parser) boundVariable(text string) (string, error) {
	e, err := p.sub(text)
	if err != nil {
		return "", err
	}
	s, ok := e.(*symbolic.Sym)
	if !ok {
		return "", p.errorf("%q is not a variable", text)
	}
	return s.Name(), nil
}

func (p *Parser) parseSeries(product bool) (symbolic.Expr, error) {
	var varName string
	var lower, upper symbolic.Expr
	for i := 0; i < 2; i++ {
		p.SkipSpaces()
		switch p.peek() {
		case '_':
			p.pos++
			raw, err := p.readArgRaw()
			if err != nil {
				return nil, err
			}
			lhs, rhs, ok := strings.Cut(raw, "=")
			if !ok {
				return nil, p.errorf("index %q has no start", raw)
			}
			if varName, err = p.boundVariable(lhs); err != nil {
				return nil, err
			}
			if lower, err = p.sub(rhs); err != nil {
				return nil, err
			}
		case '^':
			p.pos++
			e, err := p.parseScript()
			if err != nil {
				return nil, err
			}
			upper = e
		}
	}
	if varName == "" || upper == nil {
		return nil, p.errorf("series needs an index range")
	}
	body, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	if product {
		return symbolic.NewProduct(body, varName, lower, upper), nil
	}
	return symbolic.NewSum(body, varName, lower, upper), nil
}

var approachArrow = regexp.MustCompile(`(\\to|\\rightarrow|\\longrightarrow|->)(?:[^A-Za-z]|$)`)
var oneSided = regexp.MustCompile(`\^\s*(?:\{\s*[+-]\s*\}|[+-])\s*$`)

func (p *Parser) parseLimit() (symbolic.Expr, error) {
	p.SkipSpaces()
	if err := p.Consume("_"); err != nil {
		return nil, err
	}
	raw, err := p.readArgRaw()
	if err != nil {
		return nil, err
	}
	loc := approachArrow.FindStringSubmatchIndex(raw)
	if loc == nil {
		return nil, p.errorf("limit %q has no arrow", raw)
	}
	varName, err := p.boundVariable(raw[:loc[2]])
	if err != nil {
		return nil, err
	}
	point, err := p.sub(oneSided.ReplaceAllString(raw[loc[3]:], ""))
	if err != nil {
		return nil, err
	}
	body, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	return symbolic.NewLimit(body, varName, point), nil
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
