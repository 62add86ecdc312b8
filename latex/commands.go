package latex

import "github.com/leo5358/latex-calc/symbolic"

// functionCommands maps LaTeX operator names to engine function names.
var functionCommands = map[string]string{
	"sin": "sin", "cos": "cos", "tan": "tan",
	"sec": "sec", "csc": "csc", "cot": "cot",
	"arcsin": "asin", "arccos": "acos", "arctan": "atan",
	"sinh": "sinh", "cosh": "cosh", "tanh": "tanh",
	"exp": "exp", "ln": "ln", "log": "ln",
	"det": "det",
}

// namedOperators are the names accepted inside \operatorname{} and \mathrm{}.
var namedOperators = map[string]string{
	"sin": "sin", "cos": "cos", "tan": "tan", "exp": "exp", "ln": "ln", "log": "ln",
	"sign": "sign", "sgn": "sign", "abs": "abs", "floor": "floor", "ceil": "ceil",
	"tr": "tr", "Tr": "tr", "trace": "tr", "det": "det",
	"arcsin": "asin", "arccos": "acos", "arctan": "atan",
}

var inverseFunctions = map[string]string{
	"sin": "asin", "cos": "acos", "tan": "atan",
}

// closingDelimiters pairs every \left delimiter with its \right partner.
var closingDelimiters = map[string]string{
	"(": ")", "[": "]", "{": "}", "|": "|",
	"lvert": "rvert", "vert": "vert", "lfloor": "rfloor", "lceil": "rceil",
}

// primaryCommands are the commands that can begin an operand, and so can
// follow another operand as an implicit multiplication.
var primaryCommands = map[string]bool{
	"left": true, "frac": true, "dfrac": true, "tfrac": true, "cfrac": true,
	"sqrt": true, "binom": true, "dbinom": true, "tbinom": true, "pi": true,
	"mathrm": true, "operatorname": true, "mathit": true, "mathsf": true, "mathbf": true,
	"lfloor": true, "lceil": true, "lvert": true, "int": true, "sum": true, "prod": true,
	"lim": true, "infty": true, "partial": true,
}

func startsPrimary(name string) bool {
	if primaryCommands[name] || symbolic.IsGreek(name) {
		return true
	}
	_, ok := functionCommands[name]
	return ok
}

// applyFunction builds the node for a parsed function application.
func applyFunction(name string, arg symbolic.Expr) symbolic.Expr {
	switch name {
	case "sec":
		return symbolic.NewPow(symbolic.NewFunc("cos", arg), symbolic.N(-1))
	case "csc":
		return symbolic.NewPow(symbolic.NewFunc("sin", arg), symbolic.N(-1))
	case "cot":
		return symbolic.NewPow(symbolic.NewFunc("tan", arg), symbolic.N(-1))
	case "det", "tr":
		return symbolic.NewMatrixFunc(name, arg)
	}
	return symbolic.NewFunc(name, arg)
}
