package latexcalc

import "github.com/leo5358/latex-calc/symbolic"

// Resubstitute swaps every placeholder symbol in tree for its matrix. Other
// subtrees are returned untouched and nothing is simplified.
func Resubstitute(tree symbolic.Expr, table *PlaceholderMap) symbolic.Expr {
	if table.Len() == 0 {
		return tree
	}
	return symbolic.Replace(tree, func(e symbolic.Expr) (symbolic.Expr, bool) {
		s, ok := e.(*symbolic.Sym)
		if !ok {
			return nil, false
		}
		m, ok := table.Lookup(s.Name())
		if !ok {
			return nil, false
		}
		return m, true
	})
}
