package latexcalc

import "errors"

// Every failure the pipeline reports wraps exactly one of these.
var (
	ErrNothingToEvaluate = errors.New("latexcalc: nothing to evaluate")
	ErrMatrixStructure   = errors.New("latexcalc: malformed matrix environment")
	ErrParse             = errors.New("latexcalc: no parse strategy accepted the input")
	ErrEvaluation        = errors.New("latexcalc: evaluation failed")
	ErrNumericMatrix     = errors.New("latexcalc: numeric mode cannot produce a matrix")
	ErrInvalidConfig     = errors.New("latexcalc: invalid config")
)
