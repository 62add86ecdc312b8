package symbolic

import "errors"

var (
	// ErrDimensionMismatch indicates matrices whose shapes do not fit the operation.
	ErrDimensionMismatch = errors.New("symbolic: dimension mismatch")
	// ErrNonSquare indicates a square-only operation applied to a rectangular matrix.
	ErrNonSquare = errors.New("symbolic: matrix is not square")
	// ErrSingular indicates an inverse requested for a matrix with zero determinant.
	ErrSingular = errors.New("symbolic: matrix is singular")
	// ErrDivisionByZero indicates a reciprocal of zero survived simplification.
	ErrDivisionByZero = errors.New("symbolic: division by zero")
	// ErrDomain indicates a function applied outside its domain, such as ln(0).
	ErrDomain = errors.New("symbolic: argument outside function domain")
	// ErrUnsupported indicates an operation the engine cannot carry out.
	ErrUnsupported = errors.New("symbolic: unsupported operation")
	// ErrSyntax indicates text the generic constructor cannot read.
	ErrSyntax = errors.New("symbolic: syntax error")
)
