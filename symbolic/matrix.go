package symbolic

import (
	"fmt"
	"strings"
)

// ============================================================
// Matrix: symbolic matrix
// ============================================================

// Matrix is a rectangular grid of expressions. It is itself an Expr so it
// can sit inside a tree until Force combines it with its neighbours.
type Matrix struct {
	rows, cols int
	data       [][]Expr
}

func NewMatrix(rows, cols int) *Matrix {
	data := make([][]Expr, rows)
	for i := range data {
		data[i] = make([]Expr, cols)
		for j := range data[i] {
			data[i][j] = N(0)
		}
	}
	return &Matrix{rows: rows, cols: cols, data: data}
}

// MatrixFromRows builds a matrix from row slices. Every row must have the
// same, non-zero length.
func MatrixFromRows(rows [][]Expr) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrDimensionMismatch)
	}
	cols := len(rows[0])
	m := NewMatrix(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrDimensionMismatch, i, len(row), cols)
		}
		copy(m.data[i], row)
	}
	return m, nil
}

func (m *Matrix) Get(row, col int) Expr {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("symbolic: matrix index out of range [%d,%d] for %dx%d", row, col, m.rows, m.cols))
	}
	return m.data[row][col]
}
func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

func (m *Matrix) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("[")
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(m.data[i][j].String())
		}
		sb.WriteString("]")
	}
	sb.WriteString("]")
	return sb.String()
}

func (m *Matrix) LaTeX() string {
	var sb strings.Builder
	sb.WriteString("\\begin{pmatrix}")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(" \\\\ ")
		}
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(" & ")
			}
			sb.WriteString(m.data[i][j].LaTeX())
		}
	}
	sb.WriteString("\\end{pmatrix}")
	return sb.String()
}

func (m *Matrix) Simplify() Expr { return m.each(func(e Expr) Expr { return e.Simplify() }) }

func (m *Matrix) Sub(varName string, value Expr) Expr {
	return m.each(func(e Expr) Expr { return e.Sub(varName, value).Simplify() })
}

func (m *Matrix) Diff(varName string) Expr {
	return m.each(func(e Expr) Expr { return e.Diff(varName).Simplify() })
}

func (m *Matrix) Eval() (*Num, bool) { return nil, false }

func (m *Matrix) Equal(other Expr) bool {
	o, ok := other.(*Matrix)
	if !ok || m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.data {
		if !equalAll(m.data[i], o.data[i]) {
			return false
		}
	}
	return true
}

func (m *Matrix) exprType() string { return "matrix" }

func (m *Matrix) children() []Expr {
	out := make([]Expr, 0, m.rows*m.cols)
	for _, row := range m.data {
		out = append(out, row...)
	}
	return out
}

func (m *Matrix) rebuild(c []Expr) Expr {
	result := NewMatrix(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		copy(result.data[i], c[i*m.cols:(i+1)*m.cols])
	}
	return result
}

func (m *Matrix) toJSON() map[string]interface{} {
	rows := make([][]map[string]interface{}, m.rows)
	for i, row := range m.data {
		rows[i] = jsonList(row)
	}
	return map[string]interface{}{"type": "matrix", "rows": rows}
}

func (m *Matrix) each(fn func(Expr) Expr) *Matrix {
	result := NewMatrix(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			result.data[i][j] = fn(m.data[i][j])
		}
	}
	return result
}

func (m *Matrix) MatAdd(other *Matrix) (*Matrix, error) {
	if m.rows != other.rows || m.cols != other.cols {
		return nil, fmt.Errorf("%w: cannot add %dx%d and %dx%d", ErrDimensionMismatch, m.rows, m.cols, other.rows, other.cols)
	}
	result := NewMatrix(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			result.data[i][j] = AddOf(m.data[i][j], other.data[i][j])
		}
	}
	return result, nil
}

func (m *Matrix) MatMul(other *Matrix) (*Matrix, error) {
	if m.cols != other.rows {
		return nil, fmt.Errorf("%w: cannot multiply %dx%d by %dx%d", ErrDimensionMismatch, m.rows, m.cols, other.rows, other.cols)
	}
	result := NewMatrix(m.rows, other.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < other.cols; j++ {
			terms := make([]Expr, m.cols)
			for k := 0; k < m.cols; k++ {
				terms[k] = MulOf(m.data[i][k], other.data[k][j])
			}
			result.data[i][j] = AddOf(terms...)
		}
	}
	return result, nil
}

func (m *Matrix) Scale(scalar Expr) *Matrix {
	return m.each(func(e Expr) Expr { return MulOf(scalar, e) })
}

func (m *Matrix) Transpose() *Matrix {
	result := NewMatrix(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			result.data[j][i] = m.data[i][j]
		}
	}
	return result
}

func (m *Matrix) Trace() (Expr, error) {
	if m.rows != m.cols {
		return nil, fmt.Errorf("%w: trace of %dx%d matrix", ErrNonSquare, m.rows, m.cols)
	}
	terms := make([]Expr, m.rows)
	for i := 0; i < m.rows; i++ {
		terms[i] = m.data[i][i]
	}
	return AddOf(terms...), nil
}

func (m *Matrix) Det() (Expr, error) {
	if m.rows != m.cols {
		return nil, fmt.Errorf("%w: determinant of %dx%d matrix", ErrNonSquare, m.rows, m.cols)
	}
	return matDet(m.data, m.rows), nil
}

func matDet(data [][]Expr, n int) Expr {
	if n == 1 {
		return data[0][0].Simplify()
	}
	if n == 2 {
		return AddOf(
			MulOf(data[0][0], data[1][1]),
			MulOf(N(-1), data[0][1], data[1][0]),
		)
	}
	terms := make([]Expr, n)
	for j := 0; j < n; j++ {
		sign := N(1)
		if j%2 == 1 {
			sign = N(-1)
		}
		terms[j] = MulOf(sign, data[0][j], matDet(makeMinor(data, n, 0, j), n-1))
	}
	return AddOf(terms...)
}

func makeMinor(data [][]Expr, n, skipRow, skipCol int) [][]Expr {
	minor := make([][]Expr, 0, n-1)
	for i := 0; i < n; i++ {
		if i == skipRow {
			continue
		}
		row := make([]Expr, 0, n-1)
		for j := 0; j < n; j++ {
			if j != skipCol {
				row = append(row, data[i][j])
			}
		}
		minor = append(minor, row)
	}
	return minor
}

// Inverse computes adj(m)/det(m). A determinant that simplifies to zero is
// reported as ErrSingular.
func (m *Matrix) Inverse() (*Matrix, error) {
	det, err := m.Det()
	if err != nil {
		return nil, err
	}
	if isNumEqual(det, 0) {
		return nil, ErrSingular
	}
	n := m.rows
	if n == 1 {
		return m.each(func(e Expr) Expr { return PowOf(e, N(-1)) }), nil
	}
	cof := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sign := N(1)
			if (i+j)%2 == 1 {
				sign = N(-1)
			}
			cof.data[i][j] = MulOf(sign, matDet(makeMinor(m.data, n, i, j), n-1))
		}
	}
	return cof.Transpose().Scale(PowOf(det, N(-1))), nil
}

// MatPow raises a square matrix to an integer power; negative powers go
// through the inverse.
func (m *Matrix) MatPow(k int64) (*Matrix, error) {
	if m.rows != m.cols {
		return nil, fmt.Errorf("%w: power of %dx%d matrix", ErrNonSquare, m.rows, m.cols)
	}
	base := m
	if k < 0 {
		inv, err := m.Inverse()
		if err != nil {
			return nil, err
		}
		base, k = inv, -k
	}
	result := Identity(m.rows)
	for ; k > 0; k >>= 1 {
		var err error
		if k&1 == 1 {
			if result, err = result.MatMul(base); err != nil {
				return nil, err
			}
		}
		if k > 1 {
			if base, err = base.MatMul(base); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

func Identity(n int) *Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m.data[i][i] = N(1)
	}
	return m
}
