package latexcalc_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	latexcalc "github.com/leo5358/latex-calc"
	"github.com/leo5358/latex-calc/latex"
	"github.com/leo5358/latex-calc/symbolic"
)

func TestPlaceholderMap(t *testing.T) {
	table := latexcalc.NewPlaceholderMap("MAT")
	m0 := symbolic.Identity(2)
	m1 := symbolic.Identity(3)

	assert.Equal(t, "MAT0", table.Add(m0))
	assert.Equal(t, "MAT1", table.Add(m1))
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "MAT", table.Tag())
	assert.Equal(t, []string{"MAT0", "MAT1"}, table.Keys())

	got, ok := table.Lookup("MAT1")
	require.True(t, ok)
	assert.Same(t, m1, got)

	_, ok = table.Lookup("MAT2")
	assert.False(t, ok)

	var empty *latexcalc.PlaceholderMap
	assert.Zero(t, empty.Len())
	assert.Nil(t, empty.Symbols())
}

func TestExtractMatrices(t *testing.T) {
	b := latexcalc.NewBuilder()

	t.Run("single matrix", func(t *testing.T) {
		table := latexcalc.NewPlaceholderMap("MATRIX")
		out, err := latexcalc.ExtractMatrices(`2\begin{pmatrix}1&2\\3&4\end{pmatrix}`, table, b)
		require.NoError(t, err)
		assert.Equal(t, "2 MATRIX0 ", out)

		m, ok := table.Lookup("MATRIX0")
		require.True(t, ok)
		assert.Equal(t, 2, m.Rows())
		assert.Equal(t, 2, m.Cols())
		assert.Equal(t, "4", m.Get(1, 1).String())
	})

	t.Run("empty cells are zero", func(t *testing.T) {
		table := latexcalc.NewPlaceholderMap("MATRIX")
		_, err := latexcalc.ExtractMatrices(`\begin{pmatrix}1&\\&1\end{pmatrix}`, table, b)
		require.NoError(t, err)
		m, _ := table.Lookup("MATRIX0")
		assert.True(t, symbolic.Identity(2).Equal(m))
	})

	t.Run("every variant", func(t *testing.T) {
		for _, env := range []string{"matrix", "pmatrix", "bmatrix", "Bmatrix", "vmatrix", "Vmatrix", "smallmatrix"} {
			table := latexcalc.NewPlaceholderMap("MATRIX")
			src := `\begin{` + env + `} 1 & 0 \\ 0 & 1 \\ \end{` + env + `}`
			_, err := latexcalc.ExtractMatrices(src, table, b)
			require.NoError(t, err, env)
			m, _ := table.Lookup("MATRIX0")
			assert.Equal(t, 2, m.Rows(), env)
		}
	})

	t.Run("hline and spacing are ignored", func(t *testing.T) {
		table := latexcalc.NewPlaceholderMap("MATRIX")
		_, err := latexcalc.ExtractMatrices(`\begin{bmatrix}\hline 1 & 2 \\[2pt] 3 & 4\end{bmatrix}`, table, b)
		require.NoError(t, err)
		m, _ := table.Lookup("MATRIX0")
		assert.Equal(t, "3", m.Get(1, 0).String())
	})

	t.Run("several matrices keep order", func(t *testing.T) {
		table := latexcalc.NewPlaceholderMap("MATRIX")
		out, err := latexcalc.ExtractMatrices(`\begin{pmatrix}1\end{pmatrix}+\begin{pmatrix}2\end{pmatrix}`, table, b)
		require.NoError(t, err)
		assert.Equal(t, " MATRIX0 + MATRIX1 ", out)
		m, _ := table.Lookup("MATRIX1")
		assert.Equal(t, "2", m.Get(0, 0).String())
	})

	errorCases := map[string]string{
		"mismatched names": `\begin{pmatrix}1\end{bmatrix}`,
		"missing end":      `\begin{pmatrix}1&2`,
		"stray end":        `1 + \end{pmatrix}`,
		"nested":           `\begin{pmatrix}\begin{pmatrix}1\end{pmatrix}\end{pmatrix}`,
		"ragged rows":      `\begin{pmatrix}1&2\\3\end{pmatrix}`,
		"bad cell":         `\begin{pmatrix}1&+\end{pmatrix}`,
		"empty":            `\begin{pmatrix}\end{pmatrix}`,
	}
	for name, src := range errorCases {
		t.Run(name, func(t *testing.T) {
			_, err := latexcalc.ExtractMatrices(src, latexcalc.NewPlaceholderMap("MATRIX"), b)
			require.Error(t, err)
			assert.ErrorIs(t, err, latexcalc.ErrMatrixStructure)
		})
	}
}

func TestNormalizeGaps(t *testing.T) {
	table := latexcalc.NewPlaceholderMap("MATRIX")
	for i := 0; i < 4; i++ {
		table.Add(symbolic.Identity(2))
	}
	adjacent := regexp.MustCompile(`MATRIX\d+\s+MATRIX\d+`)

	tests := []struct {
		text  string
		stars int
	}{
		{" MATRIX0 ", 0},
		{" MATRIX0  MATRIX1 ", 1},
		{" MATRIX0  MATRIX1  MATRIX2 ", 2},
		{" MATRIX0 \n MATRIX1 \t MATRIX2  MATRIX3 ", 3},
		{" MATRIX0 + MATRIX1 ", 0},
		{"2 MATRIX0  MATRIX1 x", 1},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			out := latexcalc.NormalizeGaps(tt.text, table)
			assert.Equal(t, tt.stars, strings.Count(out, "*"))
			assert.False(t, adjacent.MatchString(out), out)
		})
	}

	t.Run("empty table", func(t *testing.T) {
		text := "MATRIX0 MATRIX1"
		assert.Equal(t, text, latexcalc.NormalizeGaps(text, latexcalc.NewPlaceholderMap("MATRIX")))
	})
}

func TestResubstitute(t *testing.T) {
	table := latexcalc.NewPlaceholderMap("M")
	a := symbolic.Identity(2)
	b := symbolic.Identity(3)
	table.Add(a)
	table.Add(b)

	tree, err := latex.Parse(`x M0 + M1`, table.Symbols()...)
	require.NoError(t, err)

	out := latexcalc.Resubstitute(tree, table)
	sum, ok := out.(*symbolic.Add)
	require.True(t, ok)
	require.Len(t, sum.Terms(), 2)

	product, ok := sum.Terms()[0].(*symbolic.Mul)
	require.True(t, ok)
	assert.Equal(t, "x", product.Factors()[0].String())
	assert.Same(t, a, product.Factors()[1])
	assert.Same(t, b, sum.Terms()[1])

	t.Run("empty table is a no-op", func(t *testing.T) {
		assert.Same(t, tree, latexcalc.Resubstitute(tree, latexcalc.NewPlaceholderMap("M")))
	})
}
