package latexcalc_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	latexcalc "github.com/leo5358/latex-calc"
	"github.com/leo5358/latex-calc/symbolic"
)

type mockStrategy struct {
	mock.Mock
	name string
}

func (m *mockStrategy) Name() string { return m.name }

func (m *mockStrategy) Parse(text string, table *latexcalc.PlaceholderMap) (symbolic.Expr, error) {
	args := m.Called(text, table)
	expr, _ := args.Get(0).(symbolic.Expr)
	return expr, args.Error(1)
}

func setupMockStrategy(name, text string, expr symbolic.Expr, err error) *mockStrategy {
	s := &mockStrategy{name: name}
	s.On("Parse", text, mock.Anything).Return(expr, err)
	return s
}

func TestBuilderOrder(t *testing.T) {
	t.Run("first success wins", func(t *testing.T) {
		first := setupMockStrategy("first", "x", symbolic.S("a"), nil)
		second := &mockStrategy{name: "second"}

		b := latexcalc.NewBuilder(first, second)
		expr, name, err := b.Build("x", nil)
		require.NoError(t, err)
		assert.Equal(t, "first", name)
		assert.Equal(t, "a", expr.String())

		first.AssertExpectations(t)
		second.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
	})

	t.Run("falls through failures", func(t *testing.T) {
		first := setupMockStrategy("first", "x", nil, errors.New("nope"))
		second := setupMockStrategy("second", "x", symbolic.N(2), nil)

		expr, name, err := latexcalc.NewBuilder(first, second).Build("x", nil)
		require.NoError(t, err)
		assert.Equal(t, "second", name)
		assert.Equal(t, "2", expr.String())
		first.AssertExpectations(t)
		second.AssertExpectations(t)
	})

	t.Run("all failures wrap ErrParse", func(t *testing.T) {
		cause := errors.New("second cause")
		first := setupMockStrategy("first", "x", nil, errors.New("first cause"))
		second := setupMockStrategy("second", "x", nil, cause)

		_, _, err := latexcalc.NewBuilder(first, second).Build("x", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, latexcalc.ErrParse)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "first: first cause")
	})

	t.Run("nil tree counts as failure", func(t *testing.T) {
		first := setupMockStrategy("first", "x", nil, nil)
		second := setupMockStrategy("second", "x", symbolic.N(1), nil)

		_, name, err := latexcalc.NewBuilder(first, second).Build("x", nil)
		require.NoError(t, err)
		assert.Equal(t, "second", name)
	})
}

func TestDefaultStrategies(t *testing.T) {
	b := latexcalc.NewBuilder()
	assert.Equal(t, []string{"grammar", "fallback"}, b.Strategies())

	t.Run("grammar handles latex", func(t *testing.T) {
		_, name, err := b.Build(`\frac{1}{2}`, nil)
		require.NoError(t, err)
		assert.Equal(t, "grammar", name)
	})

	t.Run("fallback handles what the grammar rejects", func(t *testing.T) {
		// \textrm is unknown to the grammar and simply dropped by the rewrite.
		expr, name, err := b.Build(`\textrm{2}*3`, nil)
		require.NoError(t, err)
		assert.Equal(t, "fallback", name)
		n, ok := expr.Eval()
		require.True(t, ok)
		assert.Equal(t, "6", n.String())
	})

	t.Run("fallback binds placeholders", func(t *testing.T) {
		table := latexcalc.NewPlaceholderMap("MATRIX")
		table.Add(symbolic.Identity(2))
		expr, err := latexcalc.FallbackStrategy.Parse(`MATRIX0 \cdot 2`, table)
		require.NoError(t, err)
		assert.Equal(t, "MATRIX0*2", expr.String())
	})
}

func TestFallbackRewrite(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`2 \times 3`, "2 * 3"},
		{`2\cdot3`, "2*3"},
		{`6 \div 2`, "6 / 2"},
		{`\frac{1}{2}`, "(1)(2)"},
		{`\sqrt{x}`, "(x)"},
		{`a\,b`, "a b"},
		{`\left(1+2\right)`, "(1+2)"},
		{`50\% + 1`, "50/100 + 1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, latexcalc.FallbackRewrite(tt.in))
		})
	}
}
