package latexcalc_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	latexcalc "github.com/leo5358/latex-calc"
	"github.com/leo5358/latex-calc/symbolic"
)

func newPipeline(t *testing.T, mode latexcalc.Mode, opts ...latexcalc.Option) *latexcalc.Pipeline {
	t.Helper()
	cfg := latexcalc.DefaultConfig()
	cfg.Mode = mode
	p, err := latexcalc.New(cfg, opts...)
	require.NoError(t, err)
	return p
}

func TestPipelineExact(t *testing.T) {
	p := newPipeline(t, latexcalc.ModeExact)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"fractions", `$\frac{1}{2} + \frac{1}{3}$`, `\frac{5}{6}`},
		{"arithmetic", `2 \cdot 3 + 4`, "10"},
		{
			"matrix product",
			`$\begin{pmatrix}1&2\\3&4\end{pmatrix}\begin{pmatrix}5&6\\7&8\end{pmatrix}$`,
			`\begin{pmatrix}19 & 22 \\ 43 & 50\end{pmatrix}`,
		},
		{
			"empty cells",
			`\begin{pmatrix}1&\\&1\end{pmatrix}`,
			`\begin{pmatrix}1 & 0 \\ 0 & 1\end{pmatrix}`,
		},
		{"scalar times matrix", `3 \begin{bmatrix}1 & 2\end{bmatrix}`, `\begin{pmatrix}3 & 6\end{pmatrix}`},
		{"determinant", `\det\begin{pmatrix}1&2\\3&4\end{pmatrix}`, "-2"},
		{"derivative", `\frac{d}{dx} x^2`, "2 x"},
		{"last line of align", "\\begin{align}\n a &= 1 + 1 \\\\\n &= 2 + 3\n\\end{align}", "5"},
		{"comment", "1 + 1 % two", "2"},
		{"square", `$x^2$`, "x^{2}"},
		{"squared sum", `$(x+1)^2$`, `\left(x + 1\right)^{2}`},
		{"difference of squares", `$(x+y)(x-y)$`, `\left(x - y\right) \left(x + y\right)`},
		{"sum of squares", `$y^2+1$`, "y^{2} + 1"},
		{"antiderivative", `$\int x^2\,dx$`, `\frac{x^{3}}{3}`},
		{"percent", `$50\% + 1$`, `\frac{3}{2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := p.Evaluate(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestPipelineNumeric(t *testing.T) {
	p := newPipeline(t, latexcalc.ModeNumeric)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"third", `$1/3$`, "0.3333"},
		{"integer", `$4/2$`, "2"},
		{"pi", `\pi`, "3.1416"},
		{"integral", `\int_0^1 x^2 \, dx`, "0.3333"},
		{"sum", `\sum_{i=1}^{10} i`, "55"},
		{"percent", `$50\% + 1$`, "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := p.Evaluate(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	t.Run("decimal places", func(t *testing.T) {
		cfg := latexcalc.DefaultConfig()
		cfg.Mode = latexcalc.ModeNumeric
		cfg.DecimalPlaces = 2
		p, err := latexcalc.New(cfg)
		require.NoError(t, err)
		out, err := p.Evaluate(`\frac{2}{3}`)
		require.NoError(t, err)
		assert.Equal(t, "0.67", out)
	})
}

func TestPipelineErrors(t *testing.T) {
	singular := `\begin{pmatrix}1&2\\2&4\end{pmatrix}^{-1}`
	tests := []struct {
		name string
		mode latexcalc.Mode
		raw  string
		want error
	}{
		{"nothing left", latexcalc.ModeExact, `$$`, latexcalc.ErrNothingToEvaluate},
		{"blank", latexcalc.ModeExact, "  % only a comment", latexcalc.ErrNothingToEvaluate},
		{"mismatched environment", latexcalc.ModeExact, `\begin{pmatrix}1\end{bmatrix}`, latexcalc.ErrMatrixStructure},
		{"unparseable", latexcalc.ModeExact, `)(`, latexcalc.ErrParse},
		{"singular inverse", latexcalc.ModeExact, singular, latexcalc.ErrEvaluation},
		{"singular inverse is a matrix error", latexcalc.ModeExact, singular, symbolic.ErrSingular},
		{"division by zero", latexcalc.ModeExact, `\frac{1}{0}`, latexcalc.ErrEvaluation},
		{"numeric division by zero", latexcalc.ModeNumeric, `\frac{1}{0}`, latexcalc.ErrEvaluation},
		{"numeric matrix", latexcalc.ModeNumeric, `\begin{pmatrix}1&2\end{pmatrix}`, latexcalc.ErrNumericMatrix},
		{"numeric free symbol", latexcalc.ModeNumeric, `x + 1`, latexcalc.ErrEvaluation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := newPipeline(t, tt.mode).Evaluate(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, out)
		})
	}
}

func TestPipelineIdempotent(t *testing.T) {
	p := newPipeline(t, latexcalc.ModeExact)
	for _, raw := range []string{
		`\frac{1}{2} + \frac{1}{3}`,
		`2x + 3x`,
		`\sqrt{8}`,
		`x^2 \cdot x`,
		`(x+1)^2`,
		`(x+y)(x-y)`,
		`\int x^2\,dx`,
		`\begin{pmatrix}1&2\\3&4\end{pmatrix}^{2}`,
	} {
		t.Run(raw, func(t *testing.T) {
			first, err := p.Evaluate(raw)
			require.NoError(t, err)
			second, err := p.Evaluate(first)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestPipelineTrace(t *testing.T) {
	p := newPipeline(t, latexcalc.ModeExact)

	trace, err := p.Run(`$\begin{pmatrix}1&0\\0&1\end{pmatrix} \begin{pmatrix}2\\3\end{pmatrix}$`)
	require.NoError(t, err)
	assert.Equal(t, `\begin{pmatrix}1&0\\0&1\end{pmatrix} \begin{pmatrix}2\\3\end{pmatrix}`, trace.Sanitized)
	assert.Equal(t, []string{"MATRIX0", "MATRIX1"}, trace.Placeholders.Keys())
	assert.Contains(t, trace.Normalized, "MATRIX0 * MATRIX1")
	assert.Equal(t, "grammar", trace.Strategy)
	assert.Equal(t, "MATRIX0*MATRIX1", trace.Tree.String())
	assert.Equal(t, `\begin{pmatrix}2 \\ 3\end{pmatrix}`, trace.Output)

	t.Run("tables are per run", func(t *testing.T) {
		again, err := p.Run(`\begin{pmatrix}5\end{pmatrix}`)
		require.NoError(t, err)
		assert.Equal(t, []string{"MATRIX0"}, again.Placeholders.Keys())
	})

	t.Run("tag grows past a colliding name", func(t *testing.T) {
		trace, err := p.Run(`\mathrm{MATRIX} \begin{pmatrix}2\end{pmatrix}`)
		require.NoError(t, err)
		assert.Equal(t, "MATRIXX", trace.Placeholders.Tag())
		assert.Equal(t, []string{"MATRIXX0"}, trace.Placeholders.Keys())
	})

	t.Run("failed stage leaves the rest empty", func(t *testing.T) {
		trace, err := p.Run(`\begin{pmatrix}1\end{bmatrix}`)
		require.Error(t, err)
		assert.NotEmpty(t, trace.Sanitized)
		assert.Nil(t, trace.Tree)
		assert.Empty(t, trace.Output)
	})
}

func TestPipelineOptions(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		cfg := latexcalc.DefaultConfig()
		cfg.PlaceholderTag = "M_1"
		_, err := latexcalc.New(cfg)
		assert.ErrorIs(t, err, latexcalc.ErrInvalidConfig)
	})

	t.Run("custom strategies", func(t *testing.T) {
		s := setupMockStrategy("fixed", "anything", symbolic.F(1, 4), nil)
		p := newPipeline(t, latexcalc.ModeNumeric, latexcalc.WithStrategies(s))
		assert.Equal(t, []string{"fixed"}, p.Strategies())

		out, err := p.Evaluate("anything")
		require.NoError(t, err)
		assert.Equal(t, "0.25", out)
		s.AssertExpectations(t)
	})

	t.Run("strategy sees placeholders", func(t *testing.T) {
		s := &mockStrategy{name: "spy"}
		s.On("Parse", mock.Anything, mock.MatchedBy(func(table *latexcalc.PlaceholderMap) bool {
			return table.Len() == 1 && table.Tag() == "MATRIX"
		})).Return(symbolic.S("MATRIX0"), nil).Once()
		// matrix cells are built with the same strategies and no table
		s.On("Parse", "7", mock.MatchedBy(func(table *latexcalc.PlaceholderMap) bool {
			return table == nil
		})).Return(symbolic.N(7), nil).Once()

		p := newPipeline(t, latexcalc.ModeExact, latexcalc.WithStrategies(s))
		out, err := p.Evaluate(`\begin{pmatrix}7\end{pmatrix}`)
		require.NoError(t, err)
		assert.Equal(t, `\begin{pmatrix}7\end{pmatrix}`, out)
		s.AssertExpectations(t)
	})

	t.Run("engine panic becomes an evaluation error", func(t *testing.T) {
		boom := latexcalc.StrategyFunc("boom", func(string, *latexcalc.PlaceholderMap) (symbolic.Expr, error) {
			panic("boom")
		})
		p := newPipeline(t, latexcalc.ModeExact, latexcalc.WithStrategies(boom))
		out, err := p.Evaluate("1")
		assert.ErrorIs(t, err, latexcalc.ErrEvaluation)
		assert.Empty(t, out)
	})

	t.Run("stages are logged at debug", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		p := newPipeline(t, latexcalc.ModeExact, latexcalc.WithLogger(zap.New(core)))
		_, err := p.Evaluate(`1+1`)
		require.NoError(t, err)

		var messages []string
		for _, entry := range logs.All() {
			messages = append(messages, entry.Message)
		}
		assert.Equal(t, []string{"sanitized", "matrices extracted", "built expression", "evaluated"}, messages)
		assert.Equal(t, "2", logs.FilterMessage("evaluated").All()[0].ContextMap()["output"])
	})

	t.Run("failed strategies are logged", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		failing := setupMockStrategy("failing", "1", nil, errors.New("no"))
		p := newPipeline(t, latexcalc.ModeExact,
			latexcalc.WithLogger(zap.New(core)),
			latexcalc.WithStrategies(failing, latexcalc.GrammarStrategy))
		out, err := p.Evaluate("1")
		require.NoError(t, err)
		assert.Equal(t, "1", out)
		assert.Equal(t, 1, logs.FilterMessage("parse strategy failed").Len())
	})
}
