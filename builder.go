package latexcalc

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/leo5358/latex-calc/latex"
	"github.com/leo5358/latex-calc/symbolic"
)

// ParseStrategy turns normalized text into an expression tree. Placeholder
// keys in table must come back as symbols named by the key.
type ParseStrategy interface {
	Name() string
	Parse(text string, table *PlaceholderMap) (symbolic.Expr, error)
}

type funcStrategy struct {
	name  string
	parse func(string, *PlaceholderMap) (symbolic.Expr, error)
}

func (s funcStrategy) Name() string { return s.name }
func (s funcStrategy) Parse(text string, table *PlaceholderMap) (symbolic.Expr, error) {
	return s.parse(text, table)
}

// StrategyFunc adapts a plain function to ParseStrategy.
func StrategyFunc(name string, parse func(text string, table *PlaceholderMap) (symbolic.Expr, error)) ParseStrategy {
	return funcStrategy{name: name, parse: parse}
}

// GrammarStrategy parses with the LaTeX grammar, passing the placeholder
// keys as opaque symbols.
var GrammarStrategy = StrategyFunc("grammar", func(text string, table *PlaceholderMap) (symbolic.Expr, error) {
	return latex.Parse(text, table.Symbols()...)
})

// FallbackStrategy rewrites the text into plain infix and hands it to the
// generic constructor with every placeholder bound to a symbol.
var FallbackStrategy = StrategyFunc("fallback", func(text string, table *PlaceholderMap) (symbolic.Expr, error) {
	bindings := make(map[string]symbolic.Expr, table.Len())
	for _, key := range table.Keys() {
		bindings[key] = symbolic.S(key)
	}
	return symbolic.Parse(FallbackRewrite(text), bindings)
})

func DefaultStrategies() []ParseStrategy {
	return []ParseStrategy{GrammarStrategy, FallbackStrategy}
}

var (
	namedMul     = regexp.MustCompile(`\\(?:times|cdot)([^A-Za-z]|$)`)
	namedDiv     = regexp.MustCompile(`\\div([^A-Za-z]|$)`)
	spacingCmd   = regexp.MustCompile(`\\[,;:! ]`)
	percentCmd   = regexp.MustCompile(`\\%`)
	anyCommand   = regexp.MustCompile(`\\[A-Za-z]+`)
	braceToParen = strings.NewReplacer("{", "(", "}", ")")
)

// FallbackRewrite is the conservative textual rewrite of the fallback tier:
// named operators become * and /, \% becomes /100, braces become
// parentheses and every other command is dropped.
func FallbackRewrite(text string) string {
	text = namedMul.ReplaceAllString(text, "*$1")
	text = namedDiv.ReplaceAllString(text, "/$1")
	text = spacingCmd.ReplaceAllString(text, " ")
	text = percentCmd.ReplaceAllString(text, "/100")
	text = anyCommand.ReplaceAllString(text, "")
	return braceToParen.Replace(text)
}

// Builder tries its strategies in order and keeps the first tree produced.
type Builder struct {
	strategies []ParseStrategy
	logger     *zap.Logger
}

// NewBuilder returns a Builder over strategies, or over DefaultStrategies
// when none are given.
func NewBuilder(strategies ...ParseStrategy) *Builder {
	return newBuilder(zap.NewNop(), strategies)
}

func newBuilder(logger *zap.Logger, strategies []ParseStrategy) *Builder {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Builder{strategies: strategies, logger: logger}
}

// Build returns the first successful tree and the name of the strategy that
// produced it. When every strategy fails the joined failures wrap ErrParse.
func (b *Builder) Build(text string, table *PlaceholderMap) (symbolic.Expr, string, error) {
	var errs []error
	for _, s := range b.strategies {
		expr, err := s.Parse(text, table)
		if err == nil && expr == nil {
			err = errors.New("no expression")
		}
		if err != nil {
			b.logger.Debug("parse strategy failed",
				zap.String("strategy", s.Name()),
				zap.String("text", text),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		return expr, s.Name(), nil
	}
	return nil, "", fmt.Errorf("%w: %w", ErrParse, errors.Join(errs...))
}

// Strategies lists the strategy names in the order they are tried.
func (b *Builder) Strategies() []string {
	names := make([]string, len(b.strategies))
	for i, s := range b.strategies {
		names[i] = s.Name()
	}
	return names
}
