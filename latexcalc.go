// Package latexcalc evaluates LaTeX math fragments taken from an editor
// buffer.
//
// A fragment goes through a fixed pipeline: Sanitize, ExtractMatrices,
// NormalizeGaps, a Builder of ordered parse strategies, Resubstitute and
// Evaluate, and the Result is formatted as LaTeX (exact mode) or as a
// rounded decimal (numeric mode).
//
//	p, _ := latexcalc.New(latexcalc.DefaultConfig())
//	out, err := p.Evaluate(`$\frac{1}{2} + \frac{1}{3}$`) // \frac{5}{6}
package latexcalc

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/leo5358/latex-calc/symbolic"
)

// Pipeline holds immutable configuration only; every run builds its own
// placeholder table, so a Pipeline may be reused.
type Pipeline struct {
	cfg        Config
	strategies []ParseStrategy
	builder    *Builder
	logger     *zap.Logger
}

type Option func(*Pipeline)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithStrategies replaces the default parse strategies.
func WithStrategies(strategies ...ParseStrategy) Option {
	return func(p *Pipeline) { p.strategies = strategies }
}

func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	p.builder = newBuilder(p.logger, p.strategies)
	return p, nil
}

func (p *Pipeline) Config() Config { return p.cfg }

func (p *Pipeline) Strategies() []string { return p.builder.Strategies() }

// Trace records the intermediate value of every stage of one run. Stages
// after a failure are left zero.
type Trace struct {
	Raw          string
	Sanitized    string
	Extracted    string
	Normalized   string
	Placeholders *PlaceholderMap
	Strategy     string
	Tree         symbolic.Expr
	Substituted  symbolic.Expr
	Forced       symbolic.Expr
	Result       Result
	Output       string
}

// Evaluate runs the pipeline and returns only the formatted output.
func (p *Pipeline) Evaluate(raw string) (string, error) {
	trace, err := p.Run(raw)
	if err != nil {
		return "", err
	}
	return trace.Output, nil
}

// Run executes every stage on raw. The returned trace is never nil, and is
// filled up to the stage that failed.
func (p *Pipeline) Run(raw string) (trace *Trace, err error) {
	trace = &Trace{Raw: raw}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Debug("recovered engine panic", zap.Any("panic", r))
			err = fmt.Errorf("%w: %v", ErrEvaluation, r)
		}
	}()

	trace.Sanitized = Sanitize(raw)
	p.logger.Debug("sanitized", zap.String("text", trace.Sanitized))
	if trace.Sanitized == "" {
		return trace, ErrNothingToEvaluate
	}

	table := NewPlaceholderMap(uniqueTag(trace.Sanitized, p.cfg.PlaceholderTag))
	trace.Placeholders = table
	trace.Extracted, err = ExtractMatrices(trace.Sanitized, table, p.builder)
	if err != nil {
		return trace, err
	}
	p.logger.Debug("matrices extracted",
		zap.Int("count", table.Len()),
		zap.String("tag", table.Tag()),
		zap.String("text", trace.Extracted))

	trace.Normalized = NormalizeGaps(trace.Extracted, table)

	trace.Tree, trace.Strategy, err = p.builder.Build(trace.Normalized, table)
	if err != nil {
		return trace, err
	}
	p.logger.Debug("built expression",
		zap.String("strategy", trace.Strategy),
		zap.String("tree", trace.Tree.String()))

	trace.Substituted = Resubstitute(trace.Tree, table)

	trace.Forced, err = force(trace.Substituted, p.cfg.forceConfig())
	if err != nil {
		return trace, err
	}
	trace.Result, err = reduce(p.cfg.Mode, trace.Forced)
	if err != nil {
		return trace, err
	}
	trace.Output = trace.Result.Format(p.cfg.DecimalPlaces)
	p.logger.Debug("evaluated", zap.String("mode", string(p.cfg.Mode)), zap.String("output", trace.Output))
	return trace, nil
}
