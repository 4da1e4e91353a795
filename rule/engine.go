package rule

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jvitoroc/gorule/eval"
)

// Frontend turns source text into zero or more candidate parses. Only the
// first candidate is evaluated.
type Frontend interface {
	Parse(source string) ([]Candidate, error)
}

type FrontendFunc func(source string) ([]Candidate, error)

func (f FrontendFunc) Parse(source string) ([]Candidate, error) {
	return f(source)
}

type Config struct {
	// MaxDepth bounds the nesting of a condition. Zero means
	// eval.DefaultMaxDepth.
	MaxDepth int
	Logger   *slog.Logger
}

// Engine evaluates programs. It holds no mutable state and may be shared
// between goroutines.
type Engine struct {
	frontend Frontend
	ev       eval.Evaluator
	logger   *slog.Logger
}

func New(frontend Frontend, cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		frontend: frontend,
		ev:       eval.Evaluator{MaxDepth: cfg.MaxDepth},
		logger:   logger,
	}
}

type Result struct {
	Truth bool
	Value float64
}

type ClauseResult struct {
	Index     int
	Condition string
	Result
}

// Trace records how a program was evaluated.
type Trace struct {
	ID      uuid.UUID
	Clauses []ClauseResult
	Else    Result
	// Selected is the index of the clause whose value was returned, or -1
	// when no IF clause held and the ELSE value was returned.
	Selected int
	Value    float64
}

// Evaluate parses source and returns the value of the last IF clause whose
// condition holds, or the ELSE value if none does.
func (e *Engine) Evaluate(ctx context.Context, source string, values eval.Bindings) (float64, error) {
	tr, err := e.Trace(ctx, source, values)
	if err != nil {
		return 0, err
	}

	return tr.Value, nil
}

// Trace is like Evaluate but reports the result of every clause.
func (e *Engine) Trace(ctx context.Context, source string, values eval.Bindings) (*Trace, error) {
	p, err := e.parse(source)
	if err != nil {
		return nil, err
	}

	return e.trace(ctx, p, values)
}

// Run evaluates an already parsed program.
func (e *Engine) Run(ctx context.Context, p Program, values eval.Bindings) (float64, error) {
	tr, err := e.trace(ctx, p, values)
	if err != nil {
		return 0, err
	}

	return tr.Value, nil
}

func (e *Engine) parse(source string) (Program, error) {
	if e.frontend == nil {
		return Program{}, fmt.Errorf("%w: no frontend configured", ErrEmptyOrInvalidInput)
	}

	candidates, err := e.frontend.Parse(source)
	if err != nil {
		return Program{}, fmt.Errorf("%w: %w", ErrEmptyOrInvalidInput, err)
	}

	if len(candidates) == 0 {
		return Program{}, ErrEmptyOrInvalidInput
	}

	return candidates[0].Program()
}

func (e *Engine) trace(ctx context.Context, p Program, values eval.Bindings) (*Trace, error) {
	if len(p.IfClauses) == 0 {
		return nil, fmt.Errorf("%w: at least one IF statement is required", ErrMalformedClause)
	}

	tr := &Trace{
		ID:       uuid.New(),
		Clauses:  make([]ClauseResult, 0, len(p.IfClauses)),
		Selected: -1,
	}

	for i, c := range p.IfClauses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r, err := e.EvaluateIf(c, values)
		if err != nil {
			return nil, fmt.Errorf("IF statement %d: %w", i+1, err)
		}

		tr.Clauses = append(tr.Clauses, ClauseResult{Index: i, Condition: c.Condition.String(), Result: r})
		e.logger.Debug("evaluated IF statement", "trace", tr.ID, "index", i, "truth", r.Truth, "value", r.Value)
	}

	r, err := EvaluateElse(p.Else)
	if err != nil {
		return nil, err
	}

	tr.Else = r
	tr.Value = r.Value

	for i := len(tr.Clauses) - 1; i >= 0; i-- {
		if tr.Clauses[i].Truth {
			tr.Selected = i
			tr.Value = tr.Clauses[i].Value
			break
		}
	}

	e.logger.Debug("evaluated program", "trace", tr.ID, "selected", tr.Selected, "value", tr.Value)

	return tr, nil
}

// EvaluateIf checks the clause keywords and evaluates its condition.
func (e *Engine) EvaluateIf(c IfClause, values eval.Bindings) (Result, error) {
	if kw := c.Token.Keyword(); kw != KeywordIf {
		return Result{}, fmt.Errorf("%w: expected %s at %s, got '%s'", ErrMalformedClause, KeywordIf, c.Token.Position, kw)
	}

	value, err := c.Return.Value()
	if err != nil {
		return Result{}, err
	}

	expr, err := e.ev.Normalize(c.Condition)
	if err != nil {
		return Result{}, err
	}

	truth, err := e.ev.Evaluate(expr, values)
	if err != nil {
		return Result{}, err
	}

	return Result{Truth: truth, Value: value}, nil
}

// EvaluateElse checks the clause keywords and returns its value. The ELSE
// clause always holds.
func EvaluateElse(c ElseClause) (Result, error) {
	if kw := c.Token.Keyword(); kw != KeywordElse {
		return Result{}, fmt.Errorf("%w: expected %s at %s, got '%s'", ErrMalformedClause, KeywordElse, c.Token.Position, kw)
	}

	value, err := c.Return.Value()
	if err != nil {
		return Result{}, err
	}

	return Result{Truth: true, Value: value}, nil
}
