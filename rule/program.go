package rule

import (
	"fmt"
	"math"

	"github.com/jvitoroc/gorule/eval"
)

const (
	KeywordIf     = "IF"
	KeywordElse   = "ELSE"
	KeywordReturn = "RETURN"
)

type ReturnStmt struct {
	ReturnToken Token
	ValueToken  Token
}

// Value checks the RETURN keyword and converts the value token to a number.
func (r ReturnStmt) Value() (float64, error) {
	if kw := r.ReturnToken.Keyword(); kw != KeywordReturn {
		return 0, fmt.Errorf("%w: expected %s at %s, got '%s'", ErrMalformedReturn, KeywordReturn, r.ReturnToken.Position, kw)
	}

	v := eval.ToNumber(r.ValueToken.Value)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: '%s' at %s is not a number", ErrMalformedReturn, r.ValueToken.Text, r.ValueToken.Position)
	}

	return v, nil
}

type IfClause struct {
	Token     Token
	Condition eval.Expression
	Return    ReturnStmt
}

type ElseClause struct {
	Token  Token
	Return ReturnStmt
}

// Program is an ordered list of IF clauses closed by a single ELSE clause.
type Program struct {
	IfClauses []IfClause
	Else      ElseClause
}

// IfGroup is how a Frontend delivers an IF clause: wrapped in a group that
// must hold exactly one clause.
type IfGroup []IfClause

// Candidate is one parse of a source text.
type Candidate struct {
	IfClauses []IfGroup
	Else      ElseClause
}

// Program unwraps the IF groups of c.
func (c Candidate) Program() (Program, error) {
	p := Program{
		IfClauses: make([]IfClause, 0, len(c.IfClauses)),
		Else:      c.Else,
	}

	for i, g := range c.IfClauses {
		if len(g) != 1 {
			return Program{}, fmt.Errorf("%w: IF statement %d is wrapped with %d clauses, expected 1", ErrMalformedClause, i+1, len(g))
		}

		p.IfClauses = append(p.IfClauses, g[0])
	}

	if len(p.IfClauses) == 0 {
		return Program{}, fmt.Errorf("%w: at least one IF statement is required", ErrMalformedClause)
	}

	return p, nil
}
