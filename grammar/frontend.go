package grammar

import (
	"github.com/jvitoroc/gorule/eval"
	"github.com/jvitoroc/gorule/rule"
)

// Frontend parses rule programs. Every call to Parse uses its own parser, so a
// Frontend can be shared between goroutines.
type Frontend struct {
	// MaxDepth bounds parenthesis nesting. Zero means eval.DefaultMaxDepth.
	MaxDepth int
}

var _ rule.Frontend = Frontend{}

func (f Frontend) Parse(source string) ([]rule.Candidate, error) {
	maxDepth := f.MaxDepth
	if maxDepth <= 0 {
		maxDepth = eval.DefaultMaxDepth
	}

	c, err := newParser(source, maxDepth).parse()
	if err != nil {
		return nil, err
	}

	return []rule.Candidate{c}, nil
}
