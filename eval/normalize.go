package eval

import "fmt"

// DefaultMaxDepth is the nesting ceiling used when an Evaluator has none set.
const DefaultMaxDepth = 512

// Evaluator normalizes and evaluates condition trees. The zero value is ready
// to use.
type Evaluator struct {
	// MaxDepth bounds the nesting of groups and of conditional operands.
	// Chains of AND/OR are flat and do not count. Zero means
	// DefaultMaxDepth.
	MaxDepth int
}

func (ev Evaluator) maxDepth() int {
	if ev.MaxDepth <= 0 {
		return DefaultMaxDepth
	}

	return ev.MaxDepth
}

// Normalize returns expr with every Group removed, so the result is either a
// leaf or a Binary whose left side and conditional operand are themselves
// normalized. expr is not modified.
func Normalize(expr Expression) (Expression, error) {
	return Evaluator{}.Normalize(expr)
}

func (ev Evaluator) Normalize(expr Expression) (Expression, error) {
	return ev.normalize(expr, 0)
}

func (ev Evaluator) normalize(expr Expression, depth int) (Expression, error) {
	if depth > ev.maxDepth() {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrRecursionDepthExceeded, ev.maxDepth())
	}

	switch e := expr.(type) {
	case Relational, IsMissing:
		return e, nil
	case Group:
		return ev.normalize(e.Inner, depth+1)
	case Binary:
		return ev.normalizeBinary(e, depth)
	case Conditional:
		return nil, fmt.Errorf("%w: '%s' has no left operand", ErrMalformedExpression, e)
	case nil:
		return nil, fmt.Errorf("%w: empty expression", ErrMalformedExpression)
	}

	return nil, fmt.Errorf("%w: unknown expression type %T", ErrMalformedExpression, expr)
}

func (ev Evaluator) normalizeBinary(expr Binary, depth int) (Expression, error) {
	head, chain := spine(expr)

	acc, err := ev.normalize(head, depth)
	if err != nil {
		return nil, err
	}

	for i := len(chain) - 1; i >= 0; i-- {
		c := chain[i]

		operand, err := ev.normalize(c.Operand, depth+operandDepth(c.Operand))
		if err != nil {
			return nil, err
		}

		acc = Binary{Left: acc, Right: Conditional{Kind: c.Kind, Operand: operand}}
	}

	return acc, nil
}

// spine unwinds the left-nested Binary chain of expr. It returns the leftmost
// operand and the conditionals from the outermost one inwards.
func spine(expr Binary) (Expression, []Conditional) {
	var chain []Conditional

	var head Expression = expr
	for {
		b, ok := head.(Binary)
		if !ok {
			return head, chain
		}

		chain = append(chain, b.Right)
		head = b.Left
	}
}

// operandDepth is the depth added by descending into a conditional operand.
// A Group counts its own level.
func operandDepth(operand Expression) int {
	if _, ok := operand.(Group); ok {
		return 0
	}

	return 1
}
