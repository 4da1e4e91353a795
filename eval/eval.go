package eval

import (
	"fmt"
)

// Evaluate evaluates a normalized expression against values.
func Evaluate(expr Expression, values Bindings) (bool, error) {
	return Evaluator{}.Evaluate(expr, values)
}

// Evaluate evaluates a normalized expression against values. Both sides of
// AND and OR are always evaluated, so an error on either side fails the whole
// evaluation.
func (ev Evaluator) Evaluate(expr Expression, values Bindings) (bool, error) {
	return ev.evaluate(expr, values, 0)
}

func (ev Evaluator) evaluate(expr Expression, values Bindings, depth int) (bool, error) {
	if depth > ev.maxDepth() {
		return false, fmt.Errorf("%w: nesting deeper than %d", ErrRecursionDepthExceeded, ev.maxDepth())
	}

	switch e := expr.(type) {
	case Relational:
		return evaluateRelational(e, values)
	case IsMissing:
		return evaluateIsMissing(e, values), nil
	case Binary:
		return ev.evaluateBinary(e, values, depth)
	case Group:
		return false, fmt.Errorf("%w: '%s' is not normalized", ErrMalformedExpression, e)
	case Conditional:
		return false, fmt.Errorf("%w: '%s' has no left operand", ErrMalformedExpression, e)
	case nil:
		return false, fmt.Errorf("%w: empty expression", ErrMalformedExpression)
	}

	return false, fmt.Errorf("%w: unknown expression type %T", ErrMalformedExpression, expr)
}

func (ev Evaluator) evaluateBinary(expr Binary, values Bindings, depth int) (bool, error) {
	head, chain := spine(expr)
	for _, c := range chain {
		if c.Kind != And && c.Kind != Or {
			return false, &InvalidConditionalTypeError{Kind: c.Kind}
		}
	}

	acc, err := ev.evaluate(head, values, depth)
	if err != nil {
		return false, err
	}

	for i := len(chain) - 1; i >= 0; i-- {
		right, err := ev.evaluate(chain[i].Operand, values, depth+1)
		if err != nil {
			return false, err
		}

		if chain[i].Kind == And {
			acc = acc && right
		} else {
			acc = acc || right
		}
	}

	return acc, nil
}

func evaluateRelational(expr Relational, values Bindings) (bool, error) {
	v, ok := lookup(values, expr.Left)
	if !ok {
		return false, &UnboundVariableError{Name: expr.Left, Expr: expr}
	}

	l := ToNumber(v)
	r := ToNumber(expr.Right)

	switch expr.Op {
	case Greater:
		return l > r, nil
	case GreaterEqual:
		return l >= r, nil
	case Less:
		return l < r, nil
	case LessEqual:
		return l <= r, nil
	case Equal:
		return l == r, nil
	}

	return false, &UnsupportedOperatorError{Op: expr.Op}
}

// evaluateIsMissing treats 99 and 999 as missing-markers in addition to
// undefined identifiers.
func evaluateIsMissing(expr IsMissing, values Bindings) bool {
	v, ok := lookup(values, expr.Identifier)
	if !ok {
		return true
	}

	return looselyEquals(v, 99) || looselyEquals(v, 999)
}

func lookup(values Bindings, identifier string) (any, bool) {
	v, ok := values[identifier]
	if !ok || v == nil {
		return nil, false
	}

	return v, true
}
