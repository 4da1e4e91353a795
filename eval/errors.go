package eval

import (
	"errors"
	"fmt"
)

var (
	ErrUnboundVariable        = errors.New("unbound variable")
	ErrUnsupportedOperator    = errors.New("unsupported operator")
	ErrInvalidConditionalType = errors.New("invalid conditional type")
	ErrRecursionDepthExceeded = errors.New("recursion depth exceeded")
	ErrMalformedExpression    = errors.New("malformed expression")
)

// UnboundVariableError is returned when a relational expression references an
// identifier that has no value.
type UnboundVariableError struct {
	Name string
	Expr Relational
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("failed to evaluate '%s': '%s' is not defined", e.Expr, e.Name)
}

func (e *UnboundVariableError) Is(target error) bool {
	return target == ErrUnboundVariable
}

type UnsupportedOperatorError struct {
	Op Operator
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("relational operator '%s' is not supported", e.Op)
}

func (e *UnsupportedOperatorError) Is(target error) bool {
	return target == ErrUnsupportedOperator
}

type InvalidConditionalTypeError struct {
	Kind ConditionalKind
}

func (e *InvalidConditionalTypeError) Error() string {
	return fmt.Sprintf("conditional type must be AND or OR, got '%s'", e.Kind)
}

func (e *InvalidConditionalTypeError) Is(target error) bool {
	return target == ErrInvalidConditionalType
}
