package eval

import "fmt"

type Operator string
type ConditionalKind string

const (
	Greater      Operator = ">"
	GreaterEqual Operator = ">="
	Less         Operator = "<"
	LessEqual    Operator = "<="
	Equal        Operator = "=="
)

const (
	And ConditionalKind = "AND"
	Or  ConditionalKind = "OR"
)

// Bindings maps identifiers to their values. A missing key, or a key bound to
// nil, means the identifier is undefined.
type Bindings map[string]any

// Expression is a node of a condition tree. The concrete types are Relational,
// IsMissing, Conditional, Group and Binary.
type Expression interface {
	fmt.Stringer
	expression()
}

// Relational compares an identifier against a literal, e.g. x >= 10.
type Relational struct {
	Left  string
	Op    Operator
	Right string
}

// IsMissing is the IS_MISSING(identifier) predicate.
type IsMissing struct {
	Identifier string
}

// Conditional is the right hand side of an AND/OR combination. It is only
// meaningful as the Right field of a Binary.
type Conditional struct {
	Kind    ConditionalKind
	Operand Expression
}

// Group is a parenthesized expression. Normalization removes every Group.
type Group struct {
	Inner Expression
}

// Binary combines Left with the continuation in Right.
type Binary struct {
	Left  Expression
	Right Conditional
}

func (Relational) expression()  {}
func (IsMissing) expression()   {}
func (Conditional) expression() {}
func (Group) expression()       {}
func (Binary) expression()      {}

func (r Relational) String() string {
	return fmt.Sprintf("%s %s %s", r.Left, r.Op, r.Right)
}

func (m IsMissing) String() string {
	return fmt.Sprintf("IS_MISSING(%s)", m.Identifier)
}

func (c Conditional) String() string {
	return fmt.Sprintf("%s %s", c.Kind, stringOrNil(c.Operand))
}

func (g Group) String() string {
	return "(" + stringOrNil(g.Inner) + ")"
}

func (b Binary) String() string {
	return stringOrNil(b.Left) + " " + b.Right.String()
}

func stringOrNil(expr Expression) string {
	if expr == nil {
		return "<nil>"
	}

	return expr.String()
}
