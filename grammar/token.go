package grammar

import (
	"slices"
	"strconv"

	"github.com/jvitoroc/gorule/rule"
)

type token struct {
	_type    tokenType
	strValue string
	goValue  any

	line   int
	column int
	offset int
}

var tokenNoop token

func (tk *token) isLeftParenthesis() bool {
	return tk._type == leftParenthesis
}

func (tk *token) isRightParenthesis() bool {
	return tk._type == rightParenthesis
}

var (
	logicalOperators    = []tokenType{and, or}
	comparisonOperators = []tokenType{equal, greaterEqual, greater, less, lessEqual}
	operands            = []tokenType{identifier, numberLiteral, isMissing}
)

func (tk *token) isLogicalOperator() bool {
	return slices.Contains(logicalOperators, tk._type)
}

func (tk *token) isComparisonOperator() bool {
	return slices.Contains(comparisonOperators, tk._type)
}

func (tk *token) isOperand() bool {
	return slices.Contains(operands, tk._type)
}

func (tk *token) convertToGoType() (v any, err error) {
	switch tk._type {
	case numberLiteral:
		v, err = strconv.ParseFloat(tk.strValue, 64)
	default:
		v = tk.strValue
	}

	return
}

func (tk *token) export() rule.Token {
	return rule.Token{
		Kind:  string(tk._type),
		Text:  tk.strValue,
		Value: tk.goValue,
		Position: rule.Position{
			Line:   tk.line,
			Column: tk.column,
			Offset: tk.offset,
		},
	}
}

// describe names the token for error messages.
func (tk *token) describe() string {
	if *tk == tokenNoop {
		return "end of input"
	}

	return "'" + tk.strValue + "'"
}
