package rule

import "fmt"

// Position locates a token in the source. Line and Column are 1-based, Offset
// is the 0-based byte offset.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a lexical atom handed over by a Frontend.
type Token struct {
	Kind     string
	Text     string
	Value    any
	Position Position
}

// Keyword returns the token's value as a string, or its text when the value is
// not a string.
func (tk Token) Keyword() string {
	if s, ok := tk.Value.(string); ok {
		return s
	}

	return tk.Text
}
