package grammar

import (
	"fmt"

	"github.com/jvitoroc/gorule/eval"
	"github.com/jvitoroc/gorule/rule"
)

// ParseError reports a syntax error at a 1-based line and column. Err, when
// set, classifies the error, e.g. eval.ErrRecursionDepthExceeded.
type ParseError struct {
	Line   int
	Column int
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type parser struct {
	t         *tokenizer
	lookahead token
	maxDepth  int
}

func newParser(source string, maxDepth int) *parser {
	return &parser{t: newTokenizer(source), maxDepth: maxDepth}
}

func (p *parser) parse() (rule.Candidate, error) {
	err := p.moveToNextToken()
	if err != nil {
		return rule.Candidate{}, err
	}

	return p.program()
}

func (p *parser) program() (rule.Candidate, error) {
	c := rule.Candidate{
		IfClauses: []rule.IfGroup{},
	}

	for p.lookahead._type == ifKeyword {
		clause, err := p.ifClause()
		if err != nil {
			return rule.Candidate{}, err
		}

		c.IfClauses = append(c.IfClauses, rule.IfGroup{clause})
	}

	if len(c.IfClauses) == 0 {
		return rule.Candidate{}, p.errorf("expected IF statement, but got %s", p.lookahead.describe())
	}

	if p.lookahead._type != elseKeyword {
		return rule.Candidate{}, p.errorf("expected IF or ELSE statement, but got %s", p.lookahead.describe())
	}

	elseClause, err := p.elseClause()
	if err != nil {
		return rule.Candidate{}, err
	}

	c.Else = elseClause

	if p.lookahead != tokenNoop {
		return rule.Candidate{}, p.errorf("expected end of input after ELSE statement, but got %s", p.lookahead.describe())
	}

	return c, nil
}

func (p *parser) ifClause() (rule.IfClause, error) {
	tk, err := p.consume()
	if err != nil {
		return rule.IfClause{}, err
	}

	if !p.lookahead.isLeftParenthesis() {
		return rule.IfClause{}, p.errorf("expected opening parenthesis after IF, but got %s", p.lookahead.describe())
	}

	body, err := p.conditionBody()
	if err != nil {
		return rule.IfClause{}, err
	}

	if len(body) == 0 {
		return rule.IfClause{}, &ParseError{Line: tk.line, Column: tk.column, Msg: "IF statement has an empty condition"}
	}

	cond, err := newConditionParser(body, p.maxDepth).parse()
	if err != nil {
		return rule.IfClause{}, err
	}

	ret, err := p.returnStatement()
	if err != nil {
		return rule.IfClause{}, err
	}

	return rule.IfClause{
		Token:     tk.export(),
		Condition: cond,
		Return:    ret,
	}, nil
}

func (p *parser) elseClause() (rule.ElseClause, error) {
	tk, err := p.consume()
	if err != nil {
		return rule.ElseClause{}, err
	}

	ret, err := p.returnStatement()
	if err != nil {
		return rule.ElseClause{}, err
	}

	return rule.ElseClause{
		Token:  tk.export(),
		Return: ret,
	}, nil
}

func (p *parser) returnStatement() (rule.ReturnStmt, error) {
	if p.lookahead._type != returnKeyword {
		return rule.ReturnStmt{}, p.errorf("expected RETURN, but got %s", p.lookahead.describe())
	}

	returnTk, err := p.consume()
	if err != nil {
		return rule.ReturnStmt{}, err
	}

	if p.lookahead._type != numberLiteral {
		return rule.ReturnStmt{}, p.errorf("expected a number after RETURN, but got %s", p.lookahead.describe())
	}

	valueTk, err := p.consume()
	if err != nil {
		return rule.ReturnStmt{}, err
	}

	return rule.ReturnStmt{
		ReturnToken: returnTk.export(),
		ValueToken:  valueTk.export(),
	}, nil
}

// conditionBody consumes a parenthesized condition and returns the tokens
// between its outer parentheses.
func (p *parser) conditionBody() ([]token, error) {
	unclosedParentheses := stack[token]{}
	body := make([]token, 0)

	for {
		if p.lookahead == tokenNoop {
			tk := unclosedParentheses.pop()
			return nil, &ParseError{Line: tk.line, Column: tk.column, Msg: "opening parenthesis is missing its closing parenthesis"}
		}

		tk, err := p.consume()
		if err != nil {
			return nil, err
		}

		if tk.isLeftParenthesis() {
			unclosedParentheses.push(tk)
		} else if tk.isRightParenthesis() {
			unclosedParentheses.pop()
		}

		if len(unclosedParentheses) == 0 {
			break
		}

		body = append(body, tk)
	}

	// drop the opening parenthesis of the clause
	return body[1:], nil
}

func (p *parser) moveToNextToken() error {
	tk, err := p.t.getNextToken()
	if err != nil {
		return err
	}

	p.lookahead = *tk
	return nil
}

func (p *parser) consume() (token, error) {
	t := p.lookahead

	err := p.moveToNextToken()
	if err != nil {
		return tokenNoop, err
	}

	return t, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Line: p.validLine(), Column: p.validColumn(), Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) validLine() int {
	if p.lookahead.line > 0 {
		return p.lookahead.line
	}

	return p.t.line
}

func (p *parser) validColumn() int {
	if p.lookahead.column > 0 {
		return p.lookahead.column
	}

	return p.t.column
}

// conditionParser builds the raw condition tree. Parentheses become
// eval.Group nodes and every AND/OR becomes an eval.Binary whose left side
// holds everything parsed so far, with AND binding tighter than OR.
type conditionParser struct {
	tokens   []token
	pos      int
	maxDepth int
}

func newConditionParser(tokens []token, maxDepth int) *conditionParser {
	return &conditionParser{tokens: tokens, maxDepth: maxDepth}
}

func (c *conditionParser) parse() (eval.Expression, error) {
	expr, err := c.orExpr(0)
	if err != nil {
		return nil, err
	}

	if c.pos < len(c.tokens) {
		tk := c.next()
		msg, ok := c.misplaced(tk)
		if !ok {
			msg = fmt.Sprintf("unexpected %s", tk.describe())
		}

		return nil, &ParseError{Line: tk.line, Column: tk.column, Msg: msg}
	}

	return expr, nil
}

func (c *conditionParser) peek() token {
	if c.pos >= len(c.tokens) {
		return tokenNoop
	}

	return c.tokens[c.pos]
}

func (c *conditionParser) next() token {
	tk := c.peek()
	if c.pos < len(c.tokens) {
		c.pos++
	}

	return tk
}

func (c *conditionParser) orExpr(depth int) (eval.Expression, error) {
	left, err := c.andExpr(depth)
	if err != nil {
		return nil, err
	}

	for c.peek()._type == or {
		c.next()

		right, err := c.andExpr(depth)
		if err != nil {
			return nil, err
		}

		left = eval.Binary{Left: left, Right: eval.Conditional{Kind: eval.Or, Operand: right}}
	}

	return left, nil
}

func (c *conditionParser) andExpr(depth int) (eval.Expression, error) {
	left, err := c.primary(depth)
	if err != nil {
		return nil, err
	}

	for c.peek()._type == and {
		c.next()

		right, err := c.primary(depth)
		if err != nil {
			return nil, err
		}

		left = eval.Binary{Left: left, Right: eval.Conditional{Kind: eval.And, Operand: right}}
	}

	return left, nil
}

func (c *conditionParser) primary(depth int) (eval.Expression, error) {
	tk := c.next()

	switch {
	case tk.isLeftParenthesis():
		if depth >= c.maxDepth {
			return nil, &ParseError{
				Line:   tk.line,
				Column: tk.column,
				Msg:    fmt.Sprintf("parentheses nested deeper than %d", c.maxDepth),
				Err:    eval.ErrRecursionDepthExceeded,
			}
		}

		inner, err := c.orExpr(depth + 1)
		if err != nil {
			return nil, err
		}

		if _, err := c.expect(rightParenthesis, "closing parenthesis"); err != nil {
			return nil, err
		}

		return eval.Group{Inner: inner}, nil
	case tk._type == isMissing:
		if _, err := c.expect(leftParenthesis, "opening parenthesis after IS_MISSING"); err != nil {
			return nil, err
		}

		id, err := c.expect(identifier, "identifier")
		if err != nil {
			return nil, err
		}

		if _, err := c.expect(rightParenthesis, "closing parenthesis"); err != nil {
			return nil, err
		}

		return eval.IsMissing{Identifier: id.strValue}, nil
	case tk._type == identifier:
		op := c.next()
		if !op.isComparisonOperator() {
			return nil, c.unexpected(op, "comparison operator")
		}

		lit, err := c.expect(numberLiteral, "number")
		if err != nil {
			return nil, err
		}

		return eval.Relational{Left: tk.strValue, Op: eval.Operator(op.strValue), Right: lit.strValue}, nil
	}

	return nil, c.unexpected(tk, "expression")
}

func (c *conditionParser) expect(_type tokenType, what string) (token, error) {
	tk := c.next()
	if tk._type != _type {
		return tokenNoop, c.unexpected(tk, what)
	}

	return tk, nil
}

func (c *conditionParser) unexpected(tk token, what string) error {
	if tk == tokenNoop {
		last := c.tokens[len(c.tokens)-1]
		return &ParseError{Line: last.line, Column: last.column, Msg: fmt.Sprintf("expected %s, but the condition ended", what)}
	}

	if msg, ok := c.misplaced(tk); ok {
		return &ParseError{Line: tk.line, Column: tk.column, Msg: msg}
	}

	return &ParseError{Line: tk.line, Column: tk.column, Msg: fmt.Sprintf("expected %s, but got %s", what, tk.describe())}
}

// misplaced describes tk, the token consumed last, when it cannot follow the
// parenthesis before it.
func (c *conditionParser) misplaced(tk token) (string, bool) {
	if c.pos < 2 {
		return "", false
	}

	previous := c.tokens[c.pos-2]
	switch {
	case previous.isLeftParenthesis() && tk.isRightParenthesis():
		return "empty parentheses", true
	case previous.isLeftParenthesis() && tk.isLogicalOperator():
		return "an operator is not allowed after an opening parenthesis", true
	case previous.isRightParenthesis() && (tk.isOperand() || tk.isLeftParenthesis()):
		return "an operand is not allowed after a closing parenthesis", true
	}

	return "", false
}
