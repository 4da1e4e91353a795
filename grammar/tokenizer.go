package grammar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jvitoroc/gorule/rule"
)

type tokenType string

const (
	ifKeyword        tokenType = "if"
	elseKeyword      tokenType = "else"
	returnKeyword    tokenType = "return"
	isMissing        tokenType = "is_missing"
	and              tokenType = "and"
	or               tokenType = "or"
	numberLiteral    tokenType = "number_literal"
	leftParenthesis  tokenType = "left_parenthesis"
	rightParenthesis tokenType = "right_parenthesis"
	equal            tokenType = "equal"
	greaterEqual     tokenType = "greater_equal"
	greater          tokenType = "greater"
	lessEqual        tokenType = "less_equal"
	less             tokenType = "less"
	identifier       tokenType = "identifier"
	whitespace       tokenType = "whitespace"
	invalid          tokenType = "invalid"
)

type tokenRegexps struct {
	name    tokenType
	regexps []*regexp.Regexp
}

var (
	regexps = []*tokenRegexps{
		{
			name:    isMissing,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^IS_MISSING\b`)},
		},
		{
			name:    ifKeyword,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^IF\b`)},
		},
		{
			name:    elseKeyword,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^ELSE\b`)},
		},
		{
			name:    returnKeyword,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^RETURN\b`)},
		},
		{
			name:    and,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^AND\b`)},
		},
		{
			name:    or,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^OR\b`)},
		},
		{
			name:    numberLiteral,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^[-+]?\d+(\.\d+)?`)},
		},
		{
			name:    leftParenthesis,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^\(`)},
		},
		{
			name:    rightParenthesis,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^\)`)},
		},
		{
			name:    equal,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^==`)},
		},
		{
			name:    greaterEqual,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^>=`)},
		},
		{
			name:    greater,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^>`)},
		},
		{
			name:    lessEqual,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^<=`)},
		},
		{
			name:    less,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^<`)},
		},
		{
			name:    identifier,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^[A-Za-z_]\w*`)},
		},
		{
			name:    whitespace,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^\s+`)},
		},
		{
			name:    invalid,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^.`)},
		},
	}
)

type tokenizer struct {
	source string
	cursor int
	line   int
	column int
}

func newTokenizer(source string) *tokenizer {
	return &tokenizer{source: source, line: 1, column: 1}
}

func (t *tokenizer) getNextToken() (*token, error) {
	if t.cursor >= len(t.source) {
		return &tokenNoop, nil
	}

	s := t.source[t.cursor:]
	match := ""
	var tk *token

	line, column := t.getLineColumn(0)
	offset := t.cursor

	for _, tr := range regexps {
		for _, r := range tr.regexps {
			match = r.FindString(s)
			if match != "" {
				tk = &token{
					_type:    tr.name,
					strValue: match,

					line:   line,
					column: column,
					offset: offset,
				}
				break
			}
		}
		if match != "" {
			break
		}
	}

	if tk == nil {
		return nil, &ParseError{Line: line, Column: column, Msg: "couldn't decipher token"}
	}

	t.cursor += len(match)
	t.line, t.column = t.getLineColumn(0)

	if tk._type == whitespace {
		return t.getNextToken()
	}

	if tk._type == invalid {
		return nil, &ParseError{Line: line, Column: column, Msg: fmt.Sprintf("unexpected character '%s'", tk.strValue)}
	}

	v, err := tk.convertToGoType()
	if err != nil {
		return nil, &ParseError{Line: line, Column: column, Msg: fmt.Sprintf("invalid literal '%s' of type '%s'", tk.strValue, tk._type)}
	}

	tk.goValue = v

	return tk, nil
}

func (t *tokenizer) getLineColumn(skip int) (int, int) {
	skipTotal := t.cursor + skip

	if skipTotal > len(t.source) {
		skipTotal = len(t.source)
	}

	firstHalf := t.source[:skipTotal]

	column := strings.LastIndex(firstHalf, "\n") - len(firstHalf)
	if column > 0 {
		column = 1
	} else {
		column = column * -1
	}

	line := strings.Count(firstHalf, "\n") + 1

	return line, column
}

// Tokenize splits source into tokens.
func Tokenize(source string) ([]rule.Token, error) {
	t := newTokenizer(source)
	tokens := make([]rule.Token, 0)
	for {
		tk, err := t.getNextToken()
		if err != nil {
			return nil, err
		}

		if *tk == tokenNoop {
			break
		}

		tokens = append(tokens, tk.export())
	}

	return tokens, nil
}
