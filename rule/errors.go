package rule

import "errors"

var (
	ErrEmptyOrInvalidInput = errors.New("invalid, unexpected or empty input")
	ErrMalformedClause     = errors.New("malformed clause")
	ErrMalformedReturn     = errors.New("malformed return statement")
)
