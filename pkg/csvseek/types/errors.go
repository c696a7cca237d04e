package types

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every error returned by the readers wraps one of these, so
// callers can branch with errors.Is.
var (
	// ErrConfiguration is returned for invalid construction parameters, such as
	// a delimiter longer than one byte.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrOutOfRange is returned when a line or row number is negative or past
	// the end of the index.
	ErrOutOfRange = errors.New("line number out of range")

	// ErrState is returned when a row is requested before any headers exist.
	ErrState = errors.New("headers must be set before requesting a row")

	// ErrParse is returned when a line violates the dialect or its field count
	// does not match the headers.
	ErrParse = errors.New("parse error")

	// ErrInvalidHeaders is returned by SetHeaders for an unusable header list.
	ErrInvalidHeaders = errors.New("invalid headers")
)

// Quoting failures reported inside a ParseError.
var (
	ErrBareQuote         = errors.New("bare quote in unquoted field")
	ErrUnterminatedQuote = errors.New("unterminated quoted field")
	ErrQuoteNotFollowed  = errors.New("delimiter expected after closing quote")
	ErrFieldCount        = errors.New("wrong number of fields")
	ErrNoFields          = errors.New("no field names")
	ErrDuplicateField    = errors.New("duplicate field name")
)

// RangeError reports a lookup outside [0, Count).
type RangeError struct {
	Line  int
	Count int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("line %d out of range [0, %d)", e.Line, e.Count)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// ParseError reports where a line failed to parse. Line is -1 when the text
// did not come from an indexed line. Column is the 1-based byte position, or
// 0 when the line as a whole has the wrong shape.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line < 0:
		return fmt.Sprintf("parse error on column %d: %v", e.Column, e.Err)
	case e.Column == 0:
		return fmt.Sprintf("parse error on line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

// Unwrap exposes both ErrParse and the specific cause.
func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }
