package parser

import (
	"errors"
	"fmt"

	"github.com/iamhimansu/csvseek/pkg/csvseek/types"
)

// ErrEmbeddedTerminator is returned by Format for a value that contains the
// line terminator. Such a row could not be read back line by line.
var ErrEmbeddedTerminator = errors.New("field contains the line terminator")

type state int

const (
	stateFieldStart state = iota
	stateUnquoted
	stateQuoted
	stateQuoteInQuoted
)

// Parser splits single lines into fields under a fixed dialect. It holds no
// mutable state and is safe for concurrent use.
type Parser struct {
	dialect types.Dialect
}

// New validates d and returns a parser for it.
func New(d types.Dialect) (*Parser, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &Parser{dialect: d}, nil
}

func (p *Parser) Dialect() types.Dialect {
	return p.dialect
}

// Split parses one line. Quoted fields are unwrapped and doubled quotes
// collapse to one. Spaces directly after a delimiter are skipped. Anything
// else that is not well formed is a *types.ParseError with Line set to -1.
// An empty line has no fields.
func (p *Parser) Split(line []byte) ([]string, error) {
	if p.dialect.LineTerminator == '\n' && len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	if len(line) == 0 {
		return []string{}, nil
	}

	sep := p.dialect.FieldDelimiter
	quote := p.dialect.QuoteChar

	fields := make([]string, 0, 8)
	field := make([]byte, 0, 64)
	st := stateFieldStart

	emit := func() {
		fields = append(fields, string(field))
		field = field[:0]
	}

	for i, c := range line {
		switch st {
		case stateFieldStart:
			// leading spaces are skipped before the delimiter check, so a
			// space delimiter collapses runs of spaces
			switch {
			case c == quote:
				st = stateQuoted
			case c == ' ':
			case c == sep:
				emit()
			default:
				field = append(field, c)
				st = stateUnquoted
			}

		case stateUnquoted:
			switch c {
			case sep:
				emit()
				st = stateFieldStart
			case quote:
				return nil, &types.ParseError{Line: -1, Column: i + 1, Err: types.ErrBareQuote}
			default:
				field = append(field, c)
			}

		case stateQuoted:
			if c == quote {
				st = stateQuoteInQuoted
			} else {
				field = append(field, c)
			}

		case stateQuoteInQuoted:
			switch c {
			case quote:
				field = append(field, c)
				st = stateQuoted
			case sep:
				emit()
				st = stateFieldStart
			default:
				return nil, &types.ParseError{Line: -1, Column: i + 1, Err: types.ErrQuoteNotFollowed}
			}
		}
	}

	if st == stateQuoted {
		return nil, &types.ParseError{Line: -1, Column: len(line), Err: types.ErrUnterminatedQuote}
	}
	emit()
	return fields, nil
}

// Format renders values as one line, without terminator, quoting every field.
func (p *Parser) Format(values []string) ([]byte, error) {
	quote := p.dialect.QuoteChar
	out := make([]byte, 0, 64)
	for i, v := range values {
		if i > 0 {
			out = append(out, p.dialect.FieldDelimiter)
		}
		out = append(out, quote)
		for j := 0; j < len(v); j++ {
			c := v[j]
			if c == p.dialect.LineTerminator {
				return nil, fmt.Errorf("%w: field %d", ErrEmbeddedTerminator, i)
			}
			if c == quote {
				out = append(out, quote)
			}
			out = append(out, c)
		}
		out = append(out, quote)
	}
	return out, nil
}
