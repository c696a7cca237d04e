package types

import "fmt"

// LineRecord locates one delimiter-terminated line in the source file.
// Length excludes the delimiter itself.
type LineRecord struct {
	Offset int64 `json:"offset"`
	Length int64 `json:"length"`
}

// End returns the offset of the delimiter that terminates the line.
func (r LineRecord) End() int64 {
	return r.Offset + r.Length
}

// QuotingMode controls how fields are quoted when a row is rendered.
type QuotingMode int

const (
	// QuoteAll wraps every field in the quote character.
	QuoteAll QuotingMode = iota
)

// Dialect describes how a raw line is split into fields. It is a plain value:
// copy it freely, it is never shared between readers by reference.
type Dialect struct {
	FieldDelimiter byte
	QuoteChar      byte
	LineTerminator byte
	Quoting        QuotingMode
}

// DefaultDialect returns the comma separated, double quoted dialect.
func DefaultDialect() Dialect {
	return Dialect{
		FieldDelimiter: DefaultFieldDelimiter,
		QuoteChar:      DefaultQuoteChar,
		LineTerminator: DefaultLineDelimiter,
		Quoting:        QuoteAll,
	}
}

// Validate rejects dialects whose special characters collide.
func (d Dialect) Validate() error {
	switch {
	case d.FieldDelimiter == d.QuoteChar:
		return fmt.Errorf("%w: field delimiter and quote character are both %q", ErrConfiguration, d.FieldDelimiter)
	case d.FieldDelimiter == d.LineTerminator:
		return fmt.Errorf("%w: field delimiter and line terminator are both %q", ErrConfiguration, d.FieldDelimiter)
	case d.QuoteChar == d.LineTerminator:
		return fmt.Errorf("%w: quote character and line terminator are both %q", ErrConfiguration, d.QuoteChar)
	// a trailing '\r' is stripped from '\n' terminated lines
	case d.LineTerminator == '\n' && d.FieldDelimiter == '\r':
		return fmt.Errorf("%w: field delimiter %q is reserved when lines end in %q", ErrConfiguration, d.FieldDelimiter, d.LineTerminator)
	case d.LineTerminator == '\n' && d.QuoteChar == '\r':
		return fmt.Errorf("%w: quote character %q is reserved when lines end in %q", ErrConfiguration, d.QuoteChar, d.LineTerminator)
	}
	return nil
}

// ParseDelimiter converts a user supplied delimiter into the single byte the
// indexer and parser work with.
func ParseDelimiter(name, s string) (byte, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("%w: %s must be exactly one byte, got %q", ErrConfiguration, name, s)
	}
	return s[0], nil
}
