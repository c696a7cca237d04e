package types

const (
	// RecordSize is the size of an encoded line record in bytes
	// Offset(8) + Length(8) = 16 bytes
	RecordSize = 8 + 8

	// DefaultLineDelimiter terminates a line unless configured otherwise
	DefaultLineDelimiter = '\n'

	// DefaultFieldDelimiter separates fields of a delimited row
	DefaultFieldDelimiter = ','

	// DefaultQuoteChar wraps fields that contain delimiters
	DefaultQuoteChar = '"'
)
