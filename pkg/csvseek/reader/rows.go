package reader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/iamhimansu/csvseek/pkg/csvseek/parser"
	"github.com/iamhimansu/csvseek/pkg/csvseek/types"
)

// RowReader returns lines of a delimited file as rows keyed by header name.
// Row numbers exclude the header line when the file has one.
type RowReader struct {
	lines     *Reader
	parser    *parser.Parser
	hasHeader bool

	mu      sync.RWMutex
	headers []string
}

// NewRowReader indexes path and, unless WithHeader(false) is given, reads
// line 0 as the header row.
func NewRowReader(path string, opts ...Option) (*RowReader, error) {
	cfg := buildConfig(opts)
	dialect, err := cfg.Dialect()
	if err != nil {
		return nil, err
	}
	p, err := parser.New(dialect)
	if err != nil {
		return nil, err
	}

	lines, err := newReader(path, cfg)
	if err != nil {
		return nil, err
	}

	r := &RowReader{
		lines:     lines,
		parser:    p,
		hasHeader: cfg.HasHeader,
	}
	if !cfg.HasHeader {
		return r, nil
	}

	headers, err := r.parseLine(0)
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	if err := validateHeaders(headers); err != nil {
		return nil, &types.ParseError{Line: 0, Err: err}
	}
	r.headers = headers
	cfg.Logger.Debug("%s: %d header fields", path, len(headers))
	return r, nil
}

// SetHeaders replaces the field names. names must be non-empty and unique;
// the slice is copied.
func (r *RowReader) SetHeaders(names []string) error {
	if names == nil {
		return fmt.Errorf("%w: header list is nil", types.ErrInvalidHeaders)
	}
	if err := validateHeaders(names); err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidHeaders, err)
	}

	headers := make([]string, len(names))
	copy(headers, names)

	r.mu.Lock()
	r.headers = headers
	r.mu.Unlock()
	return nil
}

// Headers returns a copy of the current field names, or nil if none are set.
func (r *RowReader) Headers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.headers == nil {
		return nil
	}
	out := make([]string, len(r.headers))
	copy(out, r.headers)
	return out
}

func (r *RowReader) Dialect() types.Dialect {
	return r.parser.Dialect()
}

// Len returns the number of data rows.
func (r *RowReader) Len() int {
	n := r.lines.Len()
	if r.hasHeader && n > 0 {
		n--
	}
	return n
}

// GetRow returns data row n (0-based, header excluded).
func (r *RowReader) GetRow(n int) (*Row, error) {
	headers, err := r.currentHeaders()
	if err != nil {
		return nil, err
	}
	return r.row(headers, n)
}

// GetRows fetches several rows concurrently, in request order. The header set
// in effect when the call starts is used for every row.
func (r *RowReader) GetRows(ctx context.Context, numbers []int) ([]*Row, error) {
	headers, err := r.currentHeaders()
	if err != nil {
		return nil, err
	}

	lineNumbers := make([]int, len(numbers))
	for i, n := range numbers {
		line, err := r.lineNumber(n)
		if err != nil {
			return nil, err
		}
		lineNumbers[i] = line
	}
	raw, err := r.lines.GetLines(ctx, lineNumbers)
	if err != nil {
		return nil, err
	}

	rows := make([]*Row, len(raw))
	for i, line := range raw {
		values, err := r.split(lineNumbers[i], line)
		if err != nil {
			return nil, err
		}
		row, err := pair(headers, values, lineNumbers[i])
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	return rows, nil
}

func (r *RowReader) currentHeaders() ([]string, error) {
	r.mu.RLock()
	headers := r.headers
	r.mu.RUnlock()
	if len(headers) == 0 {
		return nil, types.ErrState
	}
	return headers, nil
}

// lineNumber range checks row n and maps it onto the file, skipping the
// header line.
func (r *RowReader) lineNumber(n int) (int, error) {
	if count := r.Len(); n < 0 || n >= count {
		return 0, &types.RangeError{Line: n, Count: count}
	}
	if r.hasHeader {
		return n + 1, nil
	}
	return n, nil
}

func (r *RowReader) row(headers []string, n int) (*Row, error) {
	line, err := r.lineNumber(n)
	if err != nil {
		return nil, err
	}
	values, err := r.parseLine(line)
	if err != nil {
		return nil, err
	}
	return pair(headers, values, line)
}

func (r *RowReader) parseLine(n int) ([]string, error) {
	raw, err := r.lines.GetLine(n)
	if err != nil {
		return nil, err
	}
	return r.split(n, raw)
}

func (r *RowReader) split(n int, raw []byte) ([]string, error) {
	values, err := r.parser.Split(raw)
	if err != nil {
		var pe *types.ParseError
		if errors.As(err, &pe) {
			pe.Line = n
		}
		return nil, err
	}
	return values, nil
}

func pair(headers, values []string, line int) (*Row, error) {
	if len(values) != len(headers) {
		return nil, &types.ParseError{
			Line: line,
			Err:  fmt.Errorf("%w: got %d, want %d", types.ErrFieldCount, len(values), len(headers)),
		}
	}
	return newRow(headers, values), nil
}

func validateHeaders(names []string) error {
	if len(names) == 0 {
		return types.ErrNoFields
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %q", types.ErrDuplicateField, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
