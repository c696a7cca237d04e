package index

import (
	"bufio"
	"fmt"
	"io"

	"github.com/iamhimansu/csvseek/pkg/csvseek/storage"
	"github.com/iamhimansu/csvseek/pkg/csvseek/types"
)

const readBufferSize = 64 * 1024

// LineIndex is the ordered offset/length table of a file. It is built once
// and never modified afterwards.
type LineIndex struct {
	records  []types.LineRecord
	size     int64
	trailing int64
}

// Len returns the number of delimiter-terminated lines.
func (idx *LineIndex) Len() int {
	return len(idx.records)
}

// Record returns the location of line n. The caller must check the range.
func (idx *LineIndex) Record(n int) types.LineRecord {
	return idx.records[n]
}

// Records returns a copy of the whole table.
func (idx *LineIndex) Records() []types.LineRecord {
	out := make([]types.LineRecord, len(idx.records))
	copy(out, idx.records)
	return out
}

// Size returns the number of bytes scanned.
func (idx *LineIndex) Size() int64 {
	return idx.size
}

// TrailingBytes returns the length of the unterminated tail after the last
// delimiter. Those bytes are not reachable through the index.
func (idx *LineIndex) TrailingBytes() int64 {
	return idx.trailing
}

// Lookup returns the record for line n, or a RangeError.
func (idx *LineIndex) Lookup(n int) (types.LineRecord, error) {
	if n < 0 || n >= len(idx.records) {
		return types.LineRecord{}, &types.RangeError{Line: n, Count: len(idx.records)}
	}
	return idx.records[n], nil
}

// Build scans r once from its current position, which is taken as offset 0,
// and records every line terminated by delim. A tail without a delimiter is
// counted in TrailingBytes but not indexed.
func Build(r io.Reader, delim byte) (*LineIndex, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReaderSize(r, readBufferSize)
	}

	idx := &LineIndex{}
	var start, length int64
	for {
		c, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read at offset %d: %w", start+length, err)
		}

		if c == delim {
			idx.records = append(idx.records, types.LineRecord{Offset: start, Length: length})
			start += length + 1
			length = 0
			continue
		}
		length++
	}

	idx.size = start + length
	idx.trailing = length
	return idx, nil
}

// BuildFile opens path, indexes it and closes it again, also on failure.
func BuildFile(path string, delim byte) (*LineIndex, error) {
	file, err := storage.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	idx, err := Build(file, delim)
	if err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", path, err)
	}
	return idx, nil
}
