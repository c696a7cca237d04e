package storage

import (
	"fmt"
	"io"
	"os"

	"github.com/iamhimansu/csvseek/pkg/csvseek/types"
)

// OpenFile opens path for reading.
func OpenFile(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// ReadSpan opens path, reads exactly the bytes described by rec and closes the
// file again. No handle outlives the call.
func ReadSpan(path string, rec types.LineRecord) ([]byte, error) {
	file, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadSpanFrom(file, rec)
}

// ReadSpanFrom seeks r to rec.Offset and reads rec.Length bytes.
func ReadSpanFrom(r io.ReadSeeker, rec types.LineRecord) ([]byte, error) {
	if _, err := r.Seek(rec.Offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to %d: %w", rec.Offset, err)
	}

	buf := make([]byte, rec.Length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("failed to read %d bytes at %d: %w", rec.Length, rec.Offset, err)
	}
	return buf, nil
}
