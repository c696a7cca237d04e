package reader

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iamhimansu/csvseek/pkg/csvseek/index"
	"github.com/iamhimansu/csvseek/pkg/csvseek/storage"
	"github.com/iamhimansu/csvseek/pkg/csvseek/types"
	"github.com/iamhimansu/csvseek/pkg/csvseek/utils"
)

// Reader returns single lines of a file by number. The file is indexed once
// at construction; every lookup opens the file, seeks and reads one line.
//
// The file must not change while the Reader is in use. Nothing detects a
// modification, so lookups after one return whatever bytes now sit at the
// recorded offsets.
type Reader struct {
	path    string
	delim   byte
	index   *index.LineIndex
	workers int
	logger  utils.Logger
}

// New indexes path. Only the line delimiter, workers and logger settings
// apply to a plain Reader.
func New(path string, opts ...Option) (*Reader, error) {
	return newReader(path, buildConfig(opts))
}

func newReader(path string, cfg Config) (*Reader, error) {
	delim, err := types.ParseDelimiter("line delimiter", cfg.LineDelimiter)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateWorkers(); err != nil {
		return nil, err
	}

	start := time.Now()
	idx, err := index.BuildFile(path, delim)
	if err != nil {
		return nil, err
	}

	cfg.Logger.Debug("indexed %s: %d lines, %d bytes in %s", path, idx.Len(), idx.Size(), utils.Elapsed(start))
	if idx.TrailingBytes() > 0 {
		cfg.Logger.Warn("%s: last %d bytes have no terminating delimiter and are not indexed", path, idx.TrailingBytes())
	}

	return &Reader{
		path:    path,
		delim:   delim,
		index:   idx,
		workers: cfg.Workers,
		logger:  cfg.Logger,
	}, nil
}

// Len returns the number of indexed lines.
func (r *Reader) Len() int {
	return r.index.Len()
}

// TrailingBytes returns the size of the unterminated tail that is not
// reachable by line number.
func (r *Reader) TrailingBytes() int64 {
	return r.index.TrailingBytes()
}

// GetLine returns line n (0-based) without its delimiter.
func (r *Reader) GetLine(n int) ([]byte, error) {
	rec, err := r.index.Lookup(n)
	if err != nil {
		return nil, err
	}
	return storage.ReadSpan(r.path, rec)
}

// GetLines fetches several lines concurrently, each on its own file handle,
// and returns them in request order. All numbers are range checked before any
// file is opened; the first read error cancels the rest.
func (r *Reader) GetLines(ctx context.Context, numbers []int) ([][]byte, error) {
	recs := make([]types.LineRecord, len(numbers))
	for i, n := range numbers {
		rec, err := r.index.Lookup(n)
		if err != nil {
			return nil, err
		}
		recs[i] = rec
	}

	out := make([][]byte, len(numbers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, rec := range recs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			line, err := storage.ReadSpan(r.path, rec)
			if err != nil {
				return fmt.Errorf("line %d: %w", numbers[i], err)
			}
			out[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteSnapshot exports the index, see index.WriteSnapshot.
func (r *Reader) WriteSnapshot(w io.Writer) error {
	return index.WriteSnapshot(w, r.index)
}
