package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/iamhimansu/csvseek/pkg/csvseek/storage"
	"github.com/iamhimansu/csvseek/pkg/csvseek/types"
	"github.com/pierrec/lz4/v4"
)

const (
	MagicLIDX = "LIDX"

	// records are encoded in batches so a huge index never needs one buffer
	snapshotBatch = 1000
)

var ErrBadSnapshot = errors.New("not a line index snapshot")

type snapshotHeader struct {
	Count    uint64
	Size     uint64
	Trailing uint64
}

// WriteSnapshot exports idx as an lz4 compressed stream for external tooling.
// Layout: magic, then an lz4 frame holding the header and 16-byte records.
func WriteSnapshot(w io.Writer, idx *LineIndex) error {
	if _, err := w.Write([]byte(MagicLIDX)); err != nil {
		return err
	}

	lw := lz4.NewWriter(w)
	_ = lw.Apply(lz4.BlockSizeOption(lz4.Block64Kb))

	hdr := snapshotHeader{
		Count:    uint64(len(idx.records)),
		Size:     uint64(idx.size),
		Trailing: uint64(idx.trailing),
	}
	if err := binary.Write(lw, binary.BigEndian, hdr); err != nil {
		return err
	}

	for i := 0; i < len(idx.records); i += snapshotBatch {
		end := i + snapshotBatch
		if end > len(idx.records) {
			end = len(idx.records)
		}
		if err := storage.WriteBatchRecords(lw, idx.records[i:end]); err != nil {
			return err
		}
	}
	return lw.Close()
}

// ReadSnapshot decodes a stream produced by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*LineIndex, error) {
	magic := make([]byte, len(MagicLIDX))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if string(magic) != MagicLIDX {
		return nil, ErrBadSnapshot
	}

	lr := lz4.NewReader(r)
	var hdr snapshotHeader
	if err := binary.Read(lr, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}

	idx := &LineIndex{
		records:  make([]types.LineRecord, 0, int(min(hdr.Count, 1<<20))),
		size:     int64(hdr.Size),
		trailing: int64(hdr.Trailing),
	}
	for remaining := int(hdr.Count); remaining > 0; {
		n := remaining
		if n > snapshotBatch {
			n = snapshotBatch
		}
		recs, err := storage.ReadBatchRecords(lr, n)
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot records: %w", err)
		}
		idx.records = append(idx.records, recs...)
		remaining -= n
	}
	return idx, nil
}
