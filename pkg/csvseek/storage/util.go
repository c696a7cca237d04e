package storage

import (
	"encoding/binary"
	"io"

	"github.com/iamhimansu/csvseek/pkg/csvseek/types"
)

// ReadBatchRecords reads count records into a slice
func ReadBatchRecords(r io.Reader, count int) ([]types.LineRecord, error) {
	buf := make([]byte, count*types.RecordSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}

	recs := make([]types.LineRecord, count)
	for i := 0; i < count; i++ {
		offset := i * types.RecordSize
		recs[i] = types.LineRecord{
			Offset: int64(binary.BigEndian.Uint64(buf[offset : offset+8])),
			Length: int64(binary.BigEndian.Uint64(buf[offset+8 : offset+16])),
		}
	}
	return recs, nil
}

// WriteBatchRecords writes a slice of records in a single write call
func WriteBatchRecords(w io.Writer, recs []types.LineRecord) error {
	if len(recs) == 0 {
		return nil
	}
	buf := make([]byte, len(recs)*types.RecordSize)
	for i, rec := range recs {
		offset := i * types.RecordSize
		binary.BigEndian.PutUint64(buf[offset:offset+8], uint64(rec.Offset))
		binary.BigEndian.PutUint64(buf[offset+8:offset+16], uint64(rec.Length))
	}
	_, err := w.Write(buf)
	return err
}
