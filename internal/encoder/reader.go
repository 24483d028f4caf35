package encoder

import (
	"io"

	"github.com/gowthamrao/medgen-loader/internal/model"
)

// NextFunc pulls the next record from an upstream source, mirroring the
// Next/Record/Err shape of parser.Stream without encoder importing parser.
type NextFunc func() (rec model.Record, ok bool)

// RowReader adapts a stream of records into an io.Reader of COPY TEXT lines,
// so it can be handed directly to pgconn's CopyFrom.
type RowReader struct {
	next NextFunc
	buf  []byte
}

// NewRowReader wraps next as an io.Reader of encoded COPY lines.
func NewRowReader(next NextFunc) *RowReader {
	return &RowReader{next: next}
}

func (rr *RowReader) Read(p []byte) (int, error) {
	for len(rr.buf) == 0 {
		rec, ok := rr.next()
		if !ok {
			return 0, io.EOF
		}
		rr.buf = append(rr.buf, EncodeRow(rec)...)
	}
	n := copy(p, rr.buf)
	rr.buf = rr.buf[n:]
	return n, nil
}
