package qos

import (
	"errors"
	"time"

	"github.com/josharian/native"
)

// RecordSize is the length in bytes of one encoded Sample.
const RecordSize = 24

// ErrShortRecord is returned when decoding fewer than RecordSize bytes.
var ErrShortRecord = errors.New("qos: short record")

// Sample is one link-quality observation for the tracked station.
// Fields absent from the kernel's reply are zero.
type Sample struct {
	// TimestampNs is the wall-clock decode time in Unix nanoseconds.
	TimestampNs uint64

	// RSSIdBm is the signal strength of the last received frame in dBm.
	RSSIdBm int32

	// TxOK, TxRetry and TxFail are cumulative counters over the lifetime
	// of the association, not deltas.
	TxOK    uint32
	TxRetry uint32
	TxFail  uint32
}

// Time returns the sample timestamp as a time.Time.
func (s Sample) Time() time.Time {
	return time.Unix(0, int64(s.TimestampNs))
}

// AppendBinary appends the RecordSize-byte encoding of s to b.
func (s Sample) AppendBinary(b []byte) []byte {
	var rec [RecordSize]byte
	s.put(rec[:])
	return append(b, rec[:]...)
}

// MarshalBinary implements encoding.BinaryMarshaler. It never fails.
func (s Sample) MarshalBinary() ([]byte, error) {
	return s.AppendBinary(make([]byte, 0, RecordSize)), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Bytes beyond
// RecordSize are ignored.
func (s *Sample) UnmarshalBinary(b []byte) error {
	if len(b) < RecordSize {
		return ErrShortRecord
	}

	*s = Sample{
		TimestampNs: native.Endian.Uint64(b[0:8]),
		RSSIdBm:     int32(native.Endian.Uint32(b[8:12])),
		TxOK:        native.Endian.Uint32(b[12:16]),
		TxRetry:     native.Endian.Uint32(b[16:20]),
		TxFail:      native.Endian.Uint32(b[20:24]),
	}
	return nil
}

func (s Sample) put(b []byte) {
	native.Endian.PutUint64(b[0:8], s.TimestampNs)
	native.Endian.PutUint32(b[8:12], uint32(s.RSSIdBm))
	native.Endian.PutUint32(b[12:16], s.TxOK)
	native.Endian.PutUint32(b[16:20], s.TxRetry)
	native.Endian.PutUint32(b[20:24], s.TxFail)
}
