// Package qos defines the link-quality sample published by qosship and its
// fixed-size binary record.
//
// Each record is exactly RecordSize bytes, laid out without padding in the
// host's native byte order:
//
//	offset  size  field
//	0       8     timestamp_ns  wall-clock time of decode
//	8       4     rssi_dbm      signed signal strength
//	12      4     tx_ok         cumulative successful transmissions
//	16      4     tx_retry      cumulative retried transmissions
//	20      4     tx_fail       cumulative failed transmissions
//
// Records never leave the local machine, so no network byte order conversion
// is performed. There is no version field; any layout change breaks consumers.
//
// # Usage
//
// Consumers bound to the destination socket decode each datagram:
//
//	var s qos.Sample
//	if err := s.UnmarshalBinary(buf[:n]); err != nil {
//	    // short datagram
//	}
package qos
