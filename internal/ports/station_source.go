package ports

import "github.com/bft-labs/qosship/pkg/qos"

// StationSource is the control-plane session bound to one interface and
// one peer.
type StationSource interface {
	// RequestStats sends a station statistics query. It never blocks and
	// never reports failure; the next heartbeat or notification resubmits.
	RequestStats()

	// ReceivePending reads the messages currently queued on the socket and
	// calls emit once per decoded sample, in arrival order. Messages that
	// carry no station information are skipped.
	ReceivePending(emit func(qos.Sample))
}
