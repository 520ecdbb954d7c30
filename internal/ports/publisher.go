package ports

import "github.com/bft-labs/qosship/pkg/qos"

// Publisher forwards a sample to the local consumer. Delivery is
// best-effort: failures drop the sample and are not reported to the caller.
type Publisher interface {
	Publish(s qos.Sample)
}
