package ports

import "github.com/bft-labs/qosship/pkg/qos"

// MessageResult classifies one inbound control-plane message.
type MessageResult string

const (
	MessageSample    MessageResult = "sample"
	MessageSkipped   MessageResult = "skipped"
	MessageMalformed MessageResult = "malformed"
	MessageError     MessageResult = "error"
)

// Observer receives counters from the session, publisher and watcher.
// Implementations must be safe for concurrent use.
type Observer interface {
	RequestSent(err error)
	MessageReceived(result MessageResult)
	SamplePublished(s qos.Sample, err error)
	ConsumerPresent(present bool)
}

// NoopObserver discards all observations.
type NoopObserver struct{}

func (NoopObserver) RequestSent(error)                 {}
func (NoopObserver) MessageReceived(MessageResult)     {}
func (NoopObserver) SamplePublished(qos.Sample, error) {}
func (NoopObserver) ConsumerPresent(bool)              {}
