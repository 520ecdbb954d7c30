package app

import (
	"fmt"

	"github.com/bft-labs/qosship/internal/ports"
)

// Scheduler is the event loop that drives the control-plane session.
//
// It runs on a single goroutine. The only suspension point is
// Poller.Wait; receiving, decoding, requesting and publishing all complete
// before the next wait.
type Scheduler struct {
	source    ports.StationSource
	poller    ports.Poller
	publisher ports.Publisher
	logger    ports.Logger
}

// NewScheduler creates a scheduler with the given dependencies.
func NewScheduler(
	source ports.StationSource,
	poller ports.Poller,
	publisher ports.Publisher,
	logger ports.Logger,
) *Scheduler {
	return &Scheduler{
		source:    source,
		poller:    poller,
		publisher: publisher,
		logger:    logger,
	}
}

// Run issues an initial stats request so the first sample does not wait a
// full heartbeat interval, then serves readiness events forever. It
// returns only when the poller fails, which is fatal.
func (s *Scheduler) Run() error {
	s.source.RequestStats()

	for {
		ev, err := s.poller.Wait()
		if err != nil {
			return fmt.Errorf("wait: %w", err)
		}

		if ev.Readable {
			s.source.ReceivePending(s.publisher.Publish)
		}

		if ev.TimerExpired {
			s.heartbeat()
		}
	}
}

// heartbeat acknowledges the timer before requesting, so expirations that
// piled up while the loop was busy collapse into a single request.
func (s *Scheduler) heartbeat() {
	n, err := s.poller.AckTimer()
	if err != nil {
		s.logger.Debug("heartbeat ack failed", ports.Err(err))
	} else if n > 1 {
		s.logger.Debug("heartbeat overrun", ports.Uint64("expirations", n))
	}

	s.source.RequestStats()
}
