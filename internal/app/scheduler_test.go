package app

import (
	"errors"
	"testing"
	"time"

	"github.com/bft-labs/qosship/internal/ports"
	"github.com/bft-labs/qosship/pkg/qos"
)

// mockLogger implements ports.Logger for testing.
type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}

var errSimulationDone = errors.New("simulation done")

type reply struct {
	at     time.Duration
	sample qos.Sample
}

// simulation is a stub kernel plus a virtual clock. It implements
// StationSource, Poller and Publisher. Each request is answered once,
// after latency, with counters that increase per request.
type simulation struct {
	now      time.Duration
	end      time.Duration
	interval time.Duration
	latency  time.Duration

	nextTick    time.Duration
	expirations uint64

	pending   []reply
	requests  []time.Duration
	published []qos.Sample
}

func newSimulation(interval, end time.Duration) *simulation {
	return &simulation{
		end:      end,
		interval: interval,
		latency:  5 * time.Millisecond,
		nextTick: interval,
	}
}

func (s *simulation) RequestStats() {
	s.requests = append(s.requests, s.now)
	n := uint32(len(s.requests))
	s.pending = append(s.pending, reply{
		at: s.now + s.latency,
		sample: qos.Sample{
			TimestampNs: uint64(s.now + s.latency),
			RSSIdBm:     -60,
			TxOK:        n * 100,
			TxRetry:     n * 10,
			TxFail:      n,
		},
	})
}

// notify queues an unsolicited station notification.
func (s *simulation) notify(at time.Duration, sample qos.Sample) {
	s.pending = append(s.pending, reply{at: at, sample: sample})
}

func (s *simulation) ReceivePending(emit func(qos.Sample)) {
	var rest []reply
	for _, r := range s.pending {
		if r.at <= s.now {
			emit(r.sample)
			continue
		}
		rest = append(rest, r)
	}
	s.pending = rest
}

func (s *simulation) Wait() (ports.Events, error) {
	next := time.Duration(-1)
	for _, r := range s.pending {
		if next < 0 || r.at < next {
			next = r.at
		}
	}
	if s.interval > 0 && (next < 0 || s.nextTick < next) {
		next = s.nextTick
	}
	if next < 0 || next > s.end {
		return ports.Events{}, errSimulationDone
	}
	if next > s.now {
		s.now = next
	}

	var ev ports.Events
	for _, r := range s.pending {
		if r.at <= s.now {
			ev.Readable = true
			break
		}
	}
	for s.interval > 0 && s.nextTick <= s.now {
		s.expirations++
		s.nextTick += s.interval
	}
	ev.TimerExpired = s.expirations > 0
	return ev, nil
}

func (s *simulation) AckTimer() (uint64, error) {
	n := s.expirations
	s.expirations = 0
	return n, nil
}

func (s *simulation) Publish(sample qos.Sample) {
	s.published = append(s.published, sample)
}

func runSimulation(t *testing.T, sim *simulation) {
	t.Helper()
	err := NewScheduler(sim, sim, sim, mockLogger{}).Run()
	if !errors.Is(err, errSimulationDone) {
		t.Fatalf("Run() error = %v, want errSimulationDone", err)
	}
}

func TestScheduler_HeartbeatCadence(t *testing.T) {
	sim := newSimulation(time.Second, 3500*time.Millisecond)
	runSimulation(t, sim)

	if n := len(sim.requests); n < 3 || n > 4 {
		t.Fatalf("requests = %d (%v), want 3..4", n, sim.requests)
	}
	if sim.requests[0] != 0 {
		t.Errorf("first request at %v, want immediately", sim.requests[0])
	}
	if len(sim.published) != len(sim.requests) {
		t.Fatalf("published %d samples for %d requests", len(sim.published), len(sim.requests))
	}
	for i, s := range sim.published {
		if want := uint32(i+1) * 100; s.TxOK != want {
			t.Errorf("published[%d].TxOK = %d, want %d (request order)", i, s.TxOK, want)
		}
	}
}

func TestScheduler_ZeroIntervalNeverPolls(t *testing.T) {
	sim := newSimulation(0, 10*time.Second)
	sim.notify(1500*time.Millisecond, qos.Sample{TxOK: 7})
	sim.notify(4*time.Second, qos.Sample{TxOK: 9})
	runSimulation(t, sim)

	if len(sim.requests) != 1 {
		t.Fatalf("requests = %v, want only the initial request", sim.requests)
	}
	if len(sim.published) != 3 {
		t.Fatalf("published = %+v, want initial reply plus two notifications", sim.published)
	}
	if sim.published[1].TxOK != 7 || sim.published[2].TxOK != 9 {
		t.Errorf("notifications out of order: %+v", sim.published)
	}
}

func TestScheduler_NotificationsBetweenHeartbeats(t *testing.T) {
	sim := newSimulation(time.Second, 2500*time.Millisecond)
	sim.notify(1200*time.Millisecond, qos.Sample{TxOK: 1})
	runSimulation(t, sim)

	if len(sim.requests) != 3 {
		t.Fatalf("requests = %v, want 3", sim.requests)
	}
	if len(sim.published) != 4 {
		t.Fatalf("published %d samples, want 4", len(sim.published))
	}
}

// scriptedPoller replays a fixed list of wake-ups and records the order of
// calls across poller, source and publisher.
type scriptedPoller struct {
	events []ports.Events
	acks   []uint64
	calls  *[]string
}

func (p *scriptedPoller) Wait() (ports.Events, error) {
	if len(p.events) == 0 {
		return ports.Events{}, errSimulationDone
	}
	ev := p.events[0]
	p.events = p.events[1:]
	*p.calls = append(*p.calls, "wait")
	return ev, nil
}

func (p *scriptedPoller) AckTimer() (uint64, error) {
	*p.calls = append(*p.calls, "ack")
	if len(p.acks) == 0 {
		return 1, nil
	}
	n := p.acks[0]
	p.acks = p.acks[1:]
	return n, nil
}

type recordingSource struct {
	calls *[]string
}

func (s recordingSource) RequestStats() { *s.calls = append(*s.calls, "request") }

func (s recordingSource) ReceivePending(emit func(qos.Sample)) {
	*s.calls = append(*s.calls, "receive")
	emit(qos.Sample{})
}

type recordingPublisher struct {
	calls *[]string
}

func (p recordingPublisher) Publish(qos.Sample) { *p.calls = append(*p.calls, "publish") }

func TestScheduler_EventOrdering(t *testing.T) {
	var calls []string
	poller := &scriptedPoller{
		events: []ports.Events{
			{Readable: true, TimerExpired: true},
			{TimerExpired: true},
		},
		// Second wake-up collapses three missed expirations.
		acks:  []uint64{1, 3},
		calls: &calls,
	}

	err := NewScheduler(recordingSource{&calls}, poller, recordingPublisher{&calls}, mockLogger{}).Run()
	if !errors.Is(err, errSimulationDone) {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{
		"request",
		"wait", "receive", "publish", "ack", "request",
		"wait", "ack", "request",
	}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}
}

func TestScheduler_WaitErrorIsFatal(t *testing.T) {
	boom := errors.New("poll: bad file descriptor")
	var calls []string
	p := &failingPoller{err: boom}

	err := NewScheduler(recordingSource{&calls}, p, recordingPublisher{&calls}, mockLogger{}).Run()
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
	if len(calls) != 1 || calls[0] != "request" {
		t.Errorf("calls = %v, want only the initial request", calls)
	}
}

type failingPoller struct{ err error }

func (p *failingPoller) Wait() (ports.Events, error) { return ports.Events{}, p.err }
func (p *failingPoller) AckTimer() (uint64, error)   { return 0, nil }
