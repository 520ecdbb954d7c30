package ports

// Events reports which wait sources are ready after Poller.Wait.
type Events struct {
	// Readable is set when the control-plane socket has data.
	Readable bool

	// TimerExpired is set when the heartbeat timer fired at least once
	// since the last AckTimer.
	TimerExpired bool
}

// Poller multiplexes the control-plane socket and the heartbeat timer.
type Poller interface {
	// Wait blocks until at least one source is ready. Signal interruptions
	// are retried internally; any returned error is fatal.
	Wait() (Events, error)

	// AckTimer drains the timer's expiration counter and returns it.
	AckTimer() (uint64, error)
}
