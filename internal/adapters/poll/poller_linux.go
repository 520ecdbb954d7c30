//go:build linux

// Package poll implements ports.Poller with poll(2) over the netlink
// socket and a timerfd heartbeat.
package poll

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bft-labs/qosship/internal/ports"
)

// Poller waits on a socket descriptor and an optional heartbeat timer.
type Poller struct {
	fds     []unix.PollFd
	timerFD int
}

var _ ports.Poller = (*Poller)(nil)

// New creates a Poller for fd. A positive interval arms a periodic timer
// whose first expiry is one interval from now; zero disables the timer.
func New(fd int, interval time.Duration) (*Poller, error) {
	if interval < 0 {
		return nil, fmt.Errorf("poll: negative interval %v", interval)
	}

	p := &Poller{
		fds:     []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}},
		timerFD: -1,
	}
	if interval == 0 {
		return p, nil
	}

	tfd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("timerfd_create: %w", err)
	}

	period := unix.NsecToTimespec(interval.Nanoseconds())
	spec := unix.ItimerSpec{Interval: period, Value: period}
	if err := unix.TimerfdSettime(tfd, 0, &spec, nil); err != nil {
		_ = unix.Close(tfd)
		return nil, fmt.Errorf("timerfd_settime: %w", err)
	}

	p.timerFD = tfd
	p.fds = append(p.fds, unix.PollFd{Fd: int32(tfd), Events: unix.POLLIN})
	return p, nil
}

// Wait blocks without timeout until the socket is readable or the timer
// has expired. EINTR is retried.
func (p *Poller) Wait() (ports.Events, error) {
	for {
		for i := range p.fds {
			p.fds[i].Revents = 0
		}

		_, err := unix.Poll(p.fds, -1)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return ports.Events{}, fmt.Errorf("poll: %w", err)
		}

		var timerRevents int16
		if len(p.fds) > 1 {
			timerRevents = p.fds[1].Revents
		}
		ev, ready, err := events(p.fds[0].Revents, timerRevents)
		if err != nil {
			return ports.Events{}, err
		}
		if !ready {
			continue
		}
		return ev, nil
	}
}

// events maps poll results to ready sources. A pending socket error
// (POLLERR, e.g. ENOBUFS after a multicast overrun) is reported as
// readable so the next receive consumes it. A hangup or invalid
// descriptor on the socket is fatal.
func events(sock, timer int16) (ports.Events, bool, error) {
	if sock&unix.POLLNVAL != 0 {
		return ports.Events{}, false, fmt.Errorf("poll: socket revents %#x", sock)
	}

	ev := ports.Events{
		Readable:     sock&(unix.POLLIN|unix.POLLERR) != 0,
		TimerExpired: timer&unix.POLLIN != 0,
	}
	if ev.Readable || ev.TimerExpired {
		return ev, true, nil
	}
	if sock&unix.POLLHUP != 0 {
		return ports.Events{}, false, fmt.Errorf("poll: socket revents %#x", sock)
	}
	return ports.Events{}, false, nil
}

// AckTimer reads the number of expirations since the last ack.
func (p *Poller) AckTimer() (uint64, error) {
	if p.timerFD < 0 {
		return 0, nil
	}

	var buf [8]byte
	_, err := unix.Read(p.timerFD, buf[:])
	switch {
	case errors.Is(err, unix.EAGAIN):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("timerfd read: %w", err)
	}
	return hostUint64(buf), nil
}

// Close releases the timer. The socket belongs to the caller.
func (p *Poller) Close() error {
	if p.timerFD < 0 {
		return nil
	}
	err := unix.Close(p.timerFD)
	p.timerFD = -1
	return err
}
