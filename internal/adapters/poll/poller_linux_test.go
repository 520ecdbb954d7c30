//go:build linux

package poll

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bft-labs/qosship/internal/ports"
)

func socketPair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestPoller_Readable(t *testing.T) {
	r, w := socketPair(t)

	p, err := New(r, 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer p.Close()

	if _, err := unix.Write(w, []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}

	ev, err := p.Wait()
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if !ev.Readable || ev.TimerExpired {
		t.Errorf("events = %+v, want readable only", ev)
	}

	if n, err := p.AckTimer(); err != nil || n != 0 {
		t.Errorf("AckTimer() without timer = %d, %v", n, err)
	}
}

func TestPoller_TimerExpires(t *testing.T) {
	r, _ := socketPair(t)

	p, err := New(r, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer p.Close()

	start := time.Now()
	ev, err := p.Wait()
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if !ev.TimerExpired || ev.Readable {
		t.Fatalf("events = %+v, want timer only", ev)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("timer fired after %v, want about one interval", elapsed)
	}

	n, err := p.AckTimer()
	if err != nil || n < 1 {
		t.Fatalf("AckTimer() = %d, %v, want >= 1", n, err)
	}

	// Drained: an immediate second ack sees nothing.
	if n, err := p.AckTimer(); err != nil || n != 0 {
		t.Errorf("second AckTimer() = %d, %v, want 0", n, err)
	}
}

func TestPoller_CoalescesMissedExpirations(t *testing.T) {
	r, _ := socketPair(t)

	p, err := New(r, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer p.Close()

	time.Sleep(40 * time.Millisecond)

	n, err := p.AckTimer()
	if err != nil {
		t.Fatalf("AckTimer() error = %v", err)
	}
	if n < 2 {
		t.Errorf("AckTimer() = %d, want several expirations", n)
	}
}

func TestNew_NegativeInterval(t *testing.T) {
	if _, err := New(0, -time.Second); err == nil {
		t.Fatal("New() with negative interval succeeded")
	}
}

func TestEvents(t *testing.T) {
	tests := []struct {
		name      string
		sock      int16
		timer     int16
		want      ports.Events
		wantReady bool
		wantErr   bool
	}{
		{name: "idle"},
		{name: "readable", sock: unix.POLLIN, want: ports.Events{Readable: true}, wantReady: true},
		{name: "timer", timer: unix.POLLIN, want: ports.Events{TimerExpired: true}, wantReady: true},
		{
			name:      "both",
			sock:      unix.POLLIN,
			timer:     unix.POLLIN,
			want:      ports.Events{Readable: true, TimerExpired: true},
			wantReady: true,
		},
		{name: "pending socket error", sock: unix.POLLERR, want: ports.Events{Readable: true}, wantReady: true},
		{name: "hangup", sock: unix.POLLHUP, wantErr: true},
		{name: "invalid descriptor", sock: unix.POLLNVAL, timer: unix.POLLIN, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ready, err := events(tt.sock, tt.timer)
			if (err != nil) != tt.wantErr {
				t.Fatalf("events() error = %v, wantErr %v", err, tt.wantErr)
			}
			if ready != tt.wantReady {
				t.Errorf("events() ready = %v, want %v", ready, tt.wantReady)
			}
			if got != tt.want {
				t.Errorf("events() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPoller_PendingSocketErrorIsReadable(t *testing.T) {
	// A datagram to a closed port queues ECONNREFUSED on a connected UDP
	// socket, which poll reports as POLLERR.
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Skipf("udp socket: %v", err)
	}
	defer unix.Close(fd)

	closed, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatalf("udp socket: %v", err)
	}
	loopback := &unix.SockaddrInet4{Addr: [4]byte{127, 0, 0, 1}}
	if err := unix.Bind(closed, loopback); err != nil {
		unix.Close(closed)
		t.Skipf("bind: %v", err)
	}
	sa, err := unix.Getsockname(closed)
	unix.Close(closed)
	if err != nil {
		t.Fatalf("getsockname: %v", err)
	}

	if err := unix.Connect(fd, sa); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := unix.Write(fd, []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}

	p, err := New(fd, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer p.Close()

	for i := 0; i < 100; i++ {
		ev, err := p.Wait()
		if err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
		if ev.Readable {
			return
		}
		if ev.TimerExpired {
			if _, err := p.AckTimer(); err != nil {
				t.Fatalf("AckTimer() error = %v", err)
			}
		}
	}
	t.Skip("no ICMP error queued on loopback")
}
