//go:build linux

package nl80211

import (
	"testing"

	"github.com/mdlayher/genetlink"
	"github.com/mdlayher/netlink"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/bft-labs/qosship/internal/adapters/poll"
	"github.com/bft-labs/qosship/internal/ports"
	"github.com/bft-labs/qosship/pkg/qos"
)

// dialController opens a real generic netlink socket. The controller
// family is always present, so no wireless hardware is needed.
func dialController(t *testing.T) *genetlink.Conn {
	t.Helper()
	conn, err := genetlink.Dial(nil)
	if err != nil {
		t.Skipf("generic netlink unavailable: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func requestControllerFamily(t *testing.T, conn *genetlink.Conn) {
	t.Helper()
	ae := netlink.NewAttributeEncoder()
	ae.String(unix.CTRL_ATTR_FAMILY_NAME, "nlctrl")
	b, err := ae.Encode()
	require.NoError(t, err)

	_, err = conn.Send(genetlink.Message{
		Header: genetlink.Header{Command: unix.CTRL_CMD_GETFAMILY, Version: 1},
		Data:   b,
	}, unix.GENL_ID_CTRL, netlink.Request)
	require.NoError(t, err)
}

func TestSession_FDDrivesPoller(t *testing.T) {
	conn := dialController(t)
	obs := newCountingObserver()

	s := newSession(conn)
	s.observer = obs

	fd, err := s.FD()
	require.NoError(t, err)
	require.GreaterOrEqual(t, fd, 0)

	p, err := poll.New(fd, 0)
	require.NoError(t, err)
	defer p.Close()

	requestControllerFamily(t, conn)
	requestControllerFamily(t, conn)

	ev, err := p.Wait()
	require.NoError(t, err)
	require.True(t, ev.Readable)
	require.False(t, ev.TimerExpired)
	require.True(t, s.socketPending())

	s.ReceivePending(func(qos.Sample) { t.Fatal("controller replies carry no station info") })

	require.Equal(t, 2, obs.messages[ports.MessageSkipped])
	require.False(t, s.socketPending(), "both replies drained")
}
