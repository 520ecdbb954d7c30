package nl80211

import (
	"errors"
	"fmt"
	"time"

	"github.com/mdlayher/genetlink"
	"github.com/mdlayher/netlink"
	"golang.org/x/sys/unix"

	"github.com/bft-labs/qosship/internal/domain"
	"github.com/bft-labs/qosship/internal/ports"
	"github.com/bft-labs/qosship/pkg/log"
	"github.com/bft-labs/qosship/pkg/qos"
)

// notificationGroups are joined in order. Not every kernel exposes every
// group; missing ones are skipped.
var notificationGroups = []string{"mlme", "station", "stats"}

// Target identifies the station whose statistics are requested.
type Target struct {
	Ifindex int
	Peer    domain.PeerIdentity
}

// Session owns the generic netlink connection to nl80211. It is driven
// from a single goroutine and is not safe for concurrent use.
type Session struct {
	conn   *genetlink.Conn
	family genetlink.Family
	state  State
	groups []string

	join     func(id uint32) error
	pending  func() bool
	now      func() time.Time
	logger   ports.Logger
	observer ports.Observer
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. Silent-tier failures are logged at debug.
func WithLogger(l ports.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithObserver sets the metrics observer.
func WithObserver(o ports.Observer) Option {
	return func(s *Session) { s.observer = o }
}

// WithClock overrides the wall clock used to timestamp samples.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Dial opens a generic netlink socket and prepares a Session on it.
func Dial(opts ...Option) (*Session, error) {
	conn, err := genetlink.Dial(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConnect, err)
	}

	s, err := NewSession(conn, opts...)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// NewSession resolves the nl80211 family on an already connected conn and
// joins the notification groups. Only family resolution can fail.
func NewSession(conn *genetlink.Conn, opts ...Option) (*Session, error) {
	s := newSession(conn)
	for _, o := range opts {
		o(s)
	}

	s.advance(StateConnected)

	family, err := conn.GetFamily(unix.NL80211_GENL_NAME)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFamilyUnavailable, err)
	}
	s.family = family
	s.advance(StateFamilyResolved)

	s.joinGroups()
	s.advance(StateSubscribed)

	return s, nil
}

func newSession(conn *genetlink.Conn) *Session {
	s := &Session{
		conn:     conn,
		state:    StateUnconnected,
		join:     conn.JoinGroup,
		now:      time.Now,
		logger:   log.NewNoopLogger(),
		observer: ports.NoopObserver{},
	}
	s.pending = s.socketPending
	return s
}

func (s *Session) joinGroups() {
	for _, name := range notificationGroups {
		id, ok := s.groupID(name)
		if !ok {
			s.logger.Debug("multicast group not exposed", ports.String("group", name))
			continue
		}
		if err := s.join(id); err != nil {
			s.logger.Debug("join multicast group failed",
				ports.String("group", name),
				ports.Err(err),
			)
			continue
		}
		s.groups = append(s.groups, name)
	}
}

func (s *Session) groupID(name string) (uint32, bool) {
	for _, g := range s.family.Groups {
		if g.Name == name {
			return g.ID, true
		}
	}
	return 0, false
}

// advance moves the state machine one step. The call sites are fixed, so
// an invalid transition is a programming error.
func (s *Session) advance(to State) {
	if err := s.state.next(to); err != nil {
		panic(err)
	}
	s.logger.Debug("session state",
		ports.String("from", s.state.String()),
		ports.String("to", to.String()),
	)
	s.state = to
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Family returns the resolved nl80211 family.
func (s *Session) Family() genetlink.Family { return s.family }

// Groups returns the names of the multicast groups that were joined.
func (s *Session) Groups() []string {
	return append([]string(nil), s.groups...)
}

// RequestStats sends NL80211_CMD_GET_STATION for t. The request is not
// acknowledged or tracked and send errors are dropped; the reply arrives
// through ReceivePending like any other message.
func (s *Session) RequestStats(t Target) {
	if s.state == StateSubscribed {
		s.advance(StateRunning)
	}

	ae := netlink.NewAttributeEncoder()
	ae.Uint32(unix.NL80211_ATTR_IFINDEX, uint32(t.Ifindex))
	ae.Bytes(unix.NL80211_ATTR_MAC, t.Peer[:])

	b, err := ae.Encode()
	if err == nil {
		_, err = s.conn.Send(
			genetlink.Message{
				Header: genetlink.Header{
					Command: unix.NL80211_CMD_GET_STATION,
					Version: s.family.Version,
				},
				Data: b,
			},
			s.family.ID,
			netlink.Request,
		)
	}

	s.observer.RequestSent(err)
	if err != nil {
		s.logger.Debug("station request not sent",
			ports.Int("ifindex", t.Ifindex),
			ports.Stringer("peer", t.Peer),
			ports.Err(err),
		)
	}
}

// ReceivePending drains the socket: it receives until no message or
// error is left queued, decoding every message in arrival order.
func (s *Session) ReceivePending(emit func(qos.Sample)) {
	for {
		s.receiveOnce(emit)
		if !s.pending() {
			return
		}
	}
}

func (s *Session) receiveOnce(emit func(qos.Sample)) {
	msgs, _, err := s.conn.Receive()
	if err != nil {
		// Kernel error replies (ENOENT for an unknown station) and
		// multicast overruns (ENOBUFS) land here.
		s.observer.MessageReceived(ports.MessageError)
		s.logger.Debug("receive failed", ports.Err(err))
		return
	}

	for _, m := range msgs {
		sample, ok, err := DecodeStation(m.Data, s.now())
		switch {
		case err != nil:
			s.observer.MessageReceived(ports.MessageMalformed)
			s.logger.Debug("malformed nl80211 message",
				ports.Int("command", int(m.Header.Command)),
				ports.Err(err),
			)
		case !ok:
			s.observer.MessageReceived(ports.MessageSkipped)
		default:
			s.observer.MessageReceived(ports.MessageSample)
			emit(sample)
		}
	}
}

// socketPending polls the socket without blocking. A pending socket error
// counts, since the next Receive consumes it.
func (s *Session) socketPending() bool {
	fd, err := s.FD()
	if err != nil {
		return false
	}

	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, 0)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return err == nil && n > 0 && fds[0].Revents&(unix.POLLIN|unix.POLLERR) != 0
	}
}

// FD returns the socket descriptor for readiness polling. The descriptor
// stays owned by the Session.
func (s *Session) FD() (int, error) {
	rc, err := s.conn.SyscallConn()
	if err != nil {
		return 0, err
	}

	fd := -1
	if err := rc.Control(func(sysfd uintptr) { fd = int(sysfd) }); err != nil {
		return 0, err
	}
	return fd, nil
}

// Close closes the netlink connection.
func (s *Session) Close() error { return s.conn.Close() }

// Station binds the session to t so it satisfies ports.StationSource.
func (s *Session) Station(t Target) *Station {
	return &Station{session: s, target: t}
}

// Station is a Session bound to one interface and peer.
type Station struct {
	session *Session
	target  Target
}

var _ ports.StationSource = (*Station)(nil)

func (st *Station) RequestStats() { st.session.RequestStats(st.target) }

func (st *Station) ReceivePending(emit func(qos.Sample)) { st.session.ReceivePending(emit) }
