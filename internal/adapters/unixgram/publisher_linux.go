//go:build linux

package unixgram

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/bft-labs/qosship/internal/ports"
	"github.com/bft-labs/qosship/pkg/log"
	"github.com/bft-labs/qosship/pkg/qos"
)

// Publisher implements ports.Publisher by sending each sample as one
// datagram to a fixed path.
type Publisher struct {
	fd       int
	owned    bool
	path     string
	addr     *unix.SockaddrUnix
	buf      []byte
	logger   ports.Logger
	observer ports.Observer
}

var _ ports.Publisher = (*Publisher)(nil)

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger used for dropped samples.
func WithLogger(l ports.Logger) Option {
	return func(p *Publisher) { p.logger = l }
}

// WithObserver sets the observer notified of every publish attempt.
func WithObserver(o ports.Observer) Option {
	return func(p *Publisher) { p.observer = o }
}

// NewPublisher wraps fd, which must be a non-blocking AF_UNIX SOCK_DGRAM
// socket. The caller keeps ownership of fd.
func NewPublisher(fd int, path string, opts ...Option) *Publisher {
	p := &Publisher{
		fd:       fd,
		path:     path,
		addr:     &unix.SockaddrUnix{Name: path},
		buf:      make([]byte, 0, qos.RecordSize),
		logger:   log.NewNoopLogger(),
		observer: ports.NoopObserver{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DialPublisher opens an unbound datagram socket for publishing to path.
// The destination does not need to exist yet.
func DialPublisher(path string, opts ...Option) (*Publisher, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_DGRAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("publisher socket: %w", err)
	}

	p := NewPublisher(fd, path, opts...)
	p.owned = true
	return p, nil
}

// Publish sends s to the destination path. Errors drop the sample.
func (p *Publisher) Publish(s qos.Sample) {
	p.buf = s.AppendBinary(p.buf[:0])

	err := unix.Sendto(p.fd, p.buf, unix.MSG_DONTWAIT, p.addr)
	p.observer.SamplePublished(s, err)
	if err != nil {
		p.logger.Debug("sample dropped",
			ports.String("path", p.path),
			ports.Err(err),
		)
	}
}

// Path returns the destination socket path.
func (p *Publisher) Path() string { return p.path }

// Close closes the socket if it was opened by DialPublisher.
func (p *Publisher) Close() error {
	if !p.owned || p.fd < 0 {
		return nil
	}
	err := unix.Close(p.fd)
	p.fd = -1
	return err
}
