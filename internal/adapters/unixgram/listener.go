package unixgram

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"

	"github.com/bft-labs/qosship/pkg/qos"
)

// Listener receives samples on a bound datagram socket.
type Listener struct {
	conn *net.UnixConn
	path string
}

// Listen binds a datagram socket at path, removing a stale socket file
// left behind by a previous consumer.
func Listen(path string) (*Listener, error) {
	if err := removeStale(path); err != nil {
		return nil, err
	}

	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	return &Listener{conn: conn, path: path}, nil
}

func removeStale(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Mode()&fs.ModeSocket == 0 {
		return fmt.Errorf("%s exists and is not a socket", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	return nil
}

// Path returns the bound socket path.
func (l *Listener) Path() string { return l.path }

// Serve reads datagrams until ctx is cancelled, calling fn for each
// decodable sample, or until the listener is closed. Datagrams shorter
// than a record are skipped.
func (l *Listener) Serve(ctx context.Context, fn func(qos.Sample)) error {
	stop := context.AfterFunc(ctx, func() {
		_ = l.conn.Close()
	})
	defer stop()

	buf := make([]byte, 512)
	for {
		n, err := l.conn.Read(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		var s qos.Sample
		if err := s.UnmarshalBinary(buf[:n]); err != nil {
			continue
		}
		fn(s)
	}
}

// Close closes the socket and removes the socket file.
func (l *Listener) Close() error {
	err := l.conn.Close()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	if rmErr := os.Remove(l.path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
		return errors.Join(err, rmErr)
	}
	return err
}
