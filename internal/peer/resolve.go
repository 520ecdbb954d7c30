//go:build linux

// Package peer determines which remote station to sample when none is
// given on the command line.
package peer

import (
	"fmt"
	"net"

	"github.com/bft-labs/qosship/internal/domain"
	"github.com/bft-labs/qosship/internal/nl80211"
	"github.com/bft-labs/qosship/internal/ports"
	"github.com/bft-labs/qosship/pkg/log"
)

// Interface identifies a local wireless interface.
type Interface struct {
	Name  string
	Index int
}

// InterfaceByName resolves the kernel index of a named interface.
func InterfaceByName(name string) (Interface, error) {
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return Interface{}, fmt.Errorf("interface %q: %w", name, err)
	}
	return Interface{Name: ifi.Name, Index: ifi.Index}, nil
}

// Lookup is one source of the associated access point address.
type Lookup struct {
	Name string
	Find func(iface Interface) (domain.PeerIdentity, error)
}

// WirelessExtensions asks the driver for the current AP with SIOCGIWAP.
func WirelessExtensions() Lookup {
	return Lookup{Name: "SIOCGIWAP", Find: func(iface Interface) (domain.PeerIdentity, error) {
		return accessPoint(iface.Name)
	}}
}

// ScanDump searches the nl80211 scan results for the associated BSS.
func ScanDump() Lookup {
	return Lookup{Name: "nl80211 scan", Find: func(iface Interface) (domain.PeerIdentity, error) {
		return nl80211.AssociatedBSS(iface.Index)
	}}
}

// Resolver picks the peer from an explicit address or the configured
// lookups, in order.
type Resolver struct {
	lookups []Lookup
	logger  ports.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

func WithLogger(l ports.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithLookups replaces the default lookup chain.
func WithLookups(lookups ...Lookup) Option {
	return func(r *Resolver) { r.lookups = lookups }
}

// NewResolver returns a Resolver that tries WirelessExtensions then ScanDump.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		lookups: []Lookup{WirelessExtensions(), ScanDump()},
		logger:  log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the explicit address when one is given. Otherwise the
// first lookup yielding a non-zero address wins. When none does, as on an
// interface in AP mode, it returns domain.ErrPeerUnresolved.
func (r *Resolver) Resolve(iface Interface, explicit string) (domain.PeerIdentity, error) {
	if explicit != "" {
		return domain.ParsePeerIdentity(explicit)
	}

	for _, l := range r.lookups {
		p, err := l.Find(iface)
		if err != nil {
			r.logger.Debug("peer lookup failed",
				ports.String("lookup", l.Name),
				ports.String("iface", iface.Name),
				ports.Err(err),
			)
			continue
		}
		if p.IsZero() {
			r.logger.Debug("peer lookup found no access point",
				ports.String("lookup", l.Name),
				ports.String("iface", iface.Name),
			)
			continue
		}

		r.logger.Info("peer resolved",
			ports.String("lookup", l.Name),
			ports.Stringer("peer", p),
		)
		return p, nil
	}

	return domain.PeerIdentity{}, domain.ErrPeerUnresolved
}
