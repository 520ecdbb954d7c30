package domain

import (
	"fmt"
	"net"
)

// PeerIdentity is the 6-byte hardware address of the remote station whose
// link statistics are sampled.
type PeerIdentity [6]byte

// ParsePeerIdentity parses a colon, dash or dot separated EUI-48 address.
func ParsePeerIdentity(s string) (PeerIdentity, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return PeerIdentity{}, fmt.Errorf("%w: %q", ErrInvalidPeer, s)
	}
	return PeerIdentityFromHardwareAddr(hw)
}

// PeerIdentityFromHardwareAddr converts a net.HardwareAddr, which must be
// exactly 6 bytes long.
func PeerIdentityFromHardwareAddr(hw net.HardwareAddr) (PeerIdentity, error) {
	var p PeerIdentity
	if len(hw) != len(p) {
		return p, fmt.Errorf("%w: %d-byte address %s", ErrInvalidPeer, len(hw), hw)
	}
	copy(p[:], hw)
	return p, nil
}

// IsZero reports whether p is the all-zero address, which the kernel
// reports for an unassociated interface.
func (p PeerIdentity) IsZero() bool {
	return p == PeerIdentity{}
}

// HardwareAddr returns p as a net.HardwareAddr.
func (p PeerIdentity) HardwareAddr() net.HardwareAddr {
	return net.HardwareAddr(p[:])
}

func (p PeerIdentity) String() string {
	return p.HardwareAddr().String()
}
