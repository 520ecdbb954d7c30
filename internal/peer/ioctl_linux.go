//go:build linux

package peer

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/bft-labs/qosship/internal/domain"
)

// siocgiwap is SIOCGIWAP from linux/wireless.h.
const siocgiwap = 0x8B15

// iwreq mirrors struct iwreq with the ap_addr member of the union.
type iwreq struct {
	name   [unix.IFNAMSIZ]byte
	family uint16
	addr   [14]byte
}

func accessPoint(ifname string) (domain.PeerIdentity, error) {
	if len(ifname) >= unix.IFNAMSIZ {
		return domain.PeerIdentity{}, fmt.Errorf("interface name %q too long", ifname)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return domain.PeerIdentity{}, fmt.Errorf("socket: %w", err)
	}
	defer unix.Close(fd)

	var req iwreq
	copy(req.name[:], ifname)

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), siocgiwap, uintptr(unsafe.Pointer(&req)))
	if errno != 0 {
		return domain.PeerIdentity{}, fmt.Errorf("SIOCGIWAP: %w", errno)
	}

	var p domain.PeerIdentity
	copy(p[:], req.addr[:len(p)])
	return p, nil
}
