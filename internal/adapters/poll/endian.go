package poll

import "github.com/josharian/native"

// hostUint64 decodes the timerfd expiration counter, which the kernel
// writes in host byte order.
func hostUint64(b [8]byte) uint64 {
	return native.Endian.Uint64(b[:])
}
