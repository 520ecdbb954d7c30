package domain

import "errors"

// Fatal startup errors. Wrapped causes can be inspected with errors.Is.
var (
	// ErrConnect is returned when the generic netlink socket cannot be opened.
	ErrConnect = errors.New("qosship: control-plane connect failed")

	// ErrFamilyUnavailable is returned when the nl80211 family cannot be
	// resolved, meaning the kernel wireless subsystem is not loaded.
	ErrFamilyUnavailable = errors.New("qosship: nl80211 family unavailable")

	// ErrInvalidPeer is returned for a malformed peer hardware address.
	ErrInvalidPeer = errors.New("qosship: invalid peer address")

	// ErrPeerUnresolved is returned when no peer was given and none could
	// be discovered from the interface's association state.
	ErrPeerUnresolved = errors.New("qosship: need peer MAC in AP mode")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("qosship: invalid configuration")
)
