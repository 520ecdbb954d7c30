// Package domain contains the core types shared across qosship's
// application and adapter layers.
//
// # Entities
//
//   - [PeerIdentity]: hardware address of the monitored remote station
//
// The link-quality sample itself lives in pkg/qos so that consumers of the
// published records can import it.
//
// # Errors
//
// Sentinel errors in errors.go mark the fatal tier: conditions that stop the
// process at startup. Transient per-message and per-send failures never
// surface as errors outside the component that hit them.
package domain
