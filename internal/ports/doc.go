// Package ports defines the interfaces that connect the scheduling core in
// internal/app to its infrastructure adapters.
//
// # Port Interfaces
//
//   - [StationSource]: issues station-stats requests and drains replies
//   - [Poller]: blocking multiplexed wait on the netlink socket and heartbeat timer
//   - [Publisher]: best-effort forwarding of samples to the local consumer
//   - [Observer]: counters for requests, messages and deliveries
//   - [Logger]: structured logging
//
// The application layer depends only on these interfaces; adapters under
// internal/adapters and internal/nl80211 implement them. Tests substitute
// fakes driven by a simulated clock.
package ports
