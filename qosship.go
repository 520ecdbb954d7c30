// Package qosship samples Wi-Fi link quality for one associated station
// and publishes each sample to a local unix datagram socket.
//
// Example usage:
//
//	cfg := qosship.DefaultConfig()
//	cfg.Iface = "wlan0"
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := qosship.Run(context.Background(), cfg, nil); err != nil {
//	    log.Fatal(err)
//	}
//
// Consumers decode datagrams with qos.Sample.UnmarshalBinary.
package qosship

import (
	"context"

	"github.com/bft-labs/qosship/internal/agent"
	"github.com/bft-labs/qosship/internal/cliconfig"
	"github.com/bft-labs/qosship/pkg/log"
)

// Config holds the sampler configuration.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = agent.Config

// Run starts sampling with the given configuration. It blocks on the
// calling goroutine and returns only on a fatal error.
func Run(ctx context.Context, cfg Config, logger log.Logger) error {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return agent.Run(ctx, cfg, agent.WithLogger(logger))
}

// DefaultConfig returns a Config with default values. Iface must be set
// before calling Run.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// DefaultSocketPath is the destination used when none is configured.
func DefaultSocketPath() string {
	return cliconfig.DefaultSocketPath()
}
