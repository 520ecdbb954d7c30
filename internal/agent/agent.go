// Package agent assembles the sampler from its adapters and runs it.
package agent

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/bft-labs/qosship/internal/adapters/metrics"
	"github.com/bft-labs/qosship/internal/adapters/poll"
	"github.com/bft-labs/qosship/internal/adapters/unixgram"
	"github.com/bft-labs/qosship/internal/adapters/watch"
	"github.com/bft-labs/qosship/internal/app"
	"github.com/bft-labs/qosship/internal/cliconfig"
	"github.com/bft-labs/qosship/internal/nl80211"
	"github.com/bft-labs/qosship/internal/peer"
	"github.com/bft-labs/qosship/internal/ports"
	"github.com/bft-labs/qosship/pkg/log"
)

// Config is the sampler configuration.
type Config = cliconfig.Config

type options struct {
	logger   ports.Logger
	registry *prometheus.Registry
	lookups  []peer.Lookup
}

// Option configures Run.
type Option func(*options)

// WithLogger sets the logger shared by every component.
func WithLogger(l ports.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRegistry registers metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithPeerLookups replaces the lookups used when no peer is configured.
func WithPeerLookups(lookups ...peer.Lookup) Option {
	return func(o *options) { o.lookups = lookups }
}

// Run validates cfg, opens the netlink session, timer and consumer socket,
// and runs the event loop on the calling goroutine. It returns only on a
// fatal error. ctx bounds the metrics server and consumer watcher; the
// loop itself is not interrupted by cancellation.
func Run(ctx context.Context, cfg Config, opts ...Option) error {
	o := options{logger: log.NewNoopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger

	if err := cfg.Validate(); err != nil {
		return err
	}

	iface, err := peer.InterfaceByName(cfg.Iface)
	if err != nil {
		return err
	}

	resolverOpts := []peer.Option{peer.WithLogger(logger)}
	if o.lookups != nil {
		resolverOpts = append(resolverOpts, peer.WithLookups(o.lookups...))
	}
	target, err := peer.NewResolver(resolverOpts...).Resolve(iface, cfg.Peer)
	if err != nil {
		return err
	}

	observer, err := startMetrics(ctx, cfg, o, logger)
	if err != nil {
		return err
	}

	session, err := nl80211.Dial(
		nl80211.WithLogger(logger),
		nl80211.WithObserver(observer),
	)
	if err != nil {
		return err
	}
	defer session.Close()

	fd, err := session.FD()
	if err != nil {
		return fmt.Errorf("netlink socket: %w", err)
	}

	poller, err := poll.New(fd, cfg.Interval)
	if err != nil {
		return err
	}
	defer poller.Close()

	publisher, err := unixgram.DialPublisher(cfg.SocketPath,
		unixgram.WithLogger(logger),
		unixgram.WithObserver(observer),
	)
	if err != nil {
		return err
	}
	defer publisher.Close()

	if cfg.WatchConsumer {
		w := watch.New(cfg.SocketPath,
			watch.WithLogger(logger),
			watch.WithObserver(observer),
		)
		w.Start(ctx)
		defer w.Stop()
	}

	logger.Info("sampling station",
		ports.String("iface", iface.Name),
		ports.Int("ifindex", iface.Index),
		ports.Stringer("peer", target),
		ports.Duration("interval", cfg.Interval),
		ports.String("socket", cfg.SocketPath),
		ports.Int("groups", len(session.Groups())),
	)

	station := session.Station(nl80211.Target{Ifindex: iface.Index, Peer: target})
	return app.NewScheduler(station, poller, publisher, logger).Run()
}

// startMetrics returns a Prometheus observer served on cfg.MetricsAddr,
// or a no-op observer when no address is configured.
func startMetrics(ctx context.Context, cfg Config, o options, logger ports.Logger) (ports.Observer, error) {
	if cfg.MetricsAddr == "" {
		return ports.NoopObserver{}, nil
	}

	reg := o.registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	observer, err := metrics.NewPromObserver(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	go func() {
		if err := metrics.Serve(ctx, cfg.MetricsAddr, reg); err != nil {
			logger.Warn("metrics server stopped",
				ports.String("addr", cfg.MetricsAddr),
				ports.Err(err),
			)
		}
	}()
	logger.Info("metrics enabled", ports.String("addr", cfg.MetricsAddr))

	return observer, nil
}
