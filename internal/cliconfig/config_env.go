package cliconfig

import "os"

// Environment variables read by ApplyEnvConfig. SocketEnv keeps the name
// existing consumers already export.
const (
	EnvIface         = "QOSSHIP_IFACE"
	EnvPeer          = "QOSSHIP_PEER"
	EnvIntervalMs    = "QOSSHIP_INTERVAL_MS"
	EnvMetricsAddr   = "QOSSHIP_METRICS_ADDR"
	EnvLogLevel      = "QOSSHIP_LOG_LEVEL"
	EnvWatchConsumer = "QOSSHIP_WATCH_CONSUMER"
	SocketEnv        = "QOS_SOCK"
)

// ApplyEnvConfig applies environment variables to the Config struct,
// skipping values whose flag was set on the command line.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("iface", os.Getenv(EnvIface), &cfg.Iface)
	s.setString("peer", os.Getenv(EnvPeer), &cfg.Peer)
	s.setString("socket", os.Getenv(SocketEnv), &cfg.SocketPath)
	s.setString("metrics-addr", os.Getenv(EnvMetricsAddr), &cfg.MetricsAddr)
	s.setString("log-level", os.Getenv(EnvLogLevel), &cfg.LogLevel)

	if err := s.setMillisFromString("interval", os.Getenv(EnvIntervalMs), &cfg.Interval); err != nil {
		return err
	}

	s.setBoolFromString("watch-consumer", os.Getenv(EnvWatchConsumer), &cfg.WatchConsumer)

	return nil
}
