package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config in TOML form. Pointers distinguish an absent
// key from an explicit zero.
type FileConfig struct {
	Iface         string `toml:"iface"`
	Peer          string `toml:"peer"`
	IntervalMs    *int64 `toml:"interval_ms"`
	SocketPath    string `toml:"socket_path"`
	MetricsAddr   string `toml:"metrics_addr"`
	LogLevel      string `toml:"log_level"`
	WatchConsumer *bool  `toml:"watch_consumer"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.qosship/config.toml, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".qosship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("iface", fc.Iface, &cfg.Iface)
	s.setString("peer", fc.Peer, &cfg.Peer)
	s.setString("socket", fc.SocketPath, &cfg.SocketPath)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setMillis("interval", fc.IntervalMs, &cfg.Interval); err != nil {
		return err
	}

	s.setBool("watch-consumer", fc.WatchConsumer, &cfg.WatchConsumer)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
