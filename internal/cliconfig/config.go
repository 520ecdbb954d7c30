package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/qosship/internal/domain"
)

const (
	// DefaultInterval is the heartbeat period between station requests.
	DefaultInterval = time.Second

	// DefaultSocketName is the consumer socket created under the user's
	// runtime directory.
	DefaultSocketName = "wifi_qos.sock"

	// maxSocketPath is the usable length of sockaddr_un.sun_path.
	maxSocketPath = 107
)

// Config holds CLI configuration for qosship.
type Config struct {
	Iface string
	Peer  string

	// Interval between station requests; zero disables the heartbeat.
	Interval time.Duration

	SocketPath    string
	MetricsAddr   string
	LogLevel      string
	WatchConsumer bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Interval:   DefaultInterval,
		SocketPath: DefaultSocketPath(),
		LogLevel:   zerolog.LevelInfoValue,
	}
}

// DefaultSocketPath returns /run/user/<uid>/wifi_qos.sock.
func DefaultSocketPath() string {
	return filepath.Join("/run/user", strconv.Itoa(os.Getuid()), DefaultSocketName)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Iface == "" {
		return fmt.Errorf("%w: interface is required", domain.ErrInvalidConfig)
	}

	if c.Interval < 0 {
		return fmt.Errorf("%w: interval must not be negative", domain.ErrInvalidConfig)
	}
	if c.Interval%time.Millisecond != 0 {
		return fmt.Errorf("%w: interval must be a whole number of milliseconds, got %v", domain.ErrInvalidConfig, c.Interval)
	}

	if c.SocketPath == "" {
		return fmt.Errorf("%w: socket path is required", domain.ErrInvalidConfig)
	}
	if len(c.SocketPath) > maxSocketPath {
		return fmt.Errorf("%w: socket path longer than %d bytes: %s", domain.ErrInvalidConfig, maxSocketPath, c.SocketPath)
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level: %w", domain.ErrInvalidConfig, err)
	}

	return nil
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setMillis sets a millisecond duration from a pointer. Zero is a valid
// value, so only nil means unset.
func (s *configSetter) setMillis(flag string, value *int64, dst *time.Duration) error {
	if value == nil || s.changed[flag] {
		return nil
	}
	if *value < 0 {
		return fmt.Errorf("%s: negative value %d", flag, *value)
	}
	*dst = time.Duration(*value) * time.Millisecond
	return nil
}

// setMillisFromString parses a millisecond count from an environment variable.
func (s *configSetter) setMillisFromString(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	return s.setMillis(flag, &ms, dst)
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
