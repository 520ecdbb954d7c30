package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/qosship/internal/agent"
	"github.com/bft-labs/qosship/internal/cliconfig"
	"github.com/bft-labs/qosship/pkg/log"
)

const helpDescription = `
Sample the link quality of one associated Wi-Fi station and publish each
sample as a fixed 24-byte datagram to a local unix socket.

Statistics are requested from nl80211 every --interval milliseconds and
whenever the kernel multicasts a station event. Nothing is buffered: when
no consumer is bound to the socket, samples are dropped.

Without a peer address the access point of a station-mode interface is
looked up; in AP mode the peer must be given.
`

var exampleUsage = strings.TrimSpace(`
  qosship wlan0
  qosship wlan0 aa:bb:cc:00:11:22 -i 250
  QOS_SOCK=/tmp/wifi_qos.sock qosship wlp2s0 --metrics-addr 127.0.0.1:9101
  qosship listen --socket /tmp/wifi_qos.sock
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

type flags struct {
	cfg        cliconfig.Config
	cfgPath    string
	intervalMs int64
}

// load layers file, environment and positional arguments under the flags
// the user set explicitly.
func (f *flags) load(cmd *cobra.Command, args []string) (cliconfig.Config, error) {
	cfg := f.cfg

	changed := map[string]bool{}
	cmd.Flags().Visit(func(fl *pflag.Flag) { changed[fl.Name] = true })

	if len(args) > 0 {
		cfg.Iface = args[0]
		changed["iface"] = true
	}
	if len(args) > 1 {
		cfg.Peer = args[1]
		changed["peer"] = true
	}
	if changed["interval"] {
		if f.intervalMs < 0 {
			return cfg, fmt.Errorf("interval must not be negative")
		}
		cfg.Interval = time.Duration(f.intervalMs) * time.Millisecond
	}

	cfgFile := f.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}
	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
			return cfg, err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func main() {
	f := &flags{cfg: cliconfig.DefaultConfig()}
	logger := cliconfig.Logger(zerolog.InfoLevel)

	root := &cobra.Command{
		Use:           "qosship <iface> [peer-mac]",
		Short:         "Publish Wi-Fi station link quality to a local datagram socket",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd, args)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger = cliconfig.Logger(cfg.Level())
			logger.Info().Interface("config", cfg).Msg("configuration")

			// No signal handler: SIGINT and SIGTERM end the process.
			return agent.Run(context.Background(), cfg,
				agent.WithLogger(log.NewZerologAdapterWithLogger(logger)),
			)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.cfgPath, "config", "", "path to config file (default: $HOME/.qosship/config.toml)")
	pf.StringVar(&f.cfg.SocketPath, "socket", f.cfg.SocketPath, "consumer datagram socket path (env QOS_SOCK)")
	pf.StringVar(&f.cfg.LogLevel, "log-level", f.cfg.LogLevel, "log level: debug, info, warn, error")

	root.Flags().Int64VarP(&f.intervalMs, "interval", "i", f.cfg.Interval.Milliseconds(), "heartbeat interval in milliseconds, 0 disables polling")
	root.Flags().StringVar(&f.cfg.MetricsAddr, "metrics-addr", f.cfg.MetricsAddr, "serve Prometheus metrics on this address")
	root.Flags().BoolVar(&f.cfg.WatchConsumer, "watch-consumer", f.cfg.WatchConsumer, "log when a consumer binds or leaves the socket")

	root.AddCommand(newListenCmd(f, &logger))

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("qosship")
		os.Exit(1)
	}
}
