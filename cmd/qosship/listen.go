package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bft-labs/qosship/internal/adapters/unixgram"
	"github.com/bft-labs/qosship/internal/cliconfig"
	"github.com/bft-labs/qosship/pkg/log"
	"github.com/bft-labs/qosship/pkg/qos"
)

func newListenCmd(f *flags, logger *zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Bind the consumer socket and log every sample received",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd, nil)
			if err != nil {
				return err
			}
			if cfg.SocketPath == "" {
				return fmt.Errorf("socket path is required")
			}

			*logger = cliconfig.Logger(cfg.Level())
			out := log.NewZerologAdapterWithLogger(*logger)

			l, err := unixgram.Listen(cfg.SocketPath)
			if err != nil {
				return err
			}
			defer l.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out.Info("listening", log.String("socket", l.Path()))
			return l.Serve(ctx, func(s qos.Sample) { logSample(out, s) })
		},
	}
}

func logSample(l log.Logger, s qos.Sample) {
	l.Info("sample",
		log.Int32("signal_dbm", s.RSSIdBm),
		log.Uint32("tx_ok", s.TxOK),
		log.Uint32("tx_retry", s.TxRetry),
		log.Uint32("tx_fail", s.TxFail),
		log.Float64("retry_ratio", retryRatio(s)),
		log.Any("time", s.Time()),
	)
}

// retryRatio is the share of transmit attempts that were retries.
func retryRatio(s qos.Sample) float64 {
	total := uint64(s.TxOK) + uint64(s.TxRetry)
	if total == 0 {
		return 0
	}
	return float64(s.TxRetry) / float64(total)
}
