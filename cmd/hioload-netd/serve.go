package main

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/facade"
	"github.com/momentics/hioload-net/internal/observability"
)

func newServeCmd(c *cli) *cobra.Command {
	var echo bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the receive loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, level, err := observability.SetupLogger(c.cfg.Log)
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			h, err := facade.New(c.cfg, log, facade.WithLevel(level))
			if err != nil {
				return err
			}
			if err := h.Start(); err != nil {
				return err
			}
			defer func() {
				if err := h.Stop(); err != nil {
					log.Warn("shutdown", zap.Error(err))
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info("serving", zap.String("transport", h.Current().Name()), zap.Bool("echo", echo))
			err = h.Run(ctx, packetHandler(log, echo))
			if errors.Is(err, context.Canceled) {
				log.Info("stopping", zap.Any("stats", h.Stats()))
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&echo, "echo", true, "send every received packet back to its sender")
	return cmd
}

func packetHandler(log *zap.Logger, echo bool) facade.Handler {
	return func(t api.Transport, p []byte, from netip.AddrPort) {
		if !echo {
			log.Debug("packet", zap.String("transport", t.Name()), zap.Stringer("from", from), zap.Int("len", len(p)))
			return
		}
		if _, err := t.Send(p, from); err != nil {
			log.Debug("echo failed", zap.String("transport", t.Name()), zap.Error(err))
		}
	}
}
