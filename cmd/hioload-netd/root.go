package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/momentics/hioload-net/internal/config"
)

// cli holds flags and the state resolved in PersistentPreRunE.
type cli struct {
	cfgFile  string
	logLevel string
	cfg      *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "hioload-netd",
		Short: "Packet transport daemon with switchable UDP and browser-channel transports",
		Long: `hioload-netd binds a UDP socket as the default packet transport and,
when the bridge is enabled, accepts a WebSocket peer that switches the
active transport to the browser channel until it disconnects.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if c.logLevel != "" {
				cfg.Log.Level = c.logLevel
			}
			c.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default searches ./hioload-net.yaml, ./configs, ~/.hioload-net)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override log.level: debug, info, warn, error")

	root.AddCommand(newServeCmd(c), newConfigCmd(c), newVersionCmd())
	return root
}
