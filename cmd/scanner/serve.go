package main

import (
	"time"

	"github.com/spf13/cobra"

	"token-risk-scanner/internal/server"
)

func serveCmd(a *app) *cobra.Command {
	var (
		addr     string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Scan periodically and serve results over HTTP and WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.HTTPAddr = addr
			}
			if interval > 0 {
				a.cfg.ScanInterval = interval
			}

			srv := server.New(server.Options{
				Scanner:   a.newScanner(),
				Addr:      a.cfg.HTTPAddr,
				Interval:  a.cfg.ScanInterval,
				KeyStatus: a.cfg.KeyStatus(),
				Logger:    a.logger,
			})

			a.logger.Info().
				Str("addr", a.cfg.HTTPAddr).
				Dur("interval", a.cfg.ScanInterval).
				Strs("networks", a.cfg.Networks).
				Msg("starting scanner server")

			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "scan interval (overrides SCAN_INTERVAL)")
	return cmd
}
