package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skywatch-labs/stationglobe/internal/server"
	"github.com/skywatch-labs/stationglobe/internal/upstream"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local station data API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		client := upstream.NewClient(upstream.Options{
			BaseURL:           cfg.Data.UpstreamBase,
			UserAgent:         cfg.Data.UserAgent,
			RawTTL:            cfg.Data.RawTTL,
			RequestsPerSecond: cfg.Data.RatePerSecond,
		})

		zap.L().Info("starting station API",
			zap.String("upstream", cfg.Data.UpstreamBase),
			zap.Duration("slice_ttl", cfg.Data.SliceTTL),
		)

		return server.New(*cfg, client).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
