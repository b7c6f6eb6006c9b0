package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skywatch-labs/stationglobe/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "stationglobe",
	Short: "Interactive weather-station globe",
	Long:  "Renders weather stations and landmass outlines on an orbitable 3D globe, with hover and click picking, and serves normalized station point data over a local API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
