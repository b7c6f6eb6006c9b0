package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skywatch-labs/stationglobe/internal/geodata"
)

var convertOut string

var convertCmd = &cobra.Command{
	Use:   "convert <shapefile>",
	Short: "Convert a shapefile to outline GeoJSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		geoms, err := geodata.ReadShapefile(args[0])
		if err != nil {
			return err
		}

		data, err := geodata.EncodeFeatureCollection(geoms)
		if err != nil {
			return err
		}

		if convertOut == "" || convertOut == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(convertOut, data, 0o644); err != nil {
			return eris.Wrapf(err, "convert: write %s", convertOut)
		}

		zap.L().Info("converted shapefile",
			zap.String("input", args[0]),
			zap.String("output", convertOut),
			zap.Int("geometries", len(geoms)),
		)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "output GeoJSON path (default stdout)")
	rootCmd.AddCommand(convertCmd)
}
