package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/skywatch-labs/stationglobe/internal/geodata"
	"github.com/skywatch-labs/stationglobe/internal/scene"
	"github.com/skywatch-labs/stationglobe/internal/ui"
	"github.com/skywatch-labs/stationglobe/internal/upstream"
)

var (
	viewStations string
	viewOutlines string
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Open the interactive globe in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		stationsSrc := viewStations
		if stationsSrc == "" {
			stationsSrc = cfg.Data.StationsSource
		}
		outlinesSrc := viewOutlines
		if outlinesSrc == "" {
			outlinesSrc = cfg.Data.OutlinesSource
		}

		client := upstream.NewClient(upstream.Options{
			BaseURL:           cfg.Data.UpstreamBase,
			UserAgent:         cfg.Data.UserAgent,
			RawTTL:            cfg.Data.RawTTL,
			RequestsPerSecond: cfg.Data.RatePerSecond,
		})

		opts := ui.Options{
			Scene: scene.Options{
				Radius:          cfg.Globe.Radius,
				StepDegrees:     cfg.Globe.StepDegrees,
				PointPixelScale: cfg.Globe.PointPixelScale,
				PickPixelScale:  cfg.Globe.PickPixelScale,
			},
		}
		if stationsSrc != "" {
			opts.LoadStations = func(ctx context.Context) ([]geodata.Station, error) {
				raw, err := client.Fetch(ctx, stationsSrc)
				if err != nil {
					return nil, err
				}
				return geodata.ParseStations(raw)
			}
		}
		if outlinesSrc != "" {
			opts.LoadOutlines = func(ctx context.Context) ([]geom.T, error) {
				raw, err := client.Fetch(ctx, outlinesSrc)
				if err != nil {
					return nil, err
				}
				return geodata.ParseOutlines(raw)
			}
		}
		opts.SummarizeStation = func(ctx context.Context, id string) (string, error) {
			raw, err := client.FetchStationRaw(ctx, id)
			if err != nil {
				return "", err
			}
			slice, err := upstream.BuildSlice(raw, upstream.SliceOptions{})
			if err != nil {
				return "", err
			}
			return summarizeSlice(slice), nil
		}

		zap.L().Info("starting globe view",
			zap.String("stations", stationsSrc),
			zap.String("outlines", outlinesSrc),
		)

		p := tea.NewProgram(ui.New(opts), tea.WithAltScreen(), tea.WithMouseAllMotion())
		if _, err := p.Run(); err != nil {
			return eris.Wrap(err, "view: run program")
		}
		return nil
	},
}

// summarizeSlice condenses a station's point series into one status-line
// string.
func summarizeSlice(slice *upstream.Slice) string {
	if slice.PointCount == 0 {
		return "no points"
	}
	last := slice.Points[slice.PointCount-1]
	ts, _ := last["timestamp"].(string)
	return fmt.Sprintf("%d points through %s", slice.PointCount, ts)
}

func init() {
	viewCmd.Flags().StringVar(&viewStations, "stations", "", "station list URL or file (default from config)")
	viewCmd.Flags().StringVar(&viewOutlines, "outlines", "", "outline GeoJSON URL or file (default from config)")
	rootCmd.AddCommand(viewCmd)
}
