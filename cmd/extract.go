package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline/roadrank/internal/extract"
	"github.com/gridline/roadrank/internal/table"
)

var extractCmd = &cobra.Command{
	Use:   "extract <input>",
	Short: "Parse a street-network file into the segment table",
	Long: `Parse a street-network extract into one record per consecutive point pair.

Supported inputs: OSM PBF (.pbf), OSM XML (.osm, .xml), GeoJSON
(.geojson, .json), ESRI shapefile (.shp). Only ways carrying a highway
tag are kept; way tags are preserved on every derived segment.

Examples:
  roadrank extract hanoi-roads.osm
  roadrank extract extract.geojson`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := zap.L().With(zap.String("command", "extract"))

	ways, err := extract.Ways(ctx, args[0])
	if err != nil {
		return err
	}
	segments, err := extract.Segments(ways)
	if err != nil {
		return err
	}

	if err := table.WriteSegments(cfg.DataDir, segments); err != nil {
		return eris.Wrap(err, "extract: write segment table")
	}

	m, err := openManifest(ctx)
	if err != nil {
		return err
	}
	defer m.Close()
	runID, err := m.Record(ctx, "extract", table.Segments.Path(cfg.DataDir), len(segments))
	if err != nil {
		return err
	}

	log.Info("segment table written",
		zap.String("run_id", runID),
		zap.Int("ways", len(ways)),
		zap.Int("segments", len(segments)),
	)
	return nil
}
