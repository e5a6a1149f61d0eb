package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline/roadrank/internal/route"
	"github.com/gridline/roadrank/internal/table"
)

var distanceCmd = &cobra.Command{
	Use:   "distance",
	Short: "Compute shortest-path distance from the origin to every segment",
	Long: `Run Dijkstra from the graph node nearest the origin coordinate and write
the per-segment distance table. A segment's distance is the minimum of its
endpoint distances; segments with no path record the unreachable sentinel.

Examples:
  roadrank distance
  roadrank distance --origin-lat 21.0285 --origin-lon 105.8542`,
	RunE: runDistance,
}

func init() {
	f := distanceCmd.Flags()
	f.Float64("origin-lat", 0, "origin latitude (overrides config)")
	f.Float64("origin-lon", 0, "origin longitude (overrides config)")

	rootCmd.AddCommand(distanceCmd)
}

func runDistance(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := zap.L().With(zap.String("command", "distance"))

	m, err := openManifest(ctx)
	if err != nil {
		return err
	}
	defer m.Close()

	g, _, err := loadGraph(ctx, m)
	if err != nil {
		return err
	}

	origin := originOverrides(cmd)
	originNode, err := route.NearestNode(g, origin)
	if err != nil {
		return err
	}
	log.Info("origin resolved",
		zap.Float64("lat", origin.Lat),
		zap.Float64("lon", origin.Lon),
		zap.Int("node", originNode),
	)

	nodeDist := route.NodeDistances(g, originNode)
	records := route.SegmentDistances(g, nodeDist)

	if err := table.WriteDistances(cfg.DataDir, records); err != nil {
		return eris.Wrap(err, "distance: write table")
	}
	runID, err := m.Record(ctx, "distance", table.Distances.Path(cfg.DataDir), len(records))
	if err != nil {
		return err
	}

	log.Info("distance table written",
		zap.String("run_id", runID),
		zap.Int("segments", len(records)),
	)
	return nil
}
