package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline/roadrank/internal/metrics"
	"github.com/gridline/roadrank/internal/table"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Compute intersection and pedestrian-proximity metrics",
	Long: `Derive per-segment intersection structure (node degrees, road-class weight)
and the distance to the nearest pedestrian infrastructure, and write the
metrics table consumed by the merge stage.`,
	RunE: runMetrics,
}

func init() {
	f := metricsCmd.Flags()
	f.Float64("ped-buffer", 0, "pedestrian search radius in meters (overrides config)")

	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := zap.L().With(zap.String("command", "metrics"))

	m, err := openManifest(ctx)
	if err != nil {
		return err
	}
	defer m.Close()

	g, _, err := loadGraph(ctx, m)
	if err != nil {
		return err
	}

	buffer := cfg.Metrics.PedBufferM
	if cmd.Flags().Changed("ped-buffer") {
		buffer, _ = cmd.Flags().GetFloat64("ped-buffer")
		if buffer <= 0 {
			return eris.Errorf("metrics: --ped-buffer must be positive (got %v)", buffer)
		}
	}

	records := metrics.Compute(g, buffer)

	if err := table.WriteMetrics(cfg.DataDir, records); err != nil {
		return eris.Wrap(err, "metrics: write table")
	}
	runID, err := m.Record(ctx, "metrics", table.Metrics.Path(cfg.DataDir), len(records))
	if err != nil {
		return err
	}

	log.Info("metrics table written",
		zap.String("run_id", runID),
		zap.Int("segments", len(records)),
	)
	return nil
}
