package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline/roadrank/internal/merge"
	"github.com/gridline/roadrank/internal/table"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge metric tables into composite scores",
	Long: `Normalize the distance, centrality, and supplementary metric tables to
[0,1] and combine them into one composite score per segment using the
configured weights. Segments missing from any input table are dropped and
counted; unreachable segments contribute zero closeness but stay in.

Only this stage and select need to rerun when weights change; the graph
build, distances, and centrality stay checkpointed.

Examples:
  roadrank merge
  roadrank merge --normalization rank`,
	RunE: runMerge,
}

func init() {
	f := mergeCmd.Flags()
	f.String("normalization", "", "normalization method: minmax or rank (overrides config)")

	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := zap.L().With(zap.String("command", "merge"))

	m, err := openManifest(ctx)
	if err != nil {
		return err
	}
	defer m.Close()

	for _, stage := range []string{"distance", "centrality", "metrics"} {
		if _, err := m.Require(ctx, stage); err != nil {
			return err
		}
	}

	mergeCfg := cfg.Merge
	if cmd.Flags().Changed("normalization") {
		mergeCfg.Normalization, _ = cmd.Flags().GetString("normalization")
		if mergeCfg.Normalization != "minmax" && mergeCfg.Normalization != "rank" {
			return eris.Errorf("merge: --normalization must be minmax or rank (got %q)", mergeCfg.Normalization)
		}
	}

	distances, err := table.ReadDistances(cfg.DataDir)
	if err != nil {
		return err
	}
	cent, err := table.ReadCentrality(cfg.DataDir)
	if err != nil {
		return err
	}
	met, err := table.ReadMetrics(cfg.DataDir)
	if err != nil {
		return err
	}

	records := merge.Merge(merge.Inputs{
		Distances:  distances,
		Centrality: cent,
		Metrics:    met,
	}, mergeCfg)

	if err := table.WriteScores(cfg.DataDir, records); err != nil {
		return eris.Wrap(err, "merge: write table")
	}
	runID, err := m.Record(ctx, "merge", table.Merged.Path(cfg.DataDir), len(records))
	if err != nil {
		return err
	}

	log.Info("merged table written",
		zap.String("run_id", runID),
		zap.Int("segments", len(records)),
		zap.String("normalization", mergeCfg.Normalization),
	)
	return nil
}
