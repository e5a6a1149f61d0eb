package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline/roadrank/internal/centrality"
	"github.com/gridline/roadrank/internal/table"
)

var centralityCmd = &cobra.Command{
	Use:   "centrality",
	Short: "Compute betweenness centrality for every segment",
	Long: `Compute weighted edge betweenness over the segment graph and write the
per-segment centrality table. Disconnected components are scored
independently and in parallel; values are comparable within one run only.`,
	RunE: runCentrality,
}

func init() {
	rootCmd.AddCommand(centralityCmd)
}

func runCentrality(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := zap.L().With(zap.String("command", "centrality"))

	m, err := openManifest(ctx)
	if err != nil {
		return err
	}
	defer m.Close()

	g, _, err := loadGraph(ctx, m)
	if err != nil {
		return err
	}

	records, err := centrality.Compute(g)
	if err != nil {
		return err
	}

	if err := table.WriteCentrality(cfg.DataDir, records); err != nil {
		return eris.Wrap(err, "centrality: write table")
	}
	runID, err := m.Record(ctx, "centrality", table.Centrality.Path(cfg.DataDir), len(records))
	if err != nil {
		return err
	}

	log.Info("centrality table written",
		zap.String("run_id", runID),
		zap.Int("segments", len(records)),
	)
	return nil
}
