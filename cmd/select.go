package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline/roadrank/internal/selector"
	"github.com/gridline/roadrank/internal/table"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Select the top-scoring connected subset of segments",
	Long: `Sort segments by composite score and greedily grow a connected frontier
from the highest-scoring one, admitting only segments adjacent to the
frontier. When no adjacent candidate remains, the next-highest unselected
segment seeds a new component (unless --single-component). At most K
segments are selected in total.

Examples:
  roadrank select
  roadrank select --top-k 50 --single-component`,
	RunE: runSelect,
}

func init() {
	f := selectCmd.Flags()
	f.Int("top-k", 0, "number of segments to select (overrides config)")
	f.Bool("single-component", false, "stop at the first component instead of seeding new ones")

	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := zap.L().With(zap.String("command", "select"))

	m, err := openManifest(ctx)
	if err != nil {
		return err
	}
	defer m.Close()

	if _, err := m.Require(ctx, "merge"); err != nil {
		return err
	}
	g, _, err := loadGraph(ctx, m)
	if err != nil {
		return err
	}

	opts := selector.Options{
		TopK:           cfg.Select.TopK,
		MultiComponent: cfg.Select.MultiComponent,
	}
	if cmd.Flags().Changed("top-k") {
		opts.TopK, _ = cmd.Flags().GetInt("top-k")
		if opts.TopK <= 0 {
			return eris.Errorf("select: --top-k must be positive (got %d)", opts.TopK)
		}
	}
	if single, _ := cmd.Flags().GetBool("single-component"); single {
		opts.MultiComponent = false
	}

	scores, err := table.ReadScores(cfg.DataDir)
	if err != nil {
		return err
	}

	records := selector.Select(g, scores, opts)

	if err := table.WriteSelection(cfg.DataDir, records); err != nil {
		return eris.Wrap(err, "select: write table")
	}
	runID, err := m.Record(ctx, "select", table.Selection.Path(cfg.DataDir), len(records))
	if err != nil {
		return err
	}

	log.Info("selection written",
		zap.String("run_id", runID),
		zap.Int("selected", len(records)),
		zap.Int("top_k", opts.TopK),
	)
	return nil
}
