package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gridline/roadrank/internal/table"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pipeline stage checkpoints",
	Long: `List the completed stage checkpoints from the run manifest: which stage
tables exist, their row counts, and when each stage last completed. A
stage listed here is a safe restart point.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// stageOrder is the canonical pipeline order for display.
var stageOrder = []string{"extract", "distance", "centrality", "metrics", "merge", "select"}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m, err := openManifest(ctx)
	if err != nil {
		return err
	}
	defer m.Close()

	checkpoints, err := m.List(ctx)
	if err != nil {
		return err
	}
	byStage := make(map[string]int, len(checkpoints))
	for i, cp := range checkpoints {
		byStage[cp.Stage] = i
	}

	fmt.Printf("%-12s %-10s %-8s %-20s %s\n", "STAGE", "STATUS", "ROWS", "COMPLETED", "OUTPUT")
	for _, stage := range stageOrder {
		i, ok := byStage[stage]
		if !ok {
			fmt.Printf("%-12s %-10s %-8s %-20s %s\n", stage, "pending", "-", "-", "-")
			continue
		}
		cp := checkpoints[i]
		status := "done"
		if !table.Exists(cfg.DataDir, stageSchema(stage)) {
			// Checkpoint without its table: the file was removed out of band.
			status = "stale"
		}
		fmt.Printf("%-12s %-10s %-8d %-20s %s\n",
			stage, status, cp.Rows, cp.CompletedAt.Format("2006-01-02 15:04:05"), cp.Output)
	}
	return nil
}

func stageSchema(stage string) table.Schema {
	switch stage {
	case "extract":
		return table.Segments
	case "distance":
		return table.Distances
	case "centrality":
		return table.Centrality
	case "metrics":
		return table.Metrics
	case "merge":
		return table.Merged
	default:
		return table.Selection
	}
}
