package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline/roadrank/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "roadrank",
	Short: "Rank road segments by pedestrian proximity and network centrality",
	Long: "Parses a street-network extract into a segment graph, computes origin-relative\n" +
		"distance and betweenness centrality, merges them into a composite score, and\n" +
		"selects a connected subset of top-ranked segments for export.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return cfg.Validate()
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
