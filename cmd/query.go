package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline/roadrank/internal/model"
	"github.com/gridline/roadrank/internal/query"
	"github.com/gridline/roadrank/internal/table"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "List or walk the selected segments",
	Long: `Read the selection output and print it either in score order (default) or,
with --continuous, in connected traversal order starting from the seed
segment. Continuous mode fails when the selection spans more than one
component; rerun select with --single-component or use listing mode.

Examples:
  roadrank query
  roadrank query --continuous
  roadrank query --format geojson --output selected.geojson`,
	RunE: runQuery,
}

func init() {
	f := queryCmd.Flags()
	f.Bool("continuous", false, "walk segments in connected traversal order")
	f.String("format", "table", "output format: table, csv, or geojson")
	f.String("output", "", "output file path (default: stdout)")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	continuous, _ := cmd.Flags().GetBool("continuous")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	if format != "table" && format != "csv" && format != "geojson" {
		return eris.Errorf("query: --format must be table, csv, or geojson (got %q)", format)
	}

	m, err := openManifest(ctx)
	if err != nil {
		return err
	}
	defer m.Close()

	if _, err := m.Require(ctx, "select"); err != nil {
		return err
	}
	g, segments, err := loadGraph(ctx, m)
	if err != nil {
		return err
	}
	selection, err := table.ReadSelection(cfg.DataDir)
	if err != nil {
		return err
	}

	engine, err := query.New(g, segments, selection)
	if err != nil {
		return err
	}

	var records []model.SelectionRecord
	if continuous {
		records, err = engine.Continuous()
		if err != nil {
			return err
		}
	} else {
		records = engine.Listing()
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "query: create %s", outputPath)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "geojson":
		data, err := engine.GeoJSON(records)
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return eris.Wrap(err, "query: write geojson")
		}
	case "csv":
		w := csv.NewWriter(out)
		if err := w.Write([]string{"segment_id", "component", "rank", "score"}); err != nil {
			return eris.Wrap(err, "query: write csv header")
		}
		for _, r := range records {
			row := []string{
				strconv.FormatInt(r.SegmentID, 10),
				strconv.Itoa(r.Component),
				strconv.Itoa(r.Rank),
				strconv.FormatFloat(r.Score, 'f', 6, 64),
			}
			if err := w.Write(row); err != nil {
				return eris.Wrap(err, "query: write csv row")
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return eris.Wrap(err, "query: flush csv")
		}
	default:
		fmt.Fprintf(out, "%-12s %-10s %-6s %s\n", "SEGMENT", "COMPONENT", "RANK", "SCORE")
		for _, r := range records {
			fmt.Fprintf(out, "%-12d %-10d %-6d %.6f\n", r.SegmentID, r.Component, r.Rank, r.Score)
		}
	}

	zap.L().Info("query complete",
		zap.String("command", "query"),
		zap.Bool("continuous", continuous),
		zap.Int("segments", len(records)),
	)
	return nil
}
