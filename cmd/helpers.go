package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gridline/roadrank/internal/graph"
	"github.com/gridline/roadrank/internal/model"
	"github.com/gridline/roadrank/internal/store"
	"github.com/gridline/roadrank/internal/table"
)

// openManifest opens the run manifest under the data directory and ensures
// its schema exists.
func openManifest(ctx context.Context) (*store.Manifest, error) {
	m, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	if err := m.Migrate(ctx); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

// loadGraph rebuilds the segment graph from the extract checkpoint. The build
// is deterministic, so every stage that needs adjacency derives the same
// graph from the same segment table.
func loadGraph(ctx context.Context, m *store.Manifest) (*graph.Graph, []model.Segment, error) {
	if _, err := m.Require(ctx, "extract"); err != nil {
		return nil, nil, err
	}
	segments, err := table.ReadSegments(cfg.DataDir)
	if err != nil {
		return nil, nil, eris.Wrap(err, "load segment table")
	}
	return graph.Build(segments, cfg.Graph.Epsilon), segments, nil
}

// originOverrides applies --origin-lat / --origin-lon flags when set.
func originOverrides(cmd *cobra.Command) model.Point {
	origin := model.Point{Lat: cfg.Origin.Lat, Lon: cfg.Origin.Lon}
	if cmd.Flags().Changed("origin-lat") {
		origin.Lat, _ = cmd.Flags().GetFloat64("origin-lat")
	}
	if cmd.Flags().Changed("origin-lon") {
		origin.Lon, _ = cmd.Flags().GetFloat64("origin-lon")
	}
	return origin
}
