package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridline/roadrank/internal/table"
)

func TestStageSchemaCoversPipeline(t *testing.T) {
	want := map[string]string{
		"extract":    table.Segments.Name,
		"distance":   table.Distances.Name,
		"centrality": table.Centrality.Name,
		"metrics":    table.Metrics.Name,
		"merge":      table.Merged.Name,
		"select":     table.Selection.Name,
	}
	assert.Len(t, stageOrder, len(want))
	for _, stage := range stageOrder {
		assert.Equal(t, want[stage], stageSchema(stage).Name, "stage %s", stage)
	}
}
