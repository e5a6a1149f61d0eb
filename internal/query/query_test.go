package query

import (
	"encoding/json"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridline/roadrank/internal/graph"
	"github.com/gridline/roadrank/internal/model"
)

const eps = 1e-6

func pt(lat, lon float64) model.Point { return model.Point{Lat: lat, Lon: lon} }

func seg(id int64, a, b model.Point, length float64) model.Segment {
	return model.Segment{
		ID: id, WayID: id, A: a, B: b, LengthM: length,
		Tags: map[string]string{"highway": "residential"},
	}
}

// pathFixture is a three-segment path with segment ids 1-2-3 end to end.
func pathFixture() ([]model.Segment, *graph.Graph) {
	segments := []model.Segment{
		seg(1, pt(0, 0), pt(0, 0.001), 1),
		seg(2, pt(0, 0.001), pt(0, 0.002), 1),
		seg(3, pt(0, 0.002), pt(0, 0.003), 1),
	}
	return segments, graph.Build(segments, eps)
}

func sel(id int64, component, rank int, score float64) model.SelectionRecord {
	return model.SelectionRecord{SegmentID: id, Component: component, Rank: rank, Score: score}
}

func TestNewRejectsUnknownSegment(t *testing.T) {
	segments, g := pathFixture()
	_, err := New(g, segments, []model.SelectionRecord{sel(99, 1, 1, 0.5)})
	require.Error(t, err)
}

func TestListingOrder(t *testing.T) {
	segments, g := pathFixture()
	e, err := New(g, segments, []model.SelectionRecord{
		sel(2, 1, 1, 0.9),
		sel(1, 1, 2, 0.4),
		sel(3, 1, 3, 0.4),
	})
	require.NoError(t, err)

	out := e.Listing()
	require.Len(t, out, 3)
	assert.Equal(t, int64(2), out[0].SegmentID)
	// Tied scores order by lower segment id.
	assert.Equal(t, int64(1), out[1].SegmentID)
	assert.Equal(t, int64(3), out[2].SegmentID)
}

func TestContinuousWalksFromSeed(t *testing.T) {
	segments, g := pathFixture()

	// Rank 1 is the middle segment; the walk covers both directions, visiting
	// every segment exactly once and lower ranks first.
	e, err := New(g, segments, []model.SelectionRecord{
		sel(2, 1, 1, 0.9),
		sel(1, 1, 2, 0.6),
		sel(3, 1, 3, 0.5),
	})
	require.NoError(t, err)

	walk, err := e.Continuous()
	require.NoError(t, err)
	require.Len(t, walk, 3)
	assert.Equal(t, int64(2), walk[0].SegmentID)
	assert.Equal(t, int64(1), walk[1].SegmentID)
	assert.Equal(t, int64(3), walk[2].SegmentID)

	seen := map[int64]int{}
	for _, r := range walk {
		seen[r.SegmentID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "segment %d visited %d times", id, n)
	}
}

func TestContinuousMultiComponentFails(t *testing.T) {
	segments := []model.Segment{
		seg(1, pt(0, 0), pt(0, 0.001), 1),
		seg(2, pt(1, 0), pt(1, 0.001), 1),
	}
	g := graph.Build(segments, eps)
	e, err := New(g, segments, []model.SelectionRecord{
		sel(1, 1, 1, 0.9),
		sel(2, 2, 2, 0.8),
	})
	require.NoError(t, err)

	_, err = e.Continuous()
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDisconnected))

	// Listing still works over the same selection.
	assert.Len(t, e.Listing(), 2)
}

func TestContinuousDetectsTopologicalDisconnect(t *testing.T) {
	// The records claim one component but the segments do not touch.
	segments := []model.Segment{
		seg(1, pt(0, 0), pt(0, 0.001), 1),
		seg(2, pt(1, 0), pt(1, 0.001), 1),
	}
	g := graph.Build(segments, eps)
	e, err := New(g, segments, []model.SelectionRecord{
		sel(1, 1, 1, 0.9),
		sel(2, 1, 2, 0.8),
	})
	require.NoError(t, err)

	_, err = e.Continuous()
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDisconnected))
}

func TestContinuousEmptySelection(t *testing.T) {
	segments, g := pathFixture()
	e, err := New(g, segments, nil)
	require.NoError(t, err)

	walk, err := e.Continuous()
	require.NoError(t, err)
	assert.Empty(t, walk)
}

func TestGeoJSON(t *testing.T) {
	segments, g := pathFixture()
	e, err := New(g, segments, []model.SelectionRecord{
		sel(1, 1, 1, 0.9),
		sel(2, 1, 2, 0.8),
	})
	require.NoError(t, err)

	data, err := e.GeoJSON(e.Listing())
	require.NoError(t, err)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string      `json:"type"`
				Coordinates [][]float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)

	f := fc.Features[0]
	assert.Equal(t, "LineString", f.Geometry.Type)
	require.Len(t, f.Geometry.Coordinates, 2)
	// GeoJSON positions are lon,lat.
	assert.InDelta(t, 0, f.Geometry.Coordinates[0][0], 1e-9)
	assert.InDelta(t, 0, f.Geometry.Coordinates[0][1], 1e-9)
	assert.EqualValues(t, 1, f.Properties["segment_id"])
	assert.Equal(t, "residential", f.Properties["highway"])
	assert.EqualValues(t, 1, f.Properties["rank"])
}
