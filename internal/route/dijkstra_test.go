package route

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridline/roadrank/internal/graph"
	"github.com/gridline/roadrank/internal/model"
)

const eps = 1e-6

func pt(lat, lon float64) model.Point { return model.Point{Lat: lat, Lon: lon} }

func seg(id int64, a, b model.Point, length float64) model.Segment {
	return model.Segment{ID: id, WayID: id, A: a, B: b, LengthM: length}
}

// squareGraph is a unit square: O(0), A(1), B(2), C(3) with unit-length
// segments O-A, O-B, A-C, B-C.
func squareGraph() *graph.Graph {
	o := pt(0, 0)
	a := pt(0, 0.001)
	b := pt(0.001, 0)
	c := pt(0.001, 0.001)
	return graph.Build([]model.Segment{
		seg(1, o, a, 1),
		seg(2, o, b, 1),
		seg(3, a, c, 1),
		seg(4, b, c, 1),
	}, eps)
}

func TestNodeDistancesSquare(t *testing.T) {
	g := squareGraph()
	dist := NodeDistances(g, 0)

	require.Len(t, dist, 4)
	assert.InDelta(t, 0, dist[0], 1e-9)
	assert.InDelta(t, 1, dist[1], 1e-9)
	assert.InDelta(t, 1, dist[2], 1e-9)
	assert.InDelta(t, 2, dist[3], 1e-9)
}

func TestSegmentDistancesMinOfEndpoints(t *testing.T) {
	g := squareGraph()
	records := SegmentDistances(g, NodeDistances(g, 0))

	byID := make(map[int64]model.DistanceRecord)
	for _, r := range records {
		byID[r.SegmentID] = r
	}
	require.Len(t, byID, 4)
	assert.InDelta(t, 0, byID[1].DistanceM, 1e-9)
	assert.InDelta(t, 0, byID[2].DistanceM, 1e-9)
	assert.InDelta(t, 1, byID[3].DistanceM, 1e-9)
	assert.InDelta(t, 1, byID[4].DistanceM, 1e-9)
	for _, r := range records {
		assert.True(t, r.Reachable)
	}
}

func TestUnreachableSegments(t *testing.T) {
	g := graph.Build([]model.Segment{
		seg(1, pt(0, 0), pt(0, 0.001), 100),
		seg(2, pt(1, 1), pt(1, 1.001), 100),
	}, eps)

	dist := NodeDistances(g, 0)
	assert.True(t, math.IsInf(dist[2], 1))
	assert.True(t, math.IsInf(dist[3], 1))

	records := SegmentDistances(g, dist)
	byID := make(map[int64]model.DistanceRecord)
	for _, r := range records {
		byID[r.SegmentID] = r
	}
	assert.True(t, byID[1].Reachable)
	assert.False(t, byID[2].Reachable)
}

func TestNearestNode(t *testing.T) {
	g := squareGraph()

	// A probe just off node C.
	id, err := NearestNode(g, pt(0.0011, 0.0011))
	require.NoError(t, err)
	assert.Equal(t, 3, id)

	// Equidistant between O and A along the lon axis: lowest node id wins.
	id, err = NearestNode(g, pt(0, 0.0005))
	require.NoError(t, err)
	assert.Equal(t, 0, id)
}

func TestNearestNodeEmptyGraph(t *testing.T) {
	g := graph.Build(nil, eps)
	_, err := NearestNode(g, pt(0, 0))
	require.Error(t, err)
}

func TestDistancesObeyTriangleInequality(t *testing.T) {
	g := squareGraph()
	dist := NodeDistances(g, 0)

	for n := range g.Nodes {
		for _, arc := range g.Adjacent(n) {
			if math.IsInf(dist[n], 1) {
				continue
			}
			assert.LessOrEqual(t, dist[arc.To], dist[n]+arc.WeightM+1e-9)
		}
	}
}
