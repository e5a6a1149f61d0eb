package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridline/roadrank/internal/model"
)

const eps = 1e-6

func seg(id int64, a, b model.Point, length float64) model.Segment {
	return model.Segment{ID: id, WayID: id, A: a, B: b, LengthM: length}
}

func pt(lat, lon float64) model.Point { return model.Point{Lat: lat, Lon: lon} }

func TestQuantizeMergesNearbyEndpoints(t *testing.T) {
	a := pt(21.028500, 105.854200)
	b := pt(21.028500+eps/4, 105.854200-eps/4)
	far := pt(21.028500+10*eps, 105.854200)

	assert.Equal(t, Quantize(a, eps), Quantize(b, eps))
	assert.NotEqual(t, Quantize(a, eps), Quantize(far, eps))
}

func TestBuildSharedEndpoint(t *testing.T) {
	// Two segments meeting at a common point: three nodes, degree 2 at the
	// junction.
	shared := pt(21.0290, 105.8550)
	g := Build([]model.Segment{
		seg(1, pt(21.0285, 105.8542), shared, 100),
		seg(2, pt(shared.Lat+eps/10, shared.Lon-eps/10), pt(21.0295, 105.8558), 100),
	}, eps)

	require.Len(t, g.Nodes, 3)
	require.Len(t, g.Edges, 2)
	assert.Equal(t, g.Edges[0].B, g.Edges[1].A)
	assert.Equal(t, 2, g.Degree(g.Edges[0].B))
	assert.Equal(t, 1, g.Degree(g.Edges[0].A))
}

func TestBuildDeterministic(t *testing.T) {
	segments := []model.Segment{
		seg(1, pt(0, 0), pt(0, 0.001), 111),
		seg(2, pt(0, 0.001), pt(0.001, 0.001), 111),
		seg(3, pt(0.001, 0.001), pt(0.001, 0), 111),
	}
	g1 := Build(segments, eps)
	g2 := Build(segments, eps)

	require.Equal(t, len(g1.Nodes), len(g2.Nodes))
	for i := range g1.Nodes {
		assert.Equal(t, g1.Nodes[i].Key, g2.Nodes[i].Key)
	}
	for n := range g1.Nodes {
		assert.Equal(t, g1.Adjacent(n), g2.Adjacent(n))
	}
}

func TestParallelSegmentsKeepMinWeight(t *testing.T) {
	a, b := pt(0, 0), pt(0, 0.001)
	g := Build([]model.Segment{
		seg(1, a, b, 150),
		seg(2, a, b, 100),
		seg(3, a, b, 100),
	}, eps)

	// All three segments stay in Edges, but traversal sees one arc: the
	// minimum weight, ties broken by lower segment id.
	require.Len(t, g.Edges, 3)
	arcs := g.Adjacent(0)
	require.Len(t, arcs, 1)
	assert.InDelta(t, 100, arcs[0].WeightM, 1e-9)
	assert.Equal(t, int64(2), arcs[0].SegmentID)
}

func TestSelfLoopExcludedFromTraversal(t *testing.T) {
	p := pt(21.0285, 105.8542)
	g := Build([]model.Segment{
		seg(1, p, pt(p.Lat+eps/10, p.Lon), 5),
		seg(2, p, pt(21.0290, 105.8542), 60),
	}, eps)

	require.Len(t, g.Edges, 2)
	assert.Equal(t, g.Edges[0].A, g.Edges[0].B)
	assert.Equal(t, 1, g.Degree(g.Edges[0].A))
}

func TestComponents(t *testing.T) {
	g := Build([]model.Segment{
		seg(1, pt(0, 0), pt(0, 0.001), 111),
		seg(2, pt(0, 0.001), pt(0.001, 0.001), 111),
		seg(3, pt(1, 1), pt(1, 1.001), 111),
	}, eps)

	comps := g.Components()
	require.Len(t, comps, 2)
	assert.Equal(t, []int{0, 1, 2}, comps[0])
	assert.Equal(t, []int{3, 4}, comps[1])
}
