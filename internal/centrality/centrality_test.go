package centrality

import (
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

func byID(records []model.CentralityRecord) map[int64]float64 {
	m := make(map[int64]float64, len(records))
	for _, r := range records {
		m[r.SegmentID] = r.Centrality
	}
	return m
}

// Unit square O-A-C-B-O with a pendant node P hanging off C. Every unordered
// node pair routes over known shortest paths, so the exact betweenness of
// each edge can be counted by hand.
func TestComputeSquareWithPendant(t *testing.T) {
	o := pt(0, 0)
	a := pt(0, 0.001)
	b := pt(0.001, 0)
	c := pt(0.001, 0.001)
	p := pt(0.002, 0.001)
	g := graph.Build([]model.Segment{
		seg(1, o, a, 1),
		seg(2, o, b, 1),
		seg(3, a, c, 1),
		seg(4, b, c, 1),
		seg(5, c, p, 1),
	}, eps)

	records, err := Compute(g)
	require.NoError(t, err)
	bc := byID(records)

	assert.InDelta(t, 2.5, bc[1], 1e-9)
	assert.InDelta(t, 2.5, bc[2], 1e-9)
	assert.InDelta(t, 3.5, bc[3], 1e-9)
	assert.InDelta(t, 3.5, bc[4], 1e-9)
	assert.InDelta(t, 4.0, bc[5], 1e-9)
}

func TestComputePlainSquareIsUniform(t *testing.T) {
	g := graph.Build([]model.Segment{
		seg(1, pt(0, 0), pt(0, 0.001), 1),
		seg(2, pt(0, 0), pt(0.001, 0), 1),
		seg(3, pt(0, 0.001), pt(0.001, 0.001), 1),
		seg(4, pt(0.001, 0), pt(0.001, 0.001), 1),
	}, eps)

	records, err := Compute(g)
	require.NoError(t, err)
	bc := byID(records)
	for id := int64(1); id <= 4; id++ {
		assert.InDelta(t, 2.0, bc[id], 1e-9)
	}
}

func TestComputeWeightedDetour(t *testing.T) {
	// Triangle where the direct X-Z edge is longer than the X-Y-Z detour, so
	// every X-Z path routes through Y and the direct edge carries no shortest
	// path at all.
	x := pt(0, 0)
	y := pt(0, 0.001)
	z := pt(0.001, 0.001)
	g := graph.Build([]model.Segment{
		seg(1, x, y, 1),
		seg(2, y, z, 1),
		seg(3, x, z, 5),
	}, eps)

	records, err := Compute(g)
	require.NoError(t, err)
	bc := byID(records)

	assert.InDelta(t, 2, bc[1], 1e-9)
	assert.InDelta(t, 2, bc[2], 1e-9)
	assert.InDelta(t, 0, bc[3], 1e-9)
}

func TestComputeParallelSegmentsShareValue(t *testing.T) {
	a, b := pt(0, 0), pt(0, 0.001)
	g := graph.Build([]model.Segment{
		seg(1, a, b, 100),
		seg(2, a, b, 150),
	}, eps)

	records, err := Compute(g)
	require.NoError(t, err)
	bc := byID(records)
	assert.InDelta(t, bc[1], bc[2], 1e-9)
}

func TestComputeSelfLoopScoresZero(t *testing.T) {
	p := pt(0, 0)
	g := graph.Build([]model.Segment{
		seg(1, p, pt(p.Lat+eps/10, p.Lon), 5),
		seg(2, p, pt(0, 0.001), 100),
		seg(3, pt(0, 0.001), pt(0, 0.002), 100),
	}, eps)

	records, err := Compute(g)
	require.NoError(t, err)
	bc := byID(records)
	assert.InDelta(t, 0, bc[1], 1e-9)
	assert.Greater(t, bc[2], 0.0)
}

func TestComputeDisconnectedComponents(t *testing.T) {
	g := graph.Build([]model.Segment{
		seg(1, pt(0, 0), pt(0, 0.001), 1),
		seg(2, pt(0, 0.001), pt(0, 0.002), 1),
		seg(3, pt(1, 0), pt(1, 0.001), 1),
	}, eps)

	records, err := Compute(g)
	require.NoError(t, err)
	bc := byID(records)

	// Path of two edges: each carries its endpoint pair plus the end-to-end
	// pair. The isolated edge only carries its own pair.
	assert.InDelta(t, 2, bc[1], 1e-9)
	assert.InDelta(t, 2, bc[2], 1e-9)
	assert.InDelta(t, 1, bc[3], 1e-9)
}

func TestComputeDeterministic(t *testing.T) {
	segments := []model.Segment{
		seg(1, pt(0, 0), pt(0, 0.001), 1),
		seg(2, pt(0, 0), pt(0.001, 0), 1.5),
		seg(3, pt(0, 0.001), pt(0.001, 0.001), 2),
		seg(4, pt(0.001, 0), pt(0.001, 0.001), 1),
		seg(5, pt(0.001, 0.001), pt(0.002, 0.001), 1),
		seg(6, pt(2, 2), pt(2, 2.001), 1),
	}
	g := graph.Build(segments, eps)

	first, err := Compute(g)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Compute(g)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
