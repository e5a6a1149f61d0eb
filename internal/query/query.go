// Package query provides read-only traversal and lookup over a selection.
package query

import (
	"encoding/json"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	geojson "github.com/twpayne/go-geom/encoding/geojson"

	"github.com/gridline/roadrank/internal/graph"
	"github.com/gridline/roadrank/internal/model"
)

// ErrDisconnected is returned when continuous traversal is requested over a
// selection that spans more than one connected component. The caller can fall
// back to listing mode or pre-filter to a single component.
var ErrDisconnected = eris.New("query: selection spans disconnected components")

// Engine answers queries over one selection.
type Engine struct {
	selection []model.SelectionRecord
	segments  map[int64]model.Segment
	endpoints map[int64][2]int
}

// New builds an engine over the selection. Segment geometry and graph
// adjacency come from the segment table the selection was derived from.
func New(g *graph.Graph, segments []model.Segment, selection []model.SelectionRecord) (*Engine, error) {
	segByID := make(map[int64]model.Segment, len(segments))
	for _, s := range segments {
		segByID[s.ID] = s
	}
	endpoints := make(map[int64][2]int, len(g.Edges))
	for _, e := range g.Edges {
		endpoints[e.Segment.ID] = [2]int{e.A, e.B}
	}

	for _, rec := range selection {
		if _, ok := segByID[rec.SegmentID]; !ok {
			return nil, eris.Errorf("query: selected segment %d missing from segment table", rec.SegmentID)
		}
		if _, ok := endpoints[rec.SegmentID]; !ok {
			return nil, eris.Errorf("query: selected segment %d missing from graph", rec.SegmentID)
		}
	}

	return &Engine{selection: selection, segments: segByID, endpoints: endpoints}, nil
}

// Listing returns the selection in score order (ties by lower segment id).
func (e *Engine) Listing() []model.SelectionRecord {
	out := make([]model.SelectionRecord, len(e.selection))
	copy(out, e.selection)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].SegmentID < out[j].SegmentID
	})
	return out
}

// Continuous returns the selection walked in connected traversal order,
// starting from the seed (rank 1) segment and following shared nodes. Every
// selected segment appears exactly once. Fails with ErrDisconnected when the
// selection holds more than one component.
func (e *Engine) Continuous() ([]model.SelectionRecord, error) {
	if len(e.selection) == 0 {
		return nil, nil
	}

	components := make(map[int]bool)
	for _, rec := range e.selection {
		components[rec.Component] = true
	}
	if len(components) > 1 {
		return nil, eris.Wrapf(ErrDisconnected, "%d components selected", len(components))
	}

	// Segment adjacency within the selection: segments sharing a node.
	byRank := make([]model.SelectionRecord, len(e.selection))
	copy(byRank, e.selection)
	sort.Slice(byRank, func(i, j int) bool { return byRank[i].Rank < byRank[j].Rank })

	incident := make(map[int][]int) // node -> indexes into byRank
	for i, rec := range byRank {
		ep := e.endpoints[rec.SegmentID]
		incident[ep[0]] = append(incident[ep[0]], i)
		if ep[1] != ep[0] {
			incident[ep[1]] = append(incident[ep[1]], i)
		}
	}

	visited := make([]bool, len(byRank))
	var walk []model.SelectionRecord
	stack := []int{0} // seed = rank 1

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[i] {
			continue
		}
		visited[i] = true
		walk = append(walk, byRank[i])

		ep := e.endpoints[byRank[i].SegmentID]
		var neighbors []int
		for _, node := range []int{ep[0], ep[1]} {
			for _, j := range incident[node] {
				if !visited[j] {
					neighbors = append(neighbors, j)
				}
			}
		}
		// Push in reverse rank order so the lowest-ranked neighbor walks first.
		sort.Sort(sort.Reverse(sort.IntSlice(neighbors)))
		stack = append(stack, neighbors...)
	}

	if len(walk) != len(byRank) {
		// Component ids claimed one component but the geometry disagrees.
		return nil, eris.Wrapf(ErrDisconnected, "walk covered %d of %d segments", len(walk), len(byRank))
	}
	return walk, nil
}

// GeoJSON renders selection records as a FeatureCollection of two-point
// LineString features, suitable for rendering the selected path.
func (e *Engine) GeoJSON(records []model.SelectionRecord) ([]byte, error) {
	fc := &geojson.FeatureCollection{}
	for _, rec := range records {
		seg := e.segments[rec.SegmentID]
		ls := geom.NewLineString(geom.XY)
		ls, err := ls.SetCoords([]geom.Coord{
			{seg.A.Lon, seg.A.Lat},
			{seg.B.Lon, seg.B.Lat},
		})
		if err != nil {
			return nil, eris.Wrapf(err, "query: segment %d geometry", rec.SegmentID)
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: ls,
			Properties: map[string]interface{}{
				"segment_id": rec.SegmentID,
				"way_id":     seg.WayID,
				"highway":    seg.Tag("highway"),
				"score":      rec.Score,
				"rank":       rec.Rank,
				"component":  rec.Component,
			},
		})
	}
	data, err := json.Marshal(fc)
	if err != nil {
		return nil, eris.Wrap(err, "query: marshal geojson")
	}
	return data, nil
}
