// Package graph assembles segments into an undirected weighted graph keyed by
// quantized endpoint coordinates.
package graph

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/gridline/roadrank/internal/model"
)

// Key is a quantized coordinate pair, the node identity. Endpoints whose
// coordinates fall into the same epsilon-sized cell resolve to the same node,
// merging shared intersections despite floating-point drift between ways.
type Key struct {
	LatQ int64
	LonQ int64
}

// Node is a graph vertex. IDs are assigned in first-seen order, which is
// deterministic for a given segment table.
type Node struct {
	ID  int
	Key Key
	Lat float64
	Lon float64
}

// Edge pairs a segment with its resolved endpoint nodes. A == B for
// self-loops (segments whose endpoints quantize to the same cell).
type Edge struct {
	Segment model.Segment
	A, B    int
}

// Arc is one traversal step in the adjacency structure. Parallel segments
// between the same node pair are collapsed to the minimum-weight one for
// traversal; all segments remain in Edges for scoring.
type Arc struct {
	To        int
	WeightM   float64
	SegmentID int64
}

// Graph is the immutable segment graph. It may be disconnected.
type Graph struct {
	Epsilon float64
	Nodes   []Node
	Edges   []Edge

	index map[Key]int
	adj   [][]Arc
}

// Quantize maps a coordinate to its cell under tolerance epsilon.
func Quantize(p model.Point, epsilon float64) Key {
	return Key{
		LatQ: int64(math.Round(p.Lat / epsilon)),
		LonQ: int64(math.Round(p.Lon / epsilon)),
	}
}

// Build constructs the graph. Rebuilding from the same segment table and
// epsilon yields an identical graph.
func Build(segments []model.Segment, epsilon float64) *Graph {
	g := &Graph{
		Epsilon: epsilon,
		index:   make(map[Key]int),
	}

	resolve := func(p model.Point) int {
		key := Quantize(p, epsilon)
		if id, ok := g.index[key]; ok {
			return id
		}
		id := len(g.Nodes)
		g.index[key] = id
		g.Nodes = append(g.Nodes, Node{ID: id, Key: key, Lat: p.Lat, Lon: p.Lon})
		return id
	}

	selfLoops := 0
	for _, seg := range segments {
		a := resolve(seg.A)
		b := resolve(seg.B)
		if a == b {
			selfLoops++
		}
		g.Edges = append(g.Edges, Edge{Segment: seg, A: a, B: b})
	}

	g.buildAdjacency()

	zap.L().Debug("graph: built",
		zap.Int("nodes", len(g.Nodes)),
		zap.Int("edges", len(g.Edges)),
		zap.Int("self_loops", selfLoops),
	)
	return g
}

// buildAdjacency keeps, per node pair, the minimum-weight segment (ties by
// lower segment id) and drops self-loops from traversal.
func (g *Graph) buildAdjacency() {
	type pairKey struct{ a, b int }
	best := make(map[pairKey]Arc)

	for _, e := range g.Edges {
		if e.A == e.B {
			continue
		}
		a, b := e.A, e.B
		if a > b {
			a, b = b, a
		}
		key := pairKey{a, b}
		cur, ok := best[key]
		if !ok || e.Segment.LengthM < cur.WeightM ||
			(e.Segment.LengthM == cur.WeightM && e.Segment.ID < cur.SegmentID) {
			best[key] = Arc{WeightM: e.Segment.LengthM, SegmentID: e.Segment.ID}
		}
	}

	g.adj = make([][]Arc, len(g.Nodes))
	for key, arc := range best {
		g.adj[key.a] = append(g.adj[key.a], Arc{To: key.b, WeightM: arc.WeightM, SegmentID: arc.SegmentID})
		g.adj[key.b] = append(g.adj[key.b], Arc{To: key.a, WeightM: arc.WeightM, SegmentID: arc.SegmentID})
	}
	for _, arcs := range g.adj {
		sort.Slice(arcs, func(i, j int) bool { return arcs[i].To < arcs[j].To })
	}
}

// Adjacent returns the traversal arcs from node n.
func (g *Graph) Adjacent(n int) []Arc { return g.adj[n] }

// Degree returns the number of distinct neighbor nodes of n.
func (g *Graph) Degree(n int) int { return len(g.adj[n]) }

// Components returns the connected components as sorted node-id lists,
// ordered by their smallest node id.
func (g *Graph) Components() [][]int {
	seen := make([]bool, len(g.Nodes))
	var components [][]int

	for start := range g.Nodes {
		if seen[start] {
			continue
		}
		var comp []int
		stack := []int{start}
		seen[start] = true
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, n)
			for _, arc := range g.adj[n] {
				if !seen[arc.To] {
					seen[arc.To] = true
					stack = append(stack, arc.To)
				}
			}
		}
		sort.Ints(comp)
		components = append(components, comp)
	}
	return components
}
