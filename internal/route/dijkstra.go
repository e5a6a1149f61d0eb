// Package route computes origin-relative shortest-path distances over the
// segment graph.
package route

import (
	"container/heap"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridline/roadrank/internal/geomath"
	"github.com/gridline/roadrank/internal/graph"
	"github.com/gridline/roadrank/internal/model"
)

// Unreachable is the sentinel distance for nodes with no path from the origin.
var Unreachable = math.Inf(1)

// NearestNode returns the id of the graph node nearest to p by great-circle
// distance, ties broken by lowest node id.
func NearestNode(g *graph.Graph, p model.Point) (int, error) {
	if len(g.Nodes) == 0 {
		return 0, eris.New("route: empty graph")
	}
	best := 0
	bestDist := math.Inf(1)
	for _, n := range g.Nodes {
		d := geomath.GreatCircleDistance(p, model.Point{Lat: n.Lat, Lon: n.Lon})
		if d < bestDist {
			best = n.ID
			bestDist = d
		}
	}
	return best, nil
}

// NodeDistances runs Dijkstra from the origin node over non-negative segment
// lengths and returns the distance in meters to every node. Unreachable nodes
// hold the Unreachable sentinel.
func NodeDistances(g *graph.Graph, origin int) []float64 {
	dist := make([]float64, len(g.Nodes))
	for i := range dist {
		dist[i] = Unreachable
	}
	dist[origin] = 0

	pq := &nodeQueue{{node: origin, priority: 0}}
	heap.Init(pq)
	settled := make([]bool, len(g.Nodes))

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*nodeItem)
		n := item.node
		if settled[n] {
			continue
		}
		settled[n] = true
		for _, arc := range g.Adjacent(n) {
			tentative := dist[n] + arc.WeightM
			if tentative < dist[arc.To] {
				dist[arc.To] = tentative
				heap.Push(pq, &nodeItem{node: arc.To, priority: tentative})
			}
		}
	}
	return dist
}

// SegmentDistances reduces node distances to per-segment records: a segment's
// distance is the minimum of its endpoint distances, so it counts as reached
// as soon as either end is.
func SegmentDistances(g *graph.Graph, nodeDist []float64) []model.DistanceRecord {
	records := make([]model.DistanceRecord, 0, len(g.Edges))
	unreachable := 0
	for _, e := range g.Edges {
		d := math.Min(nodeDist[e.A], nodeDist[e.B])
		rec := model.DistanceRecord{SegmentID: e.Segment.ID}
		if math.IsInf(d, 1) {
			unreachable++
		} else {
			rec.DistanceM = d
			rec.Reachable = true
		}
		records = append(records, rec)
	}
	if unreachable > 0 {
		zap.L().Info("route: unreachable segments recorded",
			zap.Int("unreachable", unreachable),
			zap.Int("total", len(records)),
		)
	}
	return records
}

type nodeItem struct {
	node     int
	priority float64
}

type nodeQueue []*nodeItem

func (pq nodeQueue) Len() int           { return len(pq) }
func (pq nodeQueue) Less(i, j int) bool { return pq[i].priority < pq[j].priority }
func (pq nodeQueue) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }

func (pq *nodeQueue) Push(x interface{}) {
	*pq = append(*pq, x.(*nodeItem))
}

func (pq *nodeQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
