// Package centrality computes weighted edge betweenness over the segment
// graph. Values are computed per connected component; components never share
// accumulators, so they are scored in parallel and the result is still
// deterministic for a given graph.
package centrality

import (
	"container/heap"
	"math"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gridline/roadrank/internal/graph"
	"github.com/gridline/roadrank/internal/model"
)

// distance ties within tol count as equal-length shortest paths
const tol = 1e-9

type pairKey struct{ a, b int }

// Compute returns one record per segment. Parallel segments between the same
// node pair share the pair's betweenness; self-loops score zero. Values are
// unnormalized within a component; cross-component normalization is the
// merger's job.
func Compute(g *graph.Graph) ([]model.CentralityRecord, error) {
	pairIndex := indexPairs(g)
	bc := make([]float64, len(pairIndex))

	components := g.Components()
	eg := errgroup.Group{}
	eg.SetLimit(runtime.GOMAXPROCS(0))

	for _, comp := range components {
		comp := comp
		eg.Go(func() error {
			accumulateComponent(g, comp, pairIndex, bc)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Each undirected path was counted from both of its endpoints.
	for i := range bc {
		bc[i] /= 2
	}

	records := make([]model.CentralityRecord, 0, len(g.Edges))
	for _, e := range g.Edges {
		rec := model.CentralityRecord{SegmentID: e.Segment.ID}
		if e.A != e.B {
			rec.Centrality = bc[pairIndex[orderedPair(e.A, e.B)]]
		}
		records = append(records, rec)
	}

	zap.L().Debug("centrality: computed",
		zap.Int("components", len(components)),
		zap.Int("segments", len(records)),
	)
	return records, nil
}

func orderedPair(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// indexPairs assigns every traversable node pair a slot in the shared
// accumulator slice.
func indexPairs(g *graph.Graph) map[pairKey]int {
	idx := make(map[pairKey]int)
	for n := range g.Nodes {
		for _, arc := range g.Adjacent(n) {
			if n < arc.To {
				key := pairKey{n, arc.To}
				if _, ok := idx[key]; !ok {
					idx[key] = len(idx)
				}
			}
		}
	}
	return idx
}

// accumulateComponent runs Brandes' algorithm with Dijkstra path counting for
// every source in the component, in ascending node order. Only slots for
// pairs inside the component are touched.
func accumulateComponent(g *graph.Graph, comp []int, pairIndex map[pairKey]int, bc []float64) {
	dist := make(map[int]float64, len(comp))
	sigma := make(map[int]float64, len(comp))
	preds := make(map[int][]int, len(comp))
	delta := make(map[int]float64, len(comp))

	for _, source := range comp {
		for _, n := range comp {
			dist[n] = math.Inf(1)
			sigma[n] = 0
			preds[n] = preds[n][:0]
			delta[n] = 0
		}
		dist[source] = 0
		sigma[source] = 1

		// settled holds nodes in nondecreasing distance order.
		settled := make([]int, 0, len(comp))
		done := make(map[int]bool, len(comp))
		pq := &distQueue{{node: source, priority: 0}}
		heap.Init(pq)

		for pq.Len() > 0 {
			item := heap.Pop(pq).(*distItem)
			v := item.node
			if done[v] {
				continue
			}
			done[v] = true
			settled = append(settled, v)

			for _, arc := range g.Adjacent(v) {
				u := arc.To
				alt := dist[v] + arc.WeightM
				switch {
				case alt < dist[u]-tol:
					dist[u] = alt
					sigma[u] = sigma[v]
					preds[u] = append(preds[u][:0], v)
					heap.Push(pq, &distItem{node: u, priority: alt})
				case math.Abs(alt-dist[u]) <= tol:
					sigma[u] += sigma[v]
					preds[u] = append(preds[u], v)
				}
			}
		}

		// Dependency accumulation in reverse settle order.
		for i := len(settled) - 1; i >= 0; i-- {
			w := settled[i]
			for _, v := range preds[w] {
				c := sigma[v] / sigma[w] * (1 + delta[w])
				bc[pairIndex[orderedPair(v, w)]] += c
				delta[v] += c
			}
		}
	}
}

type distItem struct {
	node     int
	priority float64
}

type distQueue []*distItem

func (pq distQueue) Len() int           { return len(pq) }
func (pq distQueue) Less(i, j int) bool { return pq[i].priority < pq[j].priority }
func (pq distQueue) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }

func (pq *distQueue) Push(x interface{}) {
	*pq = append(*pq, x.(*distItem))
}

func (pq *distQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
