// Package selector picks the top-scoring connected subset of segments.
package selector

import (
	"sort"

	"go.uber.org/zap"

	"github.com/gridline/roadrank/internal/graph"
	"github.com/gridline/roadrank/internal/model"
)

// Options controls selection size and the multi-component policy.
type Options struct {
	TopK int
	// MultiComponent seeds a new component from the next-highest unselected
	// segment when no adjacent candidate remains. Each component carries its
	// own id in the output.
	MultiComponent bool
}

// Select sorts segments by score descending (ties by lower segment id) and
// greedily grows a connected frontier from the highest-scoring segment,
// admitting a candidate only when it shares a node with the frontier. At most
// TopK segments are admitted in total, across all components.
func Select(g *graph.Graph, scores []model.ScoreRecord, opts Options) []model.SelectionRecord {
	endpoints := make(map[int64][2]int, len(g.Edges))
	for _, e := range g.Edges {
		endpoints[e.Segment.ID] = [2]int{e.A, e.B}
	}

	candidates := make([]model.ScoreRecord, 0, len(scores))
	for _, s := range scores {
		if _, ok := endpoints[s.SegmentID]; !ok {
			zap.L().Warn("selector: scored segment absent from graph",
				zap.Int64("segment_id", s.SegmentID),
			)
			continue
		}
		candidates = append(candidates, s)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].SegmentID < candidates[j].SegmentID
	})

	admitted := make([]bool, len(candidates))
	var selection []model.SelectionRecord
	component := 0

	for len(selection) < opts.TopK {
		// Seed the next component with the highest-scoring unselected segment.
		seed := -1
		for i := range candidates {
			if !admitted[i] {
				seed = i
				break
			}
		}
		if seed == -1 {
			break
		}
		if component > 0 && !opts.MultiComponent {
			break
		}
		component++

		frontier := make(map[int]bool)
		admit := func(i int) {
			admitted[i] = true
			ep := endpoints[candidates[i].SegmentID]
			frontier[ep[0]] = true
			frontier[ep[1]] = true
			selection = append(selection, model.SelectionRecord{
				SegmentID: candidates[i].SegmentID,
				Component: component,
				Rank:      len(selection) + 1,
				Score:     candidates[i].Score,
			})
		}
		admit(seed)

		// Grow the frontier: scan remaining candidates in score order for the
		// first one adjacent to the current component.
		for len(selection) < opts.TopK {
			next := -1
			for i := range candidates {
				if admitted[i] {
					continue
				}
				ep := endpoints[candidates[i].SegmentID]
				if frontier[ep[0]] || frontier[ep[1]] {
					next = i
					break
				}
			}
			if next == -1 {
				break
			}
			admit(next)
		}
	}

	zap.L().Info("selector: selection complete",
		zap.Int("selected", len(selection)),
		zap.Int("components", component),
		zap.Int("top_k", opts.TopK),
	)
	return selection
}
