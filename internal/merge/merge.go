// Package merge normalizes the per-segment metric tables and combines them
// into one composite score per segment.
package merge

import (
	"sort"

	"go.uber.org/zap"

	"github.com/gridline/roadrank/internal/config"
	"github.com/gridline/roadrank/internal/model"
)

// Inputs are the metric tables to merge. Distances drive the output order.
type Inputs struct {
	Distances  []model.DistanceRecord
	Centrality []model.CentralityRecord
	Metrics    []model.MetricRecord
}

// Merge produces one score record per segment present in every input table.
// A segment missing from any table is dropped, counted, and logged; it is
// never a fatal error. Each metric is normalized to [0,1] independently, then
// combined by the configured weights. Unreachable segments contribute zero
// closeness but are never excluded.
func Merge(in Inputs, cfg config.MergeConfig) []model.ScoreRecord {
	centByID := make(map[int64]model.CentralityRecord, len(in.Centrality))
	for _, r := range in.Centrality {
		centByID[r.SegmentID] = r
	}
	metByID := make(map[int64]model.MetricRecord, len(in.Metrics))
	for _, r := range in.Metrics {
		metByID[r.SegmentID] = r
	}

	norm := normalizer(cfg.Normalization)

	// Collect raw values for normalization. Unreachable distances stay out of
	// the distance domain so they cannot skew min/max.
	var reachableDists, centVals, intVals, pedVals []float64
	for _, d := range in.Distances {
		if _, ok := centByID[d.SegmentID]; !ok {
			continue
		}
		m, ok := metByID[d.SegmentID]
		if !ok {
			continue
		}
		if d.Reachable {
			reachableDists = append(reachableDists, d.DistanceM)
		}
		centVals = append(centVals, centByID[d.SegmentID].Centrality)
		intVals = append(intVals, m.IntersectionScore)
		pedVals = append(pedVals, m.PedScore)
	}

	distNorm := norm(reachableDists)
	centNorm := norm(centVals)
	intNorm := norm(intVals)
	pedNorm := norm(pedVals)

	w := cfg.Weights
	totalWeight := w.Sum()

	var records []model.ScoreRecord
	dropped := 0
	for _, d := range in.Distances {
		cent, okCent := centByID[d.SegmentID]
		met, okMet := metByID[d.SegmentID]
		if !okCent || !okMet {
			dropped++
			zap.L().Debug("merge: segment missing from metric table",
				zap.Int64("segment_id", d.SegmentID),
				zap.Bool("has_centrality", okCent),
				zap.Bool("has_metrics", okMet),
			)
			continue
		}

		rec := model.ScoreRecord{
			SegmentID:  d.SegmentID,
			DistanceM:  d.DistanceM,
			Reachable:  d.Reachable,
			Centrality: cent.Centrality,
		}
		if d.Reachable {
			rec.Closeness = 1 - distNorm(d.DistanceM)
		}
		rec.CentralityNorm = centNorm(cent.Centrality)
		rec.IntersectionNorm = intNorm(met.IntersectionScore)
		rec.PedNorm = pedNorm(met.PedScore)

		rec.Score = (w.Distance*rec.Closeness +
			w.Centrality*rec.CentralityNorm +
			w.Intersection*rec.IntersectionNorm +
			w.Pedestrian*rec.PedNorm) / totalWeight

		records = append(records, rec)
	}

	if dropped > 0 {
		zap.L().Warn("merge: dropped segments missing from a metric table",
			zap.Int("dropped", dropped),
			zap.Int("merged", len(records)),
		)
	}
	return records
}

// normalizer returns a factory: given the value domain, it produces a
// monotonic map onto [0,1]. A degenerate domain (one distinct value, or
// empty) maps everything to 1.
func normalizer(method string) func(domain []float64) func(float64) float64 {
	if method == "rank" {
		return rankNormalizer
	}
	return minMaxNormalizer
}

func minMaxNormalizer(domain []float64) func(float64) float64 {
	if len(domain) == 0 {
		return func(float64) float64 { return 1 }
	}
	min, max := domain[0], domain[0]
	for _, v := range domain[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		return func(float64) float64 { return 1 }
	}
	span := max - min
	return func(v float64) float64 {
		n := (v - min) / span
		if n < 0 {
			return 0
		}
		if n > 1 {
			return 1
		}
		return n
	}
}

// rankNormalizer maps each distinct value to its rank position; tied raw
// values share a rank, keeping the map monotonic.
func rankNormalizer(domain []float64) func(float64) float64 {
	if len(domain) == 0 {
		return func(float64) float64 { return 1 }
	}
	uniq := make([]float64, len(domain))
	copy(uniq, domain)
	sort.Float64s(uniq)
	uniq = dedup(uniq)
	if len(uniq) == 1 {
		return func(float64) float64 { return 1 }
	}
	rank := make(map[float64]float64, len(uniq))
	for i, v := range uniq {
		rank[v] = float64(i) / float64(len(uniq)-1)
	}
	return func(v float64) float64 {
		if r, ok := rank[v]; ok {
			return r
		}
		// Value outside the observed domain: clamp via binary search.
		i := sort.SearchFloat64s(uniq, v)
		if i >= len(uniq) {
			return 1
		}
		return float64(i) / float64(len(uniq)-1)
	}
}

func dedup(sorted []float64) []float64 {
	out := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			out = append(out, v)
		}
	}
	return out
}
