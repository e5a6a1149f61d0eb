// Package metrics derives the supplementary per-segment metrics: intersection
// structure from node degrees, and proximity to pedestrian infrastructure.
package metrics

import (
	"math"

	"go.uber.org/zap"

	"github.com/gridline/roadrank/internal/geomath"
	"github.com/gridline/roadrank/internal/graph"
	"github.com/gridline/roadrank/internal/model"
)

// classWeights ranks road classes by structural importance.
var classWeights = map[string]float64{
	"motorway":     10,
	"trunk":        9,
	"primary":      8,
	"secondary":    6,
	"tertiary":     4,
	"residential":  2,
	"unclassified": 1,
	"service":      0.5,
	"footway":      0.1,
	"cycleway":     0.1,
	"path":         0.1,
}

// ClassWeight returns the importance weight for a highway class (1 for
// unknown classes).
func ClassWeight(highway string) float64 {
	if w, ok := classWeights[highway]; ok {
		return w
	}
	return 1
}

// PedestrianFriendly reports whether a segment is usable by pedestrians:
// dedicated infrastructure, explicit foot access, or a low-traffic road class
// that is not private.
func PedestrianFriendly(tags map[string]string) bool {
	highway := tags["highway"]
	switch highway {
	case "footway", "path", "pedestrian", "steps", "track", "cycleway":
		return true
	}
	switch tags["foot"] {
	case "yes", "designated":
		return true
	}
	switch highway {
	case "residential", "service", "tertiary", "unclassified":
		return tags["access"] != "private"
	}
	return false
}

// Compute derives one metric record per segment. bufferM bounds the search
// for pedestrian infrastructure near each segment.
func Compute(g *graph.Graph, bufferM float64) []model.MetricRecord {
	grid := buildPedGrid(g, bufferM)

	records := make([]model.MetricRecord, 0, len(g.Edges))
	withPed := 0
	for _, e := range g.Edges {
		rec := model.MetricRecord{SegmentID: e.Segment.ID}

		degA, degB := g.Degree(e.A), g.Degree(e.B)
		if degA > 2 {
			rec.Intersections++
		}
		if degB > 2 {
			rec.Intersections++
		}
		if degA > 3 {
			rec.MajorIntersections++
		}
		if degB > 3 {
			rec.MajorIntersections++
		}
		rec.MaxDegree = degA
		if degB > degA {
			rec.MaxDegree = degB
		}
		rec.AvgDegree = float64(degA+degB) / 2
		rec.ClassWeight = ClassWeight(e.Segment.Tag("highway"))

		rec.IntersectionScore = float64(rec.Intersections)*1.0 +
			float64(rec.MajorIntersections)*2.0 +
			float64(rec.MaxDegree)*0.5 +
			rec.AvgDegree*0.3 +
			rec.ClassWeight*0.2

		rec.PedDistanceM, rec.PedScore = grid.proximity(e.Segment, bufferM)
		if rec.PedDistanceM >= 0 {
			withPed++
		}

		records = append(records, rec)
	}

	zap.L().Info("metrics: computed",
		zap.Int("segments", len(records)),
		zap.Int("with_pedestrian_access", withPed),
		zap.Float64("buffer_m", bufferM),
	)
	return records
}

// pedGrid buckets pedestrian segment midpoints into cells roughly bufferM
// wide, so proximity lookups only scan the 3x3 neighborhood.
type pedGrid struct {
	cellLatDeg float64
	cellLonDeg float64
	cells      map[[2]int64][]pedEntry
}

type pedEntry struct {
	mid  model.Point
	tags map[string]string
}

const metersPerDegree = 111320.0

func buildPedGrid(g *graph.Graph, bufferM float64) *pedGrid {
	// Longitude degrees shrink with latitude, so lon cells are widened by the
	// cosine at a reference latitude to keep the 3x3 scan covering bufferM
	// east-west. One reference is enough at city scale.
	cosLat := 1.0
	if len(g.Nodes) > 0 {
		cosLat = math.Cos(g.Nodes[0].Lat * math.Pi / 180)
		if cosLat < 0.01 {
			cosLat = 0.01
		}
	}
	grid := &pedGrid{
		cellLatDeg: bufferM / metersPerDegree,
		cellLonDeg: bufferM / (metersPerDegree * cosLat),
		cells:      make(map[[2]int64][]pedEntry),
	}
	for _, e := range g.Edges {
		if !PedestrianFriendly(e.Segment.Tags) {
			continue
		}
		mid := geomath.Midpoint(e.Segment.A, e.Segment.B)
		key := grid.cell(mid)
		grid.cells[key] = append(grid.cells[key], pedEntry{mid: mid, tags: e.Segment.Tags})
	}
	return grid
}

func (pg *pedGrid) cell(p model.Point) [2]int64 {
	return [2]int64{
		int64(math.Floor(p.Lat / pg.cellLatDeg)),
		int64(math.Floor(p.Lon / pg.cellLonDeg)),
	}
}

// proximity returns the distance to the nearest pedestrian segment within the
// buffer (-1 when none) and the banded proximity score. Distances are
// midpoint to midpoint, which is adequate at sub-segment granularity.
func (pg *pedGrid) proximity(seg model.Segment, bufferM float64) (float64, float64) {
	if PedestrianFriendly(seg.Tags) {
		return 0, pedScore(0, seg.Tags, seg.Tags)
	}

	mid := geomath.Midpoint(seg.A, seg.B)
	center := pg.cell(mid)

	bestDist := math.Inf(1)
	var bestTags map[string]string
	for dLat := int64(-1); dLat <= 1; dLat++ {
		for dLon := int64(-1); dLon <= 1; dLon++ {
			for _, entry := range pg.cells[[2]int64{center[0] + dLat, center[1] + dLon}] {
				d := geomath.GreatCircleDistance(mid, entry.mid)
				if d < bestDist {
					bestDist = d
					bestTags = entry.tags
				}
			}
		}
	}

	if bestDist > bufferM {
		return -1, 0
	}
	return bestDist, pedScore(bestDist, seg.Tags, bestTags)
}

// pedScore bands the distance to pedestrian infrastructure and adds road
// class and pedestrian-way quality bonuses.
func pedScore(distM float64, roadTags, pedTags map[string]string) float64 {
	score := 10.0 // pedestrian infrastructure within the buffer

	switch {
	case distM < 5:
		score += 20
	case distM < 15:
		score += 15
	case distM < 30:
		score += 10
	case distM < 50:
		score += 5
	}

	switch roadTags["highway"] {
	case "trunk", "primary":
		score += 15
	case "secondary":
		score += 10
	case "tertiary":
		score += 5
	}

	switch pedTags["highway"] {
	case "footway":
		score += 10
	case "path":
		score += 8
	case "residential", "service":
		score += 5
	}
	switch pedTags["surface"] {
	case "asphalt", "concrete", "paved":
		score += 5
	}
	if pedTags["lit"] == "yes" {
		score += 3
	}

	return score
}
