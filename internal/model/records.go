package model

// DistanceRecord maps a segment to its shortest-path distance from the origin.
// Unreachable segments carry Reachable=false and a meaningless DistanceM.
type DistanceRecord struct {
	SegmentID int64
	DistanceM float64
	Reachable bool
}

// CentralityRecord maps a segment to its betweenness value. Values are
// comparable within one run only.
type CentralityRecord struct {
	SegmentID  int64
	Centrality float64
}

// MetricRecord carries the supplementary per-segment metrics: intersection
// structure and pedestrian-infrastructure proximity.
type MetricRecord struct {
	SegmentID          int64
	Intersections      int     // endpoints with degree > 2
	MajorIntersections int     // endpoints with degree > 3
	MaxDegree          int
	AvgDegree          float64
	ClassWeight        float64 // road-class importance weight
	IntersectionScore  float64
	PedDistanceM       float64 // distance to nearest pedestrian segment (-1 = none in range)
	PedScore           float64
}

// ScoreRecord is one row of the merged table: the normalized inputs and the
// composite score.
type ScoreRecord struct {
	SegmentID        int64
	DistanceM        float64
	Reachable        bool
	Centrality       float64
	Closeness        float64 // normalized, 1 = at origin, 0 = farthest/unreachable
	CentralityNorm   float64
	IntersectionNorm float64
	PedNorm          float64
	Score            float64
}

// SelectionRecord is one row of the selection output.
type SelectionRecord struct {
	SegmentID int64
	Component int // 1-based component id, in seeding order
	Rank      int // 1-based admission order
	Score     float64
}
