package table

import (
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/gridline/roadrank/internal/model"
)

// Stage table schemas. Bump a version whenever its column list changes.
var (
	Segments = Schema{
		Name:    "segments",
		Version: 1,
		Columns: []string{"segment_id", "way_id", "seq", "a_lat", "a_lon", "b_lat", "b_lon", "length_m", "tags"},
	}
	Distances = Schema{
		Name:    "distance",
		Version: 1,
		Columns: []string{"segment_id", "distance_m", "reachable"},
	}
	Centrality = Schema{
		Name:    "centrality",
		Version: 1,
		Columns: []string{"segment_id", "centrality"},
	}
	Metrics = Schema{
		Name:    "metrics",
		Version: 1,
		Columns: []string{
			"segment_id", "intersections", "major_intersections", "max_degree",
			"avg_degree", "class_weight", "intersection_score", "ped_distance_m", "ped_score",
		},
	}
	Merged = Schema{
		Name:    "merged",
		Version: 1,
		Columns: []string{
			"segment_id", "distance_m", "reachable", "centrality",
			"closeness_norm", "centrality_norm", "intersection_norm", "ped_norm", "score",
		},
	}
	Selection = Schema{
		Name:    "selection",
		Version: 1,
		Columns: []string{"segment_id", "component", "rank", "score"},
	}
)

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func parseFloat(s, col string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "table: parse %s %q", col, s)
	}
	return v, nil
}

func parseInt(s, col string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "table: parse %s %q", col, s)
	}
	return v, nil
}

// WriteSegments writes the segment table.
func WriteSegments(dir string, segments []model.Segment) error {
	w, err := NewWriter(dir, Segments)
	if err != nil {
		return err
	}
	for _, s := range segments {
		row := []string{
			strconv.FormatInt(s.ID, 10),
			strconv.FormatInt(s.WayID, 10),
			strconv.Itoa(s.Seq),
			strconv.FormatFloat(s.A.Lat, 'f', 7, 64),
			strconv.FormatFloat(s.A.Lon, 'f', 7, 64),
			strconv.FormatFloat(s.B.Lat, 'f', 7, 64),
			strconv.FormatFloat(s.B.Lon, 'f', 7, 64),
			formatFloat(s.LengthM),
			model.EncodeTags(s.Tags),
		}
		if err := w.Write(row); err != nil {
			w.Abort()
			return err
		}
	}
	return w.Close()
}

// ReadSegments loads the segment table.
func ReadSegments(dir string) ([]model.Segment, error) {
	var segments []model.Segment
	err := Read(dir, Segments, func(row []string) error {
		id, err := parseInt(row[0], "segment_id")
		if err != nil {
			return err
		}
		wayID, err := parseInt(row[1], "way_id")
		if err != nil {
			return err
		}
		seq, err := parseInt(row[2], "seq")
		if err != nil {
			return err
		}
		aLat, err := parseFloat(row[3], "a_lat")
		if err != nil {
			return err
		}
		aLon, err := parseFloat(row[4], "a_lon")
		if err != nil {
			return err
		}
		bLat, err := parseFloat(row[5], "b_lat")
		if err != nil {
			return err
		}
		bLon, err := parseFloat(row[6], "b_lon")
		if err != nil {
			return err
		}
		length, err := parseFloat(row[7], "length_m")
		if err != nil {
			return err
		}
		segments = append(segments, model.Segment{
			ID:      id,
			WayID:   wayID,
			Seq:     int(seq),
			A:       model.Point{Lat: aLat, Lon: aLon},
			B:       model.Point{Lat: bLat, Lon: bLon},
			LengthM: length,
			Tags:    model.DecodeTags(row[8]),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return segments, nil
}

// WriteDistances writes the distance table. Unreachable segments are stored
// with distance -1 and reachable=false.
func WriteDistances(dir string, records []model.DistanceRecord) error {
	w, err := NewWriter(dir, Distances)
	if err != nil {
		return err
	}
	for _, r := range records {
		dist := "-1"
		if r.Reachable {
			dist = formatFloat(r.DistanceM)
		}
		row := []string{
			strconv.FormatInt(r.SegmentID, 10),
			dist,
			strconv.FormatBool(r.Reachable),
		}
		if err := w.Write(row); err != nil {
			w.Abort()
			return err
		}
	}
	return w.Close()
}

// ReadDistances loads the distance table.
func ReadDistances(dir string) ([]model.DistanceRecord, error) {
	var records []model.DistanceRecord
	err := Read(dir, Distances, func(row []string) error {
		id, err := parseInt(row[0], "segment_id")
		if err != nil {
			return err
		}
		dist, err := parseFloat(row[1], "distance_m")
		if err != nil {
			return err
		}
		reachable, err := strconv.ParseBool(row[2])
		if err != nil {
			return eris.Wrapf(err, "table: parse reachable %q", row[2])
		}
		records = append(records, model.DistanceRecord{SegmentID: id, DistanceM: dist, Reachable: reachable})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// WriteCentrality writes the centrality table.
func WriteCentrality(dir string, records []model.CentralityRecord) error {
	w, err := NewWriter(dir, Centrality)
	if err != nil {
		return err
	}
	for _, r := range records {
		row := []string{strconv.FormatInt(r.SegmentID, 10), formatFloat(r.Centrality)}
		if err := w.Write(row); err != nil {
			w.Abort()
			return err
		}
	}
	return w.Close()
}

// ReadCentrality loads the centrality table.
func ReadCentrality(dir string) ([]model.CentralityRecord, error) {
	var records []model.CentralityRecord
	err := Read(dir, Centrality, func(row []string) error {
		id, err := parseInt(row[0], "segment_id")
		if err != nil {
			return err
		}
		c, err := parseFloat(row[1], "centrality")
		if err != nil {
			return err
		}
		records = append(records, model.CentralityRecord{SegmentID: id, Centrality: c})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// WriteMetrics writes the supplementary metrics table.
func WriteMetrics(dir string, records []model.MetricRecord) error {
	w, err := NewWriter(dir, Metrics)
	if err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.SegmentID, 10),
			strconv.Itoa(r.Intersections),
			strconv.Itoa(r.MajorIntersections),
			strconv.Itoa(r.MaxDegree),
			formatFloat(r.AvgDegree),
			formatFloat(r.ClassWeight),
			formatFloat(r.IntersectionScore),
			formatFloat(r.PedDistanceM),
			formatFloat(r.PedScore),
		}
		if err := w.Write(row); err != nil {
			w.Abort()
			return err
		}
	}
	return w.Close()
}

// ReadMetrics loads the supplementary metrics table.
func ReadMetrics(dir string) ([]model.MetricRecord, error) {
	var records []model.MetricRecord
	err := Read(dir, Metrics, func(row []string) error {
		id, err := parseInt(row[0], "segment_id")
		if err != nil {
			return err
		}
		ints, err := parseInt(row[1], "intersections")
		if err != nil {
			return err
		}
		major, err := parseInt(row[2], "major_intersections")
		if err != nil {
			return err
		}
		maxDeg, err := parseInt(row[3], "max_degree")
		if err != nil {
			return err
		}
		avgDeg, err := parseFloat(row[4], "avg_degree")
		if err != nil {
			return err
		}
		classW, err := parseFloat(row[5], "class_weight")
		if err != nil {
			return err
		}
		intScore, err := parseFloat(row[6], "intersection_score")
		if err != nil {
			return err
		}
		pedDist, err := parseFloat(row[7], "ped_distance_m")
		if err != nil {
			return err
		}
		pedScore, err := parseFloat(row[8], "ped_score")
		if err != nil {
			return err
		}
		records = append(records, model.MetricRecord{
			SegmentID:          id,
			Intersections:      int(ints),
			MajorIntersections: int(major),
			MaxDegree:          int(maxDeg),
			AvgDegree:          avgDeg,
			ClassWeight:        classW,
			IntersectionScore:  intScore,
			PedDistanceM:       pedDist,
			PedScore:           pedScore,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// WriteScores writes the merged table.
func WriteScores(dir string, records []model.ScoreRecord) error {
	w, err := NewWriter(dir, Merged)
	if err != nil {
		return err
	}
	for _, r := range records {
		dist := "-1"
		if r.Reachable {
			dist = formatFloat(r.DistanceM)
		}
		row := []string{
			strconv.FormatInt(r.SegmentID, 10),
			dist,
			strconv.FormatBool(r.Reachable),
			formatFloat(r.Centrality),
			formatFloat(r.Closeness),
			formatFloat(r.CentralityNorm),
			formatFloat(r.IntersectionNorm),
			formatFloat(r.PedNorm),
			formatFloat(r.Score),
		}
		if err := w.Write(row); err != nil {
			w.Abort()
			return err
		}
	}
	return w.Close()
}

// ReadScores loads the merged table.
func ReadScores(dir string) ([]model.ScoreRecord, error) {
	var records []model.ScoreRecord
	err := Read(dir, Merged, func(row []string) error {
		id, err := parseInt(row[0], "segment_id")
		if err != nil {
			return err
		}
		dist, err := parseFloat(row[1], "distance_m")
		if err != nil {
			return err
		}
		reachable, err := strconv.ParseBool(row[2])
		if err != nil {
			return eris.Wrapf(err, "table: parse reachable %q", row[2])
		}
		vals := make([]float64, 6)
		for i, col := range []string{"centrality", "closeness_norm", "centrality_norm", "intersection_norm", "ped_norm", "score"} {
			v, err := parseFloat(row[3+i], col)
			if err != nil {
				return err
			}
			vals[i] = v
		}
		records = append(records, model.ScoreRecord{
			SegmentID:        id,
			DistanceM:        dist,
			Reachable:        reachable,
			Centrality:       vals[0],
			Closeness:        vals[1],
			CentralityNorm:   vals[2],
			IntersectionNorm: vals[3],
			PedNorm:          vals[4],
			Score:            vals[5],
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// WriteSelection writes the selection output.
func WriteSelection(dir string, records []model.SelectionRecord) error {
	w, err := NewWriter(dir, Selection)
	if err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.SegmentID, 10),
			strconv.Itoa(r.Component),
			strconv.Itoa(r.Rank),
			formatFloat(r.Score),
		}
		if err := w.Write(row); err != nil {
			w.Abort()
			return err
		}
	}
	return w.Close()
}

// ReadSelection loads the selection output.
func ReadSelection(dir string) ([]model.SelectionRecord, error) {
	var records []model.SelectionRecord
	err := Read(dir, Selection, func(row []string) error {
		id, err := parseInt(row[0], "segment_id")
		if err != nil {
			return err
		}
		component, err := parseInt(row[1], "component")
		if err != nil {
			return err
		}
		rank, err := parseInt(row[2], "rank")
		if err != nil {
			return err
		}
		score, err := parseFloat(row[3], "score")
		if err != nil {
			return err
		}
		records = append(records, model.SelectionRecord{
			SegmentID: id,
			Component: int(component),
			Rank:      int(rank),
			Score:     score,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
