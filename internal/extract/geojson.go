package extract

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	geojson "github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/gridline/roadrank/internal/model"
)

// readGeoJSON parses a FeatureCollection of LineString / MultiLineString
// features. String and numeric feature properties become way tags; the way id
// comes from an "id" / "osm_id" / "way_id" property, falling back to the
// feature's position in the collection.
func readGeoJSON(path string) ([]model.Way, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(ErrParse, "decode %s: %v", path, err)
	}

	var ways []model.Way
	for i, feature := range fc.Features {
		tags := propertyTags(feature.Properties)
		if _, ok := tags["highway"]; !ok {
			continue
		}
		id := propertyID(feature.Properties, int64(i+1))

		switch g := feature.Geometry.(type) {
		case *geom.LineString:
			ways = append(ways, model.Way{ID: id, Points: coordPoints(g.Coords()), Tags: tags})
		case *geom.MultiLineString:
			// Each part is its own polyline; keep them as separate ways
			// sharing the id so segment rows stay traceable.
			for p := 0; p < g.NumLineStrings(); p++ {
				ways = append(ways, model.Way{ID: id, Points: coordPoints(g.LineString(p).Coords()), Tags: tags})
			}
		default:
			zap.L().Debug("extract: skipping non-line feature", zap.Int("feature", i))
		}
	}

	zap.L().Info("extract: scanned GeoJSON input",
		zap.String("path", path),
		zap.Int("features", len(fc.Features)),
		zap.Int("ways", len(ways)),
	)
	return ways, nil
}

// coordPoints converts GeoJSON (lon, lat) coordinates to points.
func coordPoints(coords []geom.Coord) []model.Point {
	points := make([]model.Point, len(coords))
	for i, c := range coords {
		points[i] = model.Point{Lat: c.Y(), Lon: c.X()}
	}
	return points
}

func propertyTags(props map[string]interface{}) map[string]string {
	tags := make(map[string]string, len(props))
	for k, v := range props {
		switch val := v.(type) {
		case string:
			tags[k] = val
		case float64:
			tags[k] = fmt.Sprintf("%v", val)
		}
	}
	return tags
}

func propertyID(props map[string]interface{}, fallback int64) int64 {
	for _, key := range []string{"id", "osm_id", "way_id"} {
		if v, ok := props[key].(float64); ok {
			return int64(v)
		}
	}
	return fallback
}
