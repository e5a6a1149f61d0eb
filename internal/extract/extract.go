// Package extract parses a street-network file into per-segment records.
//
// Three input forms are supported, dispatched on file extension: OSM PBF
// (.pbf / .osm.pbf), OSM XML (.osm / .xml), GeoJSON (.geojson / .json), and
// ESRI shapefile (.shp). All three produce the same Way records; the
// expansion into segments is shared.
package extract

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridline/roadrank/internal/geomath"
	"github.com/gridline/roadrank/internal/model"
)

// ErrParse marks malformed geometry or tag input. Fatal: extraction aborts
// rather than writing a partial segment table.
var ErrParse = eris.New("extract: parse error")

// Ways reads the street-network file at path and returns its ways. Only ways
// carrying a highway tag are kept (shapefile and GeoJSON inputs carry the tag
// as an attribute/property).
func Ways(ctx context.Context, path string) ([]model.Way, error) {
	switch {
	case strings.HasSuffix(path, ".pbf"):
		return readOSM(ctx, path, true)
	case strings.HasSuffix(path, ".osm"), strings.HasSuffix(path, ".xml"):
		return readOSM(ctx, path, false)
	case strings.HasSuffix(path, ".geojson"), strings.HasSuffix(path, ".json"):
		return readGeoJSON(path)
	case strings.HasSuffix(path, ".shp"):
		return readShapefile(path)
	default:
		return nil, eris.Wrapf(ErrParse, "unsupported input %s (want .pbf, .osm, .xml, .geojson, or .shp)", filepath.Base(path))
	}
}

// Segments expands ways into one segment per consecutive point pair. Way tags
// are preserved on every derived segment; segment IDs are assigned
// sequentially in input order so extraction is deterministic.
func Segments(ways []model.Way) ([]model.Segment, error) {
	var segments []model.Segment
	nextID := int64(1)

	for _, way := range ways {
		if len(way.Points) < 2 {
			return nil, eris.Wrapf(ErrParse, "way %d has %d points, need at least 2", way.ID, len(way.Points))
		}
		for i, p := range way.Points {
			if !p.Valid() {
				return nil, eris.Wrapf(ErrParse, "way %d point %d has invalid coordinates (%v, %v)", way.ID, i, p.Lat, p.Lon)
			}
		}

		for i := 1; i < len(way.Points); i++ {
			a, b := way.Points[i-1], way.Points[i]
			length := geomath.GreatCircleDistance(a, b)
			if length <= 0 {
				// Consecutive duplicate points collapse to the same node
				// anyway; a zero-length segment would violate the length
				// invariant, so skip it.
				zap.L().Debug("extract: skipping zero-length segment",
					zap.Int64("way_id", way.ID),
					zap.Int("seq", i-1),
				)
				continue
			}
			segments = append(segments, model.Segment{
				ID:      nextID,
				WayID:   way.ID,
				Seq:     i - 1,
				A:       a,
				B:       b,
				LengthM: length,
				Tags:    way.Tags,
			})
			nextID++
		}
	}

	if len(segments) == 0 {
		return nil, eris.Wrap(ErrParse, "input contains no usable segments")
	}
	return segments, nil
}
