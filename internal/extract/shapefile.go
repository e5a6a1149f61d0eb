package extract

import (
	"strconv"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridline/roadrank/internal/model"
)

// readShapefile parses polyline shapes. DBF attributes become way tags
// (lowercased field names); the way id comes from an OSM_ID / WAY_ID / ID
// field, falling back to the record number. Shapefile points are (X=lon, Y=lat).
func readShapefile(path string) ([]model.Way, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	var ways []model.Way
	var skipped int
	record := 0

	for reader.Next() {
		record++
		_, shape := reader.Shape()

		tags := make(map[string]string, len(fields))
		for name, idx := range fieldIdx {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
			if val != "" {
				tags[name] = val
			}
		}
		if _, ok := tags["highway"]; !ok {
			skipped++
			continue
		}

		pl, ok := shape.(*shp.PolyLine)
		if !ok || pl == nil || pl.NumParts == 0 {
			skipped++
			continue
		}

		id := attributeID(tags, int64(record))
		for i := int32(0); i < pl.NumParts; i++ {
			start := pl.Parts[i]
			end := int32(len(pl.Points))
			if i+1 < pl.NumParts {
				end = pl.Parts[i+1]
			}
			points := make([]model.Point, 0, end-start)
			for j := start; j < end; j++ {
				points = append(points, model.Point{Lat: pl.Points[j].Y, Lon: pl.Points[j].X})
			}
			ways = append(ways, model.Way{ID: id, Points: points, Tags: tags})
		}
	}

	if skipped > 0 {
		zap.L().Debug("extract: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	zap.L().Info("extract: scanned shapefile input",
		zap.String("path", path),
		zap.Int("records", record),
		zap.Int("ways", len(ways)),
	)
	return ways, nil
}

func attributeID(tags map[string]string, fallback int64) int64 {
	for _, key := range []string{"osm_id", "way_id", "id"} {
		if v, ok := tags[key]; ok {
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				return id
			}
		}
	}
	return fallback
}
