// Package model holds the record types shared across pipeline stages.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// Point is a geographic coordinate in WGS84 degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether the point lies inside the WGS84 coordinate domain.
func (p Point) Valid() bool {
	return p.Lat == p.Lat && p.Lon == p.Lon && // NaN check
		p.Lat >= -90 && p.Lat <= 90 &&
		p.Lon >= -180 && p.Lon <= 180
}

func (p Point) String() string {
	return fmt.Sprintf("%.7f,%.7f", p.Lat, p.Lon)
}

// Way is an ordered polyline of geographic points with its source tags,
// as delivered by the upstream network extract.
type Way struct {
	ID     int64
	Points []Point
	Tags   map[string]string
}

// Segment is one undirected edge derived from two consecutive points of a Way.
// IDs are assigned sequentially during extraction and are stable for a given
// input file.
type Segment struct {
	ID      int64
	WayID   int64
	Seq     int // index of the segment within its way
	A, B    Point
	LengthM float64
	Tags    map[string]string
}

// Tag returns the tag value for key, or "" when absent.
func (s Segment) Tag(key string) string {
	return s.Tags[key]
}

// EncodeTags renders a tag map as "k=v|k=v" with keys in sorted order, so the
// segment table is byte-identical across runs.
func EncodeTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+tags[k])
	}
	return strings.Join(parts, "|")
}

// DecodeTags parses the "k=v|k=v" encoding produced by EncodeTags.
func DecodeTags(s string) map[string]string {
	if s == "" {
		return nil
	}
	tags := make(map[string]string)
	for _, part := range strings.Split(s, "|") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		tags[k] = v
	}
	return tags
}
