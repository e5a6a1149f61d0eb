// Package geomath provides great-circle helpers over WGS84 coordinates.
package geomath

import (
	"math"

	"github.com/gridline/roadrank/internal/model"
)

const (
	earthRadiusM = 6371008.8
	pi180        = math.Pi / 180.0
	pi180Rev     = 180.0 / math.Pi
)

func degreesToRadians(d float64) float64 { return d * pi180 }

func radiansToDegrees(r float64) float64 { return r * pi180Rev }

// GreatCircleDistance returns the haversine distance between two points in meters.
func GreatCircleDistance(p, q model.Point) float64 {
	lat1 := degreesToRadians(p.Lat)
	lat2 := degreesToRadians(q.Lat)
	diffLat := degreesToRadians(q.Lat - p.Lat)
	diffLon := degreesToRadians(q.Lon - p.Lon)
	a := math.Pow(math.Sin(diffLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(diffLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return c * earthRadiusM
}

// PolylineLength returns the length of an ordered coordinate list in meters.
func PolylineLength(line []model.Point) float64 {
	total := 0.0
	for i := 1; i < len(line); i++ {
		total += GreatCircleDistance(line[i-1], line[i])
	}
	return total
}

// Midpoint returns the point halfway between p and q along the chord. Close
// enough for bucketing segments spatially; not a geodesic midpoint.
func Midpoint(p, q model.Point) model.Point {
	return model.Point{Lat: (p.Lat + q.Lat) / 2, Lon: (p.Lon + q.Lon) / 2}
}

// Destination returns the point reached by travelling distanceM meters from p
// on the given initial bearing (degrees clockwise from north).
func Destination(p model.Point, bearingDeg, distanceM float64) model.Point {
	lat1 := degreesToRadians(p.Lat)
	lon1 := degreesToRadians(p.Lon)
	brng := degreesToRadians(bearingDeg)
	d := distanceM / earthRadiusM

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(
		math.Sin(brng)*math.Sin(d)*math.Cos(lat1),
		math.Cos(d)-math.Sin(lat1)*math.Sin(lat2),
	)
	// Normalize longitude to [-180, 180).
	lon2 = math.Mod(lon2+3*math.Pi, 2*math.Pi) - math.Pi

	return model.Point{Lat: radiansToDegrees(lat2), Lon: radiansToDegrees(lon2)}
}
