package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridline/roadrank/internal/geomath"
	"github.com/gridline/roadrank/internal/model"
)

func TestCirclePolygonFormat(t *testing.T) {
	origin := model.Point{Lat: 21.0285, Lon: 105.8542}
	out := circlePolygon(origin, 5000)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// name, section, the vertices plus the closing repeat, two END lines.
	require.Len(t, lines, 2+circlePoints+1+2)
	assert.Equal(t, "circle", lines[0])
	assert.Equal(t, "1", lines[1])
	assert.Equal(t, "END", lines[len(lines)-2])
	assert.Equal(t, "END", lines[len(lines)-1])

	// The ring closes: the last vertex repeats the first.
	assert.Equal(t, lines[2], lines[2+circlePoints])

	// Every vertex sits on the requested radius.
	for _, line := range lines[2 : 2+circlePoints] {
		var lon, lat float64
		_, err := fmt.Sscanf(line, "%f %f", &lon, &lat)
		require.NoError(t, err)
		d := geomath.GreatCircleDistance(origin, model.Point{Lat: lat, Lon: lon})
		assert.InDelta(t, 5000, d, 1)
	}
}
