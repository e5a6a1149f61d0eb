package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridline/roadrank/internal/geomath"
	"github.com/gridline/roadrank/internal/model"
)

const circlePoints = 32

var circleCmd = &cobra.Command{
	Use:   "circle <output.poly>",
	Short: "Write a radius polygon around the origin",
	Long: `Write a 32-point polygon (osmconvert .poly format) around the origin at
the configured search radius, for framing the upstream network extraction.

Examples:
  roadrank circle hanoi.poly
  roadrank circle --radius-km 10 hanoi.poly`,
	Args: cobra.ExactArgs(1),
	RunE: runCircle,
}

func init() {
	f := circleCmd.Flags()
	f.Float64("origin-lat", 0, "origin latitude (overrides config)")
	f.Float64("origin-lon", 0, "origin longitude (overrides config)")
	f.Float64("radius-km", 0, "radius in kilometers (overrides config)")

	rootCmd.AddCommand(circleCmd)
}

func runCircle(cmd *cobra.Command, args []string) error {
	origin := originOverrides(cmd)
	radiusKM := cfg.Origin.RadiusKM
	if cmd.Flags().Changed("radius-km") {
		radiusKM, _ = cmd.Flags().GetFloat64("radius-km")
		if radiusKM <= 0 {
			return eris.Errorf("circle: --radius-km must be positive (got %v)", radiusKM)
		}
	}

	if err := os.WriteFile(args[0], []byte(circlePolygon(origin, radiusKM*1000)), 0o644); err != nil {
		return eris.Wrapf(err, "circle: write %s", args[0])
	}

	zap.L().Info("circle polygon written",
		zap.String("command", "circle"),
		zap.String("path", args[0]),
		zap.Float64("radius_km", radiusKM),
	)
	return nil
}

// circlePolygon renders a closed ring of circlePoints vertices at radiusM
// around origin, in osmconvert .poly section format.
func circlePolygon(origin model.Point, radiusM float64) string {
	var b strings.Builder
	b.WriteString("circle\n1\n")
	var first model.Point
	for i := 0; i < circlePoints; i++ {
		bearing := 360 * float64(i) / circlePoints
		p := geomath.Destination(origin, bearing, radiusM)
		if i == 0 {
			first = p
		}
		fmt.Fprintf(&b, "   %.6f   %.6f\n", p.Lon, p.Lat)
	}
	// Close the ring, then the section and the file.
	fmt.Fprintf(&b, "   %.6f   %.6f\n", first.Lon, first.Lat)
	b.WriteString("END\nEND\n")
	return b.String()
}
