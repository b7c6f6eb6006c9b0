package scene

import (
	"fmt"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/skywatch-labs/stationglobe/internal/geo"
)

// BuildOutlines walks the decoded geometry list and emits one line strip
// per contiguous ring or segment. Point and MultiPoint geometries carry no
// outline meaning and are ignored. Rings that keep fewer than two finite
// projected vertices are dropped with a diagnostic.
func BuildOutlines(geoms []geom.T, radius, stepDeg float64) *OutlineSet {
	set := &OutlineSet{}
	for _, g := range geoms {
		appendGeometry(set, g, radius, stepDeg)
	}
	return set
}

func appendGeometry(set *OutlineSet, g geom.T, radius, stepDeg float64) {
	switch t := g.(type) {
	case *geom.LineString:
		appendRing(set, t.Coords(), radius, stepDeg)

	case *geom.MultiLineString:
		for i := 0; i < t.NumLineStrings(); i++ {
			appendRing(set, t.LineString(i).Coords(), radius, stepDeg)
		}

	case *geom.Polygon:
		// Exterior and holes alike: outlines only, no fill semantics.
		for i := 0; i < t.NumLinearRings(); i++ {
			appendRing(set, t.LinearRing(i).Coords(), radius, stepDeg)
		}

	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			appendGeometry(set, t.Polygon(i), radius, stepDeg)
		}

	case *geom.GeometryCollection:
		for _, member := range t.Geoms() {
			appendGeometry(set, member, radius, stepDeg)
		}

	case *geom.Point, *geom.MultiPoint:
		// no outline meaning

	default:
		zap.L().Warn("scene: skipping unsupported outline geometry",
			zap.String("kind", fmt.Sprintf("%T", g)))
	}
}

func appendRing(set *OutlineSet, coords []geom.Coord, radius, stepDeg float64) {
	lonLat := make([][2]float64, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		lonLat = append(lonLat, [2]float64{c[0], c[1]})
	}

	dense := geo.Tessellate(lonLat, stepDeg)
	positions := make([]geo.Vec3, 0, len(dense))
	for _, v := range dense {
		p := geo.Project(v[1], v[0], radius*outlineLift)
		if !p.IsFinite() {
			continue
		}
		positions = append(positions, p)
	}

	if len(positions) < 2 {
		if len(lonLat) > 0 {
			zap.L().Debug("scene: dropping degenerate outline ring",
				zap.Int("input_vertices", len(lonLat)))
		}
		return
	}
	set.Strips = append(set.Strips, &LineStrip{Positions: positions})
}
