package geo

import "math"

// DefaultStepDegrees is the maximum angular step between consecutive
// tessellated vertices. Segments longer than this in either axis get
// intermediate vertices so rendered chords hug the sphere surface.
const DefaultStepDegrees = 5.0

// WrapLongitude normalizes a longitude in degrees to (-180, 180].
// Non-finite inputs pass through unchanged so callers can filter them
// with their usual finiteness checks.
func WrapLongitude(lon float64) float64 {
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return lon
	}
	lon = math.Mod(lon, 360)
	if lon > 180 {
		lon -= 360
	} else if lon <= -180 {
		lon += 360
	}
	return lon
}

// Tessellate densifies an ordered (lon, lat) polyline so no segment spans
// more than stepDeg degrees in either axis. Interpolation takes the shorter
// angular path: when the raw longitude delta exceeds 180° the segment is
// treated as crossing the antimeridian instead of sweeping around the globe.
// Sequences of length ≤ 1 pass through unchanged; the final original vertex
// is always emitted exactly.
func Tessellate(coords [][2]float64, stepDeg float64) [][2]float64 {
	if len(coords) <= 1 {
		return coords
	}
	if stepDeg <= 0 {
		stepDeg = DefaultStepDegrees
	}

	out := make([][2]float64, 0, len(coords)*2)
	for i := 0; i < len(coords)-1; i++ {
		lon1, lat1 := WrapLongitude(coords[i][0]), coords[i][1]
		lon2, lat2 := WrapLongitude(coords[i+1][0]), coords[i+1][1]

		dLon := lon2 - lon1
		if dLon > 180 {
			dLon -= 360
		} else if dLon < -180 {
			dLon += 360
		}
		dLat := lat2 - lat1

		span := math.Max(math.Abs(dLon), math.Abs(dLat))
		steps := int(math.Ceil(span / stepDeg))
		if steps < 1 {
			steps = 1
		}

		for s := 0; s < steps; s++ {
			t := float64(s) / float64(steps)
			out = append(out, [2]float64{
				WrapLongitude(lon1 + dLon*t),
				lat1 + dLat*t,
			})
		}
	}

	last := coords[len(coords)-1]
	out = append(out, [2]float64{WrapLongitude(last[0]), last[1]})
	return out
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Smoothstep returns the smooth Hermite interpolation of x between the
// two edges, clamped to [0, 1].
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge1 == edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}
