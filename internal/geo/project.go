package geo

import "math"

// Project maps a geographic coordinate onto a sphere of the given radius.
// Latitude rotates toward +Z, longitude sweeps the XY plane from +X.
// Non-finite inputs produce non-finite components; callers filter rather
// than receiving a silently clamped point.
func Project(latDeg, lonDeg, radius float64) Vec3 {
	lat := latDeg * math.Pi / 180
	lon := lonDeg * math.Pi / 180
	return Vec3{
		X: radius * math.Cos(lat) * math.Cos(lon),
		Y: radius * math.Cos(lat) * math.Sin(lon),
		Z: radius * math.Sin(lat),
	}
}
