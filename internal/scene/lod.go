package scene

import "github.com/skywatch-labs/stationglobe/internal/geo"

// LOD retunes interaction and display parameters from the camera distance
// every frame: close views get slow, heavily damped controls and far views
// stay snappy, while station point size and pick radius track the world
// size of one screen pixel so stations remain tiny but clickable at any
// zoom level.
type LOD struct {
	// Screen-pixel multipliers for station dot size and pick-test radius.
	PointPixelScale float64
	PickPixelScale  float64

	pointSize  float64
	pickRadius float64
}

// NewLOD returns a controller with both pixel constants at 1.
func NewLOD() *LOD {
	return &LOD{PointPixelScale: 1, PickPixelScale: 1}
}

// Update recomputes control speeds and world-space sizes for the current
// camera distance. Called once per frame before rendering.
func (l *LOD) Update(cam *Camera, controls *OrbitControls) {
	d := cam.Distance()
	t := geo.Smoothstep(controls.MinDistance, controls.MaxDistance, d)

	controls.RotateSpeed = geo.Lerp(0.05, 0.9, t)
	controls.ZoomSpeed = geo.Lerp(0.3, 1.0, t)
	controls.Damping = geo.Lerp(0.15, 0.06, t)

	px := cam.PixelWorldSize(d)
	l.pointSize = px * l.PointPixelScale
	l.pickRadius = px * l.PickPixelScale
}

// PointSize returns the current world-space station dot size.
func (l *LOD) PointSize() float64 { return l.pointSize }

// PickRadius returns the current world-space ray hit-test radius.
func (l *LOD) PickRadius() float64 { return l.pickRadius }
