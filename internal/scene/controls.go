package scene

import (
	"math"

	"github.com/skywatch-labs/stationglobe/internal/geo"
)

// pitch is clamped short of the poles so the camera basis stays well
// defined.
const maxPitch = math.Pi/2 - 0.01

// OrbitControls steers the camera on a damped spherical orbit around the
// globe center. Rotate/zoom speeds and the damping factor are retuned
// every frame by the LOD controller.
type OrbitControls struct {
	MinDistance float64
	MaxDistance float64

	RotateSpeed float64
	ZoomSpeed   float64
	Damping     float64

	yaw, pitch, distance                   float64
	targetYaw, targetPitch, targetDistance float64
}

// NewOrbitControls creates controls bounded to [minDist, maxDist], starting
// at the far bound on the equator.
func NewOrbitControls(minDist, maxDist float64) *OrbitControls {
	c := &OrbitControls{
		MinDistance: minDist,
		MaxDistance: maxDist,
		RotateSpeed: 0.9,
		ZoomSpeed:   1.0,
		Damping:     0.1,
	}
	c.distance = maxDist
	c.targetDistance = maxDist
	return c
}

// Rotate nudges the orbit target by a pointer delta in pixels.
func (c *OrbitControls) Rotate(dxPx, dyPx float64) {
	// Full viewport width of drag sweeps roughly half a revolution.
	c.targetYaw -= dxPx * 0.01 * c.RotateSpeed
	c.targetPitch += dyPx * 0.01 * c.RotateSpeed
	if c.targetPitch > maxPitch {
		c.targetPitch = maxPitch
	} else if c.targetPitch < -maxPitch {
		c.targetPitch = -maxPitch
	}
}

// Zoom scales the target distance; positive steps zoom in.
func (c *OrbitControls) Zoom(steps float64) {
	c.targetDistance *= math.Pow(0.9, steps*c.ZoomSpeed)
	if c.targetDistance < c.MinDistance {
		c.targetDistance = c.MinDistance
	} else if c.targetDistance > c.MaxDistance {
		c.targetDistance = c.MaxDistance
	}
}

// Distance returns the current (damped) camera distance.
func (c *OrbitControls) Distance() float64 {
	return c.distance
}

// Update advances the damped state one frame and writes the resulting
// position into the camera.
func (c *OrbitControls) Update(cam *Camera) {
	c.yaw += (c.targetYaw - c.yaw) * c.Damping
	c.pitch += (c.targetPitch - c.pitch) * c.Damping
	c.distance += (c.targetDistance - c.distance) * c.Damping

	cosP := math.Cos(c.pitch)
	cam.Position = geo.Vec3{
		X: c.distance * cosP * math.Cos(c.yaw),
		Y: c.distance * cosP * math.Sin(c.yaw),
		Z: c.distance * math.Sin(c.pitch),
	}
}
