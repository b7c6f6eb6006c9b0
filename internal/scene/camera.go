// Package scene owns the renderable state of one mounted globe view:
// camera, orbit controls, occlusion sphere, outline geometry, station point
// cloud, and the picking machinery that resolves pointer input against them.
package scene

import (
	"math"

	"github.com/skywatch-labs/stationglobe/internal/geo"
)

// Camera is a perspective camera looking at the globe center (the origin).
type Camera struct {
	Position geo.Vec3
	FOVDeg   float64 // vertical field of view
	Aspect   float64
	Near     float64

	// viewport in pixels, kept for pixel<->NDC conversion
	Width  int
	Height int
}

// NewCamera returns a camera with the conventional defaults for a globe of
// the given radius, positioned on +X looking at the origin.
func NewCamera(radius float64) *Camera {
	return &Camera{
		Position: geo.Vec3{X: radius * 3},
		FOVDeg:   45,
		Aspect:   1,
		Near:     radius * 0.01,
		Width:    1,
		Height:   1,
	}
}

// SetViewport updates the pixel dimensions and the aspect ratio derived
// from them.
func (c *Camera) SetViewport(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c.Width = width
	c.Height = height
	c.Aspect = float64(width) / float64(height)
}

// Ray is a half-line with a normalized direction.
type Ray struct {
	Origin    geo.Vec3
	Direction geo.Vec3
}

// basis returns the camera's forward, right and up unit vectors. The world
// up axis is +Z (the projection convention maps the north pole there).
func (c *Camera) basis() (forward, right, up geo.Vec3) {
	forward = c.Position.Scale(-1).Normalize()
	worldUp := geo.Vec3{Z: 1}
	right = forward.Cross(worldUp).Normalize()
	if right.Norm() == 0 {
		// Looking straight down a pole; pick an arbitrary horizontal axis.
		right = geo.Vec3{X: 1}
	}
	up = right.Cross(forward)
	return forward, right, up
}

func (c *Camera) tanHalfFOV() float64 {
	return math.Tan(c.FOVDeg * math.Pi / 360)
}

// PixelToNDC converts pixel coordinates (origin top-left, y down) to
// normalized device coordinates in [-1, 1] with y up.
func (c *Camera) PixelToNDC(px, py float64) (float64, float64) {
	x := 2*px/float64(c.Width) - 1
	y := 1 - 2*py/float64(c.Height)
	return x, y
}

// RayThrough builds the world-space ray from the camera through the given
// pixel position.
func (c *Camera) RayThrough(px, py float64) Ray {
	ndcX, ndcY := c.PixelToNDC(px, py)
	forward, right, up := c.basis()
	th := c.tanHalfFOV()
	dir := forward.
		Add(right.Scale(ndcX * th * c.Aspect)).
		Add(up.Scale(ndcY * th)).
		Normalize()
	return Ray{Origin: c.Position, Direction: dir}
}

// WorldToScreen projects a world point into pixel coordinates. The third
// return is the view-space depth; ok is false when the point is behind the
// near plane.
func (c *Camera) WorldToScreen(p geo.Vec3) (px, py, depth float64, ok bool) {
	forward, right, up := c.basis()
	v := p.Sub(c.Position)
	z := v.Dot(forward)
	if z <= c.Near {
		return 0, 0, z, false
	}
	th := c.tanHalfFOV()
	sx := v.Dot(right) / (z * th * c.Aspect)
	sy := v.Dot(up) / (z * th)
	px = (sx + 1) / 2 * float64(c.Width)
	py = (1 - sy) / 2 * float64(c.Height)
	return px, py, z, true
}

// PixelWorldSize returns the world-space extent covered by one vertical
// pixel at the given view distance.
func (c *Camera) PixelWorldSize(distance float64) float64 {
	worldHeight := 2 * distance * c.tanHalfFOV()
	return worldHeight / float64(c.Height)
}

// Distance returns the camera's distance to the globe center.
func (c *Camera) Distance() float64 {
	return c.Position.Norm()
}
