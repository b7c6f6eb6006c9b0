package scene

import "math"

// Sphere is the invisible occlusion sphere centered on the origin. It is
// never drawn; it only answers ray queries so picking can tell when the
// globe surface blocks a station.
type Sphere struct {
	Radius float64
}

// IntersectRay returns the smallest non-negative ray parameter at which
// the ray meets the sphere, or ok=false when it misses entirely.
func (s Sphere) IntersectRay(r Ray) (t float64, ok bool) {
	// |o + t d|^2 = R^2 with d normalized.
	o := r.Origin
	d := r.Direction
	b := 2 * o.Dot(d)
	c := o.Dot(o) - s.Radius*s.Radius
	disc := b*b - 4*c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t0 := (-b - sq) / 2
	t1 := (-b + sq) / 2
	if t0 >= 0 {
		return t0, true
	}
	if t1 >= 0 {
		return t1, true
	}
	return 0, false
}
