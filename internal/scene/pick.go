package scene

import "math"

// dragThresholdPx is the cumulative pointer travel past which an
// interaction counts as a camera drag instead of a click.
const dragThresholdPx = 5.0

// pickPhase is the explicit pointer state machine: a cycle starts Idle,
// moves to Down on press, escalates to Dragging once travel exceeds the
// threshold, and resets to Idle on release.
type pickPhase int

const (
	pickIdle pickPhase = iota
	pickDown
	pickDragging
)

// pointerState is the transient per-interaction state. It is reset at the
// start of each new press/release cycle.
type pointerState struct {
	phase    pickPhase
	originX  float64
	originY  float64
	lastX    float64
	lastY    float64
	traveled float64
}

// Hit identifies a picked station.
type Hit struct {
	ID    string
	Name  string
	Index int

	// RayDistance is the distance along the pick ray, kept for callers
	// that order or debounce hits.
	RayDistance float64
}

// pickStation casts a ray through the pointer position and resolves the
// nearest selectable station, or nil. It never fails: any inability to
// resolve a hit is simply no selection.
//
// Selection rules, in order: candidates must be within the pick radius of
// the ray, on the camera-facing hemisphere, and not hidden behind a
// strictly nearer occlusion-sphere hit. Nearest ray distance wins; equal
// distances resolve to the lowest buffer index.
func pickStation(cam *Camera, occluder Sphere, cloud *PointCloud, px, py, pickRadius float64) *Hit {
	if cloud.Len() == 0 {
		return nil
	}

	ray := cam.RayThrough(px, py)

	sphereT, sphereHit := occluder.IntersectRay(ray)

	camDir := cam.Position.Normalize()
	radiusSq := pickRadius * pickRadius

	best := -1
	bestT := math.Inf(1)
	for i := 0; i < cloud.Len(); i++ {
		p := cloud.At(i)

		t := p.Sub(ray.Origin).Dot(ray.Direction)
		if t <= 0 {
			continue
		}
		closest := ray.Origin.Add(ray.Direction.Scale(t))
		if p.Sub(closest).Dot(p.Sub(closest)) > radiusSq {
			continue
		}

		// Hemisphere culling: the point's surface normal must face the
		// camera regardless of what the occlusion sphere reports.
		if p.Normalize().Dot(camDir) <= 0 {
			continue
		}

		if t < bestT {
			bestT = t
			best = i
		}
	}

	if best < 0 {
		return nil
	}

	// Blocked by the globe itself: the visible surface sits strictly in
	// front of the chosen point. The epsilon absorbs points lying exactly
	// on the sphere.
	eps := math.Max(pickRadius, occluder.Radius*1e-9)
	if sphereHit && sphereT+eps < bestT {
		return nil
	}

	s := cloud.Stations[best]
	return &Hit{ID: s.ID, Name: s.Name, Index: best, RayDistance: bestT}
}
