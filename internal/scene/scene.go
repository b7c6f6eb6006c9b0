package scene

import (
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/skywatch-labs/stationglobe/internal/geodata"
)

// Camera distance bounds relative to the globe radius. The minimum keeps
// the camera from passing through the surface.
const (
	minDistanceFactor = 1.1
	maxDistanceFactor = 4.0
)

// Options configures a mounted globe view.
type Options struct {
	Radius      float64 // sphere radius in world units
	StepDegrees float64 // tessellation step, 0 = default

	PointPixelScale float64 // station dot size in pixels, 0 = 1
	PickPixelScale  float64 // pick radius in pixels, 0 = 1

	// OnStationClick fires once per confirmed non-drag click on a
	// visible, unoccluded station.
	OnStationClick func(Hit)

	// OnHover fires on pointer movement with the station under the
	// pointer, or nil when there is none.
	OnHover func(*Hit)
}

// Scene assembles and owns everything one globe view renders: camera,
// orbit controls, the invisible occlusion sphere, outline strips, and the
// station point cloud. All methods are driven from a single event loop;
// pointer handling and the frame tick never run concurrently.
type Scene struct {
	Camera   *Camera
	Controls *OrbitControls

	radius   float64
	stepDeg  float64
	occluder Sphere
	lod      *LOD

	outlines *OutlineSet
	cloud    *PointCloud

	pointer    pointerState
	hoverIndex int

	onClick func(Hit)
	onHover func(*Hit)

	closed bool
}

// New assembles an empty scene; geometry arrives later through
// SetStations and SetOutlines.
func New(opts Options) *Scene {
	if opts.Radius <= 0 {
		opts.Radius = 100
	}
	if opts.PointPixelScale <= 0 {
		opts.PointPixelScale = 1
	}
	if opts.PickPixelScale <= 0 {
		opts.PickPixelScale = 1
	}

	cam := NewCamera(opts.Radius)
	controls := NewOrbitControls(opts.Radius*minDistanceFactor, opts.Radius*maxDistanceFactor)
	lod := NewLOD()
	lod.PointPixelScale = opts.PointPixelScale
	lod.PickPixelScale = opts.PickPixelScale

	return &Scene{
		Camera:     cam,
		Controls:   controls,
		radius:     opts.Radius,
		stepDeg:    opts.StepDegrees,
		occluder:   Sphere{Radius: opts.Radius},
		lod:        lod,
		outlines:   &OutlineSet{},
		hoverIndex: -1,
		onClick:    opts.OnStationClick,
		onHover:    opts.OnHover,
	}
}

// Radius returns the globe radius.
func (s *Scene) Radius() float64 { return s.radius }

// Outlines returns the current outline set.
func (s *Scene) Outlines() *OutlineSet { return s.outlines }

// Cloud returns the current station point cloud, possibly nil.
func (s *Scene) Cloud() *PointCloud { return s.cloud }

// PointSize returns the LOD-derived world-space station dot size.
func (s *Scene) PointSize() float64 { return s.lod.PointSize() }

// HoverIndex returns the buffer index of the hovered station, or -1.
func (s *Scene) HoverIndex() int { return s.hoverIndex }

// Resize propagates new viewport pixel dimensions to the camera and to
// every outline strip's screen-space resolution.
func (s *Scene) Resize(width, height int) {
	s.Camera.SetViewport(width, height)
	s.outlines.SetResolution(width, height)
}

// Frame advances the damped controls and retunes LOD parameters. Called
// once per animation frame before rendering.
func (s *Scene) Frame() {
	if s.closed {
		return
	}
	s.Controls.Update(s.Camera)
	s.lod.Update(s.Camera, s.Controls)
}

// SetStations replaces the station point cloud wholesale, disposing the
// previous one. Results delivered after Close are discarded.
func (s *Scene) SetStations(stations []geodata.Station) error {
	if s.closed {
		zap.L().Debug("scene: station load ignored after teardown")
		return nil
	}
	cloud, err := BuildPointCloud(stations, s.radius)
	if err != nil {
		return err
	}
	old := s.cloud
	s.cloud = cloud
	// Any in-flight hover refers to the old buffer; drop it so no stale
	// index escapes across the swap.
	s.clearHover()
	old.Dispose()
	zap.L().Info("scene: station point cloud installed",
		zap.Int("stations", cloud.Len()),
		zap.Int("dropped", len(stations)-cloud.Len()),
	)
	return nil
}

// SetOutlines replaces the outline geometry wholesale, disposing the
// previous set. Results delivered after Close are discarded.
func (s *Scene) SetOutlines(geoms []geom.T) {
	if s.closed {
		zap.L().Debug("scene: outline load ignored after teardown")
		return
	}
	set := BuildOutlines(geoms, s.radius, s.stepDeg)
	set.SetResolution(s.Camera.Width, s.Camera.Height)
	old := s.outlines
	s.outlines = set
	old.Dispose()
	zap.L().Info("scene: outlines installed", zap.Int("strips", len(set.Strips)))
}

// PointerDown starts a new interaction cycle at the given pixel position.
func (s *Scene) PointerDown(x, y float64) {
	if s.closed {
		return
	}
	s.pointer = pointerState{
		phase:   pickDown,
		originX: x,
		originY: y,
		lastX:   x,
		lastY:   y,
	}
}

// PointerMove updates drag detection and, independent of the press cycle,
// resolves the hover target under the pointer.
func (s *Scene) PointerMove(x, y float64) {
	if s.closed {
		return
	}

	if s.pointer.phase == pickDown || s.pointer.phase == pickDragging {
		dx := x - s.pointer.lastX
		dy := y - s.pointer.lastY
		s.pointer.traveled += abs(dx) + abs(dy)
		s.pointer.lastX = x
		s.pointer.lastY = y
		if s.pointer.traveled > dragThresholdPx {
			s.pointer.phase = pickDragging
		}
		if s.pointer.phase == pickDragging {
			s.Controls.Rotate(dx, dy)
		}
	}

	hit := pickStation(s.Camera, s.occluder, s.cloud, x, y, s.lod.PickRadius())
	if hit == nil {
		s.clearHover()
		return
	}
	s.hoverIndex = hit.Index
	if s.onHover != nil {
		s.onHover(hit)
	}
}

// PointerUp closes the interaction cycle. A cycle that dragged is a
// camera orbit and never selects; otherwise a station under the pointer
// fires the click callback.
func (s *Scene) PointerUp(x, y float64) {
	if s.closed {
		return
	}
	wasDrag := s.pointer.phase == pickDragging
	s.pointer = pointerState{}
	if wasDrag {
		return
	}

	hit := pickStation(s.Camera, s.occluder, s.cloud, x, y, s.lod.PickRadius())
	if hit != nil && s.onClick != nil {
		s.onClick(*hit)
	}
}

// Wheel zooms the orbit by the given wheel steps (positive = in).
func (s *Scene) Wheel(steps float64) {
	if s.closed {
		return
	}
	s.Controls.Zoom(steps)
}

// Close tears the view down: further frames, pointer events, and load
// results become no-ops, then geometry is disposed exactly once.
func (s *Scene) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.clearHover()
	s.outlines.Dispose()
	s.cloud.Dispose()
}

func (s *Scene) clearHover() {
	if s.hoverIndex == -1 {
		return
	}
	s.hoverIndex = -1
	if s.onHover != nil {
		s.onHover(nil)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
