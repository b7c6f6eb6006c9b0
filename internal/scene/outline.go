package scene

import "github.com/skywatch-labs/stationglobe/internal/geo"

// outlineLift keeps border strips fractionally above the occlusion sphere
// so they are not swallowed by the surface they trace.
const outlineLift = 1.002

// LineStrip is one contiguous run of projected outline vertices.
type LineStrip struct {
	Positions []geo.Vec3
}

// OutlineSet owns every line strip built from one outline document, plus
// the screen-space resolution that strip rendering needs to keep stroke
// width constant.
type OutlineSet struct {
	Strips []*LineStrip

	resW, resH int
	disposed   bool
}

// SetResolution propagates new viewport pixel dimensions to every strip.
func (o *OutlineSet) SetResolution(width, height int) {
	if o == nil {
		return
	}
	o.resW = width
	o.resH = height
}

// Resolution returns the current viewport dimensions in pixels.
func (o *OutlineSet) Resolution() (int, int) {
	return o.resW, o.resH
}

// Dispose releases strip buffers exactly once.
func (o *OutlineSet) Dispose() {
	if o == nil || o.disposed {
		return
	}
	o.disposed = true
	for _, s := range o.Strips {
		s.Positions = nil
	}
	o.Strips = nil
}
