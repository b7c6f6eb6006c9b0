package scene

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/skywatch-labs/stationglobe/internal/geo"
	"github.com/skywatch-labs/stationglobe/internal/geodata"
)

// PointCloud is the owned renderable form of a station list: a contiguous
// position buffer, the records that produced valid positions in insertion
// order, and a reverse id lookup. Index i of Stations always corresponds
// to the position triple at Positions[3i:3i+3]. A cloud is replaced
// wholesale on each load, never patched.
type PointCloud struct {
	Positions []float64
	Stations  []geodata.Station
	IDIndex   map[string]int

	disposed bool
}

// Len returns the number of stations in the cloud.
func (pc *PointCloud) Len() int {
	if pc == nil {
		return 0
	}
	return len(pc.Stations)
}

// At returns the projected position of station i.
func (pc *PointCloud) At(i int) geo.Vec3 {
	return geo.Vec3{
		X: pc.Positions[3*i],
		Y: pc.Positions[3*i+1],
		Z: pc.Positions[3*i+2],
	}
}

// Dispose releases the buffers. Safe to call more than once; only the
// first call frees anything.
func (pc *PointCloud) Dispose() {
	if pc == nil || pc.disposed {
		return
	}
	pc.disposed = true
	pc.Positions = nil
	pc.Stations = nil
	pc.IDIndex = nil
}

// BuildPointCloud projects each station onto a sphere of the given radius.
// Records whose projection is non-finite are skipped with a diagnostic; an
// input from which zero stations survive is an error so callers can tell
// "bad data" from "no data".
func BuildPointCloud(stations []geodata.Station, radius float64) (*PointCloud, error) {
	pc := &PointCloud{
		Positions: make([]float64, 0, len(stations)*3),
		Stations:  make([]geodata.Station, 0, len(stations)),
		IDIndex:   make(map[string]int, len(stations)),
	}

	for _, s := range stations {
		p := geo.Project(s.Latitude, s.Longitude, radius)
		if !p.IsFinite() {
			zap.L().Warn("scene: dropping station with non-finite projection",
				zap.String("station", s.ID),
				zap.Float64("lat", s.Latitude),
				zap.Float64("lon", s.Longitude),
			)
			continue
		}
		pc.IDIndex[s.ID] = len(pc.Stations)
		pc.Stations = append(pc.Stations, s)
		pc.Positions = append(pc.Positions, p.X, p.Y, p.Z)
	}

	if len(pc.Stations) == 0 {
		return nil, eris.Errorf("scene: no station out of %d produced a valid position", len(stations))
	}
	return pc, nil
}
