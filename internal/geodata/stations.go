// Package geodata normalizes externally supplied station lists and outline
// documents into the canonical shapes the rendering core consumes.
package geodata

import (
	"encoding/json"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Station is one weather station record. Rendering treats it as read-only;
// json tags match the upstream schema.
type Station struct {
	ID        string   `json:"station_id"`
	Name      string   `json:"station_name,omitempty"`
	Network   string   `json:"station_network,omitempty"`
	Timezone  string   `json:"timezone,omitempty"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Elevation *float64 `json:"elevation,omitempty"`
}

// HasFiniteCoords reports whether both coordinates are finite numbers.
// Range normalization happens at projection time; non-finite values are
// the only per-record reason to drop a station.
func (s Station) HasFiniteCoords() bool {
	return isFinite(s.Latitude) && isFinite(s.Longitude)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ParseStations accepts either a JSON array of station records or the
// legacy mapping of id -> [latitude, longitude] and returns the canonical
// record list. Any other document shape is a load failure.
func ParseStations(raw []byte) ([]Station, error) {
	var records []Station
	if err := json.Unmarshal(raw, &records); err == nil {
		for i, r := range records {
			if r.ID == "" {
				return nil, eris.Errorf("geodata: station record %d has no station_id", i)
			}
		}
		return records, nil
	}

	var legacy map[string]json.RawMessage
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, eris.New("geodata: station document is neither a record array nor an id->[lat,lon] map")
	}

	stations := make([]Station, 0, len(legacy))
	for id, entry := range legacy {
		// Decode each pair independently so one malformed entry drops that
		// station instead of failing the whole document.
		var pair []json.Number
		if err := json.Unmarshal(entry, &pair); err != nil {
			zap.L().Warn("geodata: legacy station entry is not a coordinate pair", zap.String("station", id))
			continue
		}
		if len(pair) < 2 {
			zap.L().Warn("geodata: legacy station entry missing coordinates", zap.String("station", id))
			continue
		}
		lat, latErr := pair[0].Float64()
		lon, lonErr := pair[1].Float64()
		if latErr != nil || lonErr != nil {
			zap.L().Warn("geodata: legacy station entry has non-numeric coordinates", zap.String("station", id))
			continue
		}
		stations = append(stations, Station{ID: id, Latitude: lat, Longitude: lon})
	}
	return stations, nil
}
