package geodata

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// ParseOutlines decodes a GeoJSON document into its geometry list. The
// document may be a Feature, FeatureCollection, GeometryCollection, or a
// bare geometry; only a document whose top-level kind is unrecognizable
// fails. Features whose geometry cannot be decoded are skipped with a
// diagnostic.
func ParseOutlines(raw []byte) ([]geom.T, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, eris.Wrap(err, "geodata: outline document is not a JSON object")
	}

	switch probe.Type {
	case "FeatureCollection":
		var fc geojson.FeatureCollection
		if err := json.Unmarshal(raw, &fc); err != nil {
			return nil, eris.Wrap(err, "geodata: decode feature collection")
		}
		geoms := make([]geom.T, 0, len(fc.Features))
		for i, f := range fc.Features {
			if f == nil || f.Geometry == nil {
				zap.L().Warn("geodata: feature without geometry skipped", zap.Int("feature", i))
				continue
			}
			geoms = append(geoms, f.Geometry)
		}
		return geoms, nil

	case "Feature":
		var f geojson.Feature
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, eris.Wrap(err, "geodata: decode feature")
		}
		if f.Geometry == nil {
			return nil, nil
		}
		return []geom.T{f.Geometry}, nil

	case "Point", "MultiPoint", "LineString", "MultiLineString",
		"Polygon", "MultiPolygon", "GeometryCollection":
		var g geom.T
		if err := geojson.Unmarshal(raw, &g); err != nil {
			return nil, eris.Wrap(err, "geodata: decode geometry")
		}
		return []geom.T{g}, nil

	default:
		return nil, eris.Errorf("geodata: unrecognized outline document type %q", probe.Type)
	}
}
