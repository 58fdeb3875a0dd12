package aoi

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/errs"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/firms"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/geoutils"
)

// DrawName names an AOI drawn by hand.
const DrawName = "draw"

// AOI is an immutable set of WGS84 polygons.
type AOI struct {
	Name string
	geom orb.MultiPolygon
}

func New(name string, mp orb.MultiPolygon) (*AOI, error) {
	var polys orb.MultiPolygon
	for _, p := range mp {
		if len(p) > 0 && len(p[0]) >= 4 {
			polys = append(polys, p)
		}
	}
	if len(polys) == 0 {
		return nil, fmt.Errorf("aoi %q has no polygon: %w", name, errs.ErrNoAoi)
	}
	if name == "" {
		name = DrawName
	}
	return &AOI{Name: name, geom: polys.Clone()}, nil
}

// FromGeoJSON accepts a FeatureCollection, a Feature or a bare geometry.
// Only polygonal parts are kept.
func FromGeoJSON(name string, data []byte) (*AOI, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("invalid aoi geojson: %w", err)
	}

	var geoms []orb.Geometry
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("invalid aoi feature collection: %w", err)
		}
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("invalid aoi feature: %w", err)
		}
		geoms = append(geoms, f.Geometry)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("invalid aoi geometry: %w", err)
		}
		geoms = append(geoms, g.Geometry())
	}

	var mp orb.MultiPolygon
	for _, g := range geoms {
		mp = appendPolygons(mp, g)
	}
	return New(name, mp)
}

func appendPolygons(mp orb.MultiPolygon, g orb.Geometry) orb.MultiPolygon {
	switch v := g.(type) {
	case orb.Polygon:
		return append(mp, v)
	case orb.MultiPolygon:
		return append(mp, v...)
	case orb.Bound:
		return append(mp, v.ToPolygon())
	case orb.Collection:
		for _, inner := range v {
			mp = appendPolygons(mp, inner)
		}
	}
	return mp
}

// Geometry returns a copy of the AOI polygons.
func (a *AOI) Geometry() orb.MultiPolygon {
	return a.geom.Clone()
}

func (a *AOI) Bound() orb.Bound {
	return a.geom.Bound()
}

// Contains is true when pt is inside or on the boundary of any polygon.
func (a *AOI) Contains(pt orb.Point) bool {
	return geoutils.MultiPolygonContains(a.geom, pt)
}

// Feature renders the AOI for map display and export.
func (a *AOI) Feature() *geojson.Feature {
	f := geojson.NewFeature(a.Geometry())
	f.Properties["name"] = a.Name
	return f
}

// Clip keeps the detections whose point intersects the AOI, in input order.
func Clip(dets []firms.Detection, a *AOI) ([]firms.Detection, error) {
	if a == nil || len(a.geom) == 0 {
		return nil, errs.ErrNoAoi
	}
	out := make([]firms.Detection, 0, len(dets))
	for _, d := range dets {
		if a.Contains(d.Point()) {
			out = append(out, d)
		}
	}
	return out, nil
}
