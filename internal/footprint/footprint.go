package footprint

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/confidence"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/firms"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/geoutils"
)

// HalfWidth is half the nominal 375 m VIIRS pixel, in meters.
const HalfWidth = 187.5

// Square is the ground footprint of one detection.
type Square struct {
	Detection firms.Detection
	Polygon   orb.Polygon
}

// Projector is satisfied by *proj.Projector.
type Projector interface {
	SquareAround(pt orb.Point, halfWidth float64) (orb.Polygon, error)
}

type Builder struct {
	proj      Projector
	halfWidth float64
}

func NewBuilder(proj Projector) *Builder {
	return &Builder{proj: proj, halfWidth: HalfWidth}
}

// ToSquares builds one square per detection, always from its lat/lon.
func (b *Builder) ToSquares(dets []firms.Detection) ([]Square, error) {
	out := make([]Square, 0, len(dets))
	for _, d := range dets {
		poly, err := b.proj.SquareAround(d.Point(), b.halfWidth)
		if err != nil {
			return nil, fmt.Errorf("failed to build footprint of detection %d: %w", d.ID, err)
		}
		out = append(out, Square{Detection: d, Polygon: poly})
	}
	return out, nil
}

// FeatureCollection renders squares with every detection attribute plus
// the bucket label and color used for styling.
func FeatureCollection(squares []Square, s confidence.Scheme) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, sq := range squares {
		f, err := Feature(sq, s)
		if err != nil {
			return nil, err
		}
		fc.Append(f)
	}
	return fc, nil
}

func Feature(sq Square, s confidence.Scheme) (*geojson.Feature, error) {
	d := sq.Detection
	b, err := s.Classify(d.Confidence)
	if err != nil {
		return nil, fmt.Errorf("detection %d: %w", d.ID, err)
	}

	f := geojson.NewFeature(sq.Polygon)
	f.ID = d.ID
	f.Properties["id"] = d.ID
	f.Properties["latitude"] = d.Latitude
	f.Properties["longitude"] = d.Longitude
	f.Properties["acq_date"] = d.AcqDate
	f.Properties["acq_time"] = d.FormattedTime()
	f.Properties["confidence"] = d.Confidence
	f.Properties["satsource"] = string(d.SatSource)
	f.Properties["satellite"] = d.Satellite
	f.Properties["instrument"] = d.Instrument
	f.Properties["brightness"] = d.Bright()
	f.Properties["frp"] = d.FRP
	f.Properties["daynight"] = d.DayNight
	f.Properties["version"] = d.Version
	f.Properties["reviewed"] = d.Reviewed
	f.Properties["observ"] = d.Observ
	f.Properties["bucket"] = b.Label
	f.Properties["color"] = b.Color
	return f, nil
}

// Find returns the square whose polygon contains pt, if any.
func Find(squares []Square, pt orb.Point) (Square, bool) {
	for _, sq := range squares {
		if geoutils.PolygonContains(sq.Polygon, pt) {
			return sq, true
		}
	}
	return Square{}, false
}
