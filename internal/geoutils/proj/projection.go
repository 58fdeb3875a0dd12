// Package proj holds the GDAL backed reprojection helpers, kept apart from
// geoutils so that pure geometry callers build without cgo.
package proj

import (
	"fmt"
	"math"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/paulmach/orb"
)

const WGS84 = 4326

// UTMZoneEPSG returns the WGS84 / UTM zone code covering the point,
// 326xx in the northern hemisphere and 327xx in the southern one.
func UTMZoneEPSG(lon, lat float64) int {
	zone := int(math.Floor((lon+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	if lat >= 0 {
		return 32600 + zone
	}
	return 32700 + zone
}

type zoneTransforms struct {
	sr      *godal.SpatialRef
	forward *godal.Transform
	inverse *godal.Transform
}

// Projector moves points between WGS84 and the local UTM zone of each point.
// Transforms are created lazily and reused per zone.
type Projector struct {
	mu    sync.Mutex
	wgs84 *godal.SpatialRef
	zones map[int]*zoneTransforms
}

func NewProjector() (*Projector, error) {
	sr, err := godal.NewSpatialRefFromEPSG(WGS84)
	if err != nil {
		return nil, fmt.Errorf("failed to create WGS84 spatial ref: %w", err)
	}
	return &Projector{wgs84: sr, zones: map[int]*zoneTransforms{}}, nil
}

func (p *Projector) zone(epsg int) (*zoneTransforms, error) {
	if z, ok := p.zones[epsg]; ok {
		return z, nil
	}
	sr, err := godal.NewSpatialRefFromEPSG(epsg)
	if err != nil {
		return nil, fmt.Errorf("failed to create spatial ref EPSG:%d: %w", epsg, err)
	}
	fwd, err := godal.NewTransform(p.wgs84, sr)
	if err != nil {
		sr.Close()
		return nil, fmt.Errorf("failed to create transform to EPSG:%d: %w", epsg, err)
	}
	inv, err := godal.NewTransform(sr, p.wgs84)
	if err != nil {
		fwd.Close()
		sr.Close()
		return nil, fmt.Errorf("failed to create transform from EPSG:%d: %w", epsg, err)
	}
	z := &zoneTransforms{sr: sr, forward: fwd, inverse: inv}
	p.zones[epsg] = z
	return z, nil
}

// SquareAround builds a square of the given half width in meters centred on a
// WGS84 point. The square is axis aligned in the point's UTM zone and returned
// in WGS84 with a counter-clockwise ring.
func (p *Projector) SquareAround(pt orb.Point, halfWidth float64) (orb.Polygon, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	z, err := p.zone(UTMZoneEPSG(pt.Lon(), pt.Lat()))
	if err != nil {
		return nil, err
	}

	xs := []float64{pt.Lon()}
	ys := []float64{pt.Lat()}
	if err := z.forward.TransformEx(xs, ys, nil, nil); err != nil {
		return nil, fmt.Errorf("transform error: %w", err)
	}
	cx, cy := xs[0], ys[0]

	xs = []float64{cx - halfWidth, cx + halfWidth, cx + halfWidth, cx - halfWidth}
	ys = []float64{cy - halfWidth, cy - halfWidth, cy + halfWidth, cy + halfWidth}
	if err := z.inverse.TransformEx(xs, ys, nil, nil); err != nil {
		return nil, fmt.Errorf("transform error: %w", err)
	}

	ring := make(orb.Ring, 0, 5)
	for i := range xs {
		ring = append(ring, orb.Point{xs[i], ys[i]})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}, nil
}

func (p *Projector) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for epsg, z := range p.zones {
		z.forward.Close()
		z.inverse.Close()
		z.sr.Close()
		delete(p.zones, epsg)
	}
	if p.wgs84 != nil {
		p.wgs84.Close()
		p.wgs84 = nil
	}
}
