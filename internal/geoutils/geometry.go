package geoutils

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// BoxAround returns the square polygon of +-delta degrees around pt.
func BoxAround(pt orb.Point, delta float64) orb.Polygon {
	b := orb.Bound{
		Min: orb.Point{pt.Lon() - delta, pt.Lat() - delta},
		Max: orb.Point{pt.Lon() + delta, pt.Lat() + delta},
	}
	return b.ToPolygon()
}

// TruncatedBounds formats a bound as "minLon,minLat,maxLon,maxLat" with each
// value truncated toward zero to whole degrees.
func TruncatedBounds(b orb.Bound) string {
	return fmt.Sprintf("%d,%d,%d,%d",
		int(math.Trunc(b.Min.Lon())),
		int(math.Trunc(b.Min.Lat())),
		int(math.Trunc(b.Max.Lon())),
		int(math.Trunc(b.Max.Lat())),
	)
}

// PolygonContains reports whether pt is inside or on the boundary of poly
// and outside its holes.
func PolygonContains(poly orb.Polygon, pt orb.Point) bool {
	if len(poly) == 0 || !planar.RingContains(poly[0], pt) {
		return false
	}
	for _, hole := range poly[1:] {
		if planar.RingContains(hole, pt) && !onRing(hole, pt) {
			return false
		}
	}
	return true
}

// MultiPolygonContains is the union test over every member polygon.
func MultiPolygonContains(mp orb.MultiPolygon, pt orb.Point) bool {
	for _, poly := range mp {
		if PolygonContains(poly, pt) {
			return true
		}
	}
	return false
}

func onRing(r orb.Ring, pt orb.Point) bool {
	for i := 0; i+1 < len(r); i++ {
		if onSegment(r[i], r[i+1], pt) {
			return true
		}
	}
	return false
}

func onSegment(a, b, p orb.Point) bool {
	const eps = 1e-12
	cross := (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
	if math.Abs(cross) > eps {
		return false
	}
	return p[0] >= math.Min(a[0], b[0])-eps && p[0] <= math.Max(a[0], b[0])+eps &&
		p[1] >= math.Min(a[1], b[1])-eps && p[1] <= math.Max(a[1], b[1])+eps
}

// Centroid returns the area centroid of the polygon.
func Centroid(poly orb.Polygon) orb.Point {
	c, _ := planar.CentroidArea(poly)
	return c
}
