package geoutils

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestTruncatedBounds(t *testing.T) {
	b := orb.Bound{Min: orb.Point{-74.9, -4.2}, Max: orb.Point{-66.1, 12.7}}
	assert.Equal(t, "-74,-4,-66,12", TruncatedBounds(b))
}

func TestBoxAround(t *testing.T) {
	poly := BoxAround(orb.Point{10, 20}, 0.001)
	b := poly.Bound()
	assert.InDelta(t, 9.999, b.Min.Lon(), 1e-12)
	assert.InDelta(t, 20.001, b.Max.Lat(), 1e-12)
	assert.Len(t, poly[0], 5)
}

func TestMultiPolygonContains(t *testing.T) {
	square := orb.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}
	holed := orb.Polygon{
		{{10, 10}, {14, 10}, {14, 14}, {10, 14}, {10, 10}},
		{{11, 11}, {13, 11}, {13, 13}, {11, 13}, {11, 11}},
	}
	mp := orb.MultiPolygon{square, holed}

	assert.True(t, MultiPolygonContains(mp, orb.Point{1, 1}))
	assert.True(t, MultiPolygonContains(mp, orb.Point{2, 1}), "boundary counts as inside")
	assert.True(t, MultiPolygonContains(mp, orb.Point{10.5, 10.5}))
	assert.False(t, MultiPolygonContains(mp, orb.Point{12, 12}), "inside a hole")
	assert.True(t, MultiPolygonContains(mp, orb.Point{11, 12}), "hole boundary belongs to the polygon")
	assert.False(t, MultiPolygonContains(mp, orb.Point{5, 5}))
}
