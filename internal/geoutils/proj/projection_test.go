package proj

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/geoutils"
)

func TestUTMZoneEPSG(t *testing.T) {
	assert.Equal(t, 32618, UTMZoneEPSG(-74.1, 4.6))
	assert.Equal(t, 32723, UTMZoneEPSG(-47.9, -15.8))
	assert.Equal(t, 32601, UTMZoneEPSG(-180, 10))
	assert.Equal(t, 32660, UTMZoneEPSG(180, 10))
	assert.Equal(t, 32631, UTMZoneEPSG(0, 0))
}

func TestProjector_SquareAround(t *testing.T) {
	p, err := NewProjector()
	require.NoError(t, err)
	defer p.Close()

	points := []orb.Point{
		{-74.08, 4.60},
		{-47.93, -15.78},
		{151.21, -33.87},
		{2.35, 48.85},
	}
	for _, pt := range points {
		poly, err := p.SquareAround(pt, 187.5)
		require.NoError(t, err)
		require.Len(t, poly, 1)
		require.Len(t, poly[0], 5)
		assert.Equal(t, poly[0][0], poly[0][4])

		c := geoutils.Centroid(poly)
		assert.InDelta(t, pt.Lon(), c.Lon(), 1e-6)
		assert.InDelta(t, pt.Lat(), c.Lat(), 1e-6)

		side := geo.Distance(poly[0][0], poly[0][1])
		assert.InDelta(t, 375, side, 4)
	}
}

func TestProjector_CloseIsIdempotent(t *testing.T) {
	p, err := NewProjector()
	require.NoError(t, err)
	_, err = p.SquareAround(orb.Point{2.35, 48.85}, 10)
	require.NoError(t, err)
	p.Close()
	p.Close()
	assert.Empty(t, p.zones)
}
