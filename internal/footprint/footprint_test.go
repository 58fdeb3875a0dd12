package footprint

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/confidence"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/errs"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/firms"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/geoutils"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/geoutils/proj"
)

func sampleDetections() []firms.Detection {
	pts := []orb.Point{
		{-74.08, 4.60},
		{-47.93, -15.78},
		{151.21, -33.87},
		{2.35, 48.85},
		{-179.9, 0.5},
	}
	out := make([]firms.Detection, len(pts))
	for i, p := range pts {
		out[i] = firms.Detection{
			ID: i, Longitude: p.Lon(), Latitude: p.Lat(),
			AcqDate: "2024-03-10", AcqTime: "130", Confidence: "n",
			SatSource: firms.ViirsSnppNRT,
		}
	}
	return out
}

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	projector, err := proj.NewProjector()
	require.NoError(t, err)
	t.Cleanup(projector.Close)
	return NewBuilder(projector)
}

func TestToSquares_CentroidRoundTrip(t *testing.T) {
	b := newBuilder(t)
	dets := sampleDetections()

	squares, err := b.ToSquares(dets)
	require.NoError(t, err)
	require.Len(t, squares, len(dets))

	for i, sq := range squares {
		assert.Equal(t, dets[i], sq.Detection)
		c := geoutils.Centroid(sq.Polygon)
		assert.InDelta(t, dets[i].Longitude, c.Lon(), 1e-6)
		assert.InDelta(t, dets[i].Latitude, c.Lat(), 1e-6)
		assert.True(t, geoutils.PolygonContains(sq.Polygon, dets[i].Point()))
	}
}

func TestToSquares_Idempotent(t *testing.T) {
	b := newBuilder(t)
	dets := sampleDetections()

	first, err := b.ToSquares(dets)
	require.NoError(t, err)
	second, err := b.ToSquares(dets)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

type failingProjector struct{}

func (failingProjector) SquareAround(orb.Point, float64) (orb.Polygon, error) {
	return nil, assert.AnError
}

func TestToSquares_ProjectionError(t *testing.T) {
	_, err := NewBuilder(failingProjector{}).ToSquares(sampleDetections())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestFeatureCollection(t *testing.T) {
	b := newBuilder(t)
	squares, err := b.ToSquares(sampleDetections()[:2])
	require.NoError(t, err)

	fc, err := FeatureCollection(squares, confidence.Categorical{})
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	props := fc.Features[0].Properties
	assert.Equal(t, "orange", props["color"])
	assert.Equal(t, "nominal", props["bucket"])
	assert.Equal(t, "01:30", props["acq_time"])
	assert.Equal(t, 0, props["id"])

	_, err = FeatureCollection(squares, confidence.Discrete{})
	assert.ErrorIs(t, err, errs.ErrClassification)
}

func TestFind(t *testing.T) {
	b := newBuilder(t)
	squares, err := b.ToSquares(sampleDetections())
	require.NoError(t, err)

	sq, ok := Find(squares, orb.Point{-47.9305, -15.7805})
	require.True(t, ok)
	assert.Equal(t, 1, sq.Detection.ID)

	_, ok = Find(squares, orb.Point{0, 0})
	assert.False(t, ok)
}
