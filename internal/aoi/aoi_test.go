package aoi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/errs"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/firms"
)

const drawn = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}},
    {"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [[[20,20],[30,20],[30,30],[20,30],[20,20]]]}},
    {"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [50,50]}}
  ]
}`

const world = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "COL", "properties": {"name": "Colombia"}, "geometry": {"type": "Polygon", "coordinates": [[[-79,-4],[-67,-4],[-67,12],[-79,12],[-79,-4]]]}},
    {"type": "Feature", "id": "BRA", "properties": {"name": "Brazil"}, "geometry": {"type": "MultiPolygon", "coordinates": [[[[-74,-33],[-35,-33],[-35,5],[-74,5],[-74,-33]]]]}}
  ]
}`

func detections(points ...orb.Point) []firms.Detection {
	out := make([]firms.Detection, len(points))
	for i, p := range points {
		out[i] = firms.Detection{ID: i, Longitude: p.Lon(), Latitude: p.Lat()}
	}
	return out
}

func ids(dets []firms.Detection) []int {
	out := make([]int, len(dets))
	for i, d := range dets {
		out[i] = d.ID
	}
	return out
}

func TestFromGeoJSON(t *testing.T) {
	a, err := FromGeoJSON("", []byte(drawn))
	require.NoError(t, err)
	assert.Equal(t, DrawName, a.Name)
	assert.Len(t, a.Geometry(), 2, "points are not part of the clip geometry")
	assert.Equal(t, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{30, 30}}, a.Bound())

	single, err := FromGeoJSON("x", []byte(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`))
	require.NoError(t, err)
	assert.Len(t, single.Geometry(), 1)

	_, err = FromGeoJSON("x", []byte(`{"type":"Point","coordinates":[1,1]}`))
	assert.ErrorIs(t, err, errs.ErrNoAoi)

	_, err = FromGeoJSON("x", []byte(`not json`))
	assert.Error(t, err)
}

func TestClip_UnionAndOrder(t *testing.T) {
	a, err := FromGeoJSON("draw", []byte(drawn))
	require.NoError(t, err)

	dets := detections(
		orb.Point{25, 25}, // second polygon
		orb.Point{40, 40}, // outside
		orb.Point{5, 5},   // first polygon
		orb.Point{10, 3},  // on the boundary
		orb.Point{50, 50}, // only the ignored point feature
	)

	clipped, err := Clip(dets, a)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3}, ids(clipped))
	for _, d := range clipped {
		assert.True(t, a.Contains(d.Point()))
	}

	again, err := Clip(clipped, a)
	require.NoError(t, err)
	assert.Equal(t, clipped, again)
}

func TestClip_NoAoi(t *testing.T) {
	_, err := Clip(detections(orb.Point{1, 1}), nil)
	assert.ErrorIs(t, err, errs.ErrNoAoi)

	_, err = Clip(detections(orb.Point{1, 1}), &AOI{})
	assert.ErrorIs(t, err, errs.ErrNoAoi)
}

func TestAOI_GeometryIsCopied(t *testing.T) {
	mp := orb.MultiPolygon{{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}}
	a, err := New("x", mp)
	require.NoError(t, err)

	mp[0][0][1] = orb.Point{100, 0}
	assert.False(t, a.Contains(orb.Point{50, 0.5}))

	g := a.Geometry()
	g[0][0][1] = orb.Point{100, 0}
	assert.False(t, a.Contains(orb.Point{50, 0.5}))
}

func TestCountries(t *testing.T) {
	c, err := LoadCountries(strings.NewReader(world))
	require.NoError(t, err)
	assert.Equal(t, []string{"Brazil", "Colombia"}, c.Names())

	col, err := c.AOI("Colombia")
	require.NoError(t, err)
	assert.Equal(t, "Colombia", col.Name)
	assert.True(t, col.Contains(orb.Point{-74.08, 4.6}))
	assert.False(t, col.Contains(orb.Point{-47.9, -15.8}))

	_, err = c.AOI("Atlantis")
	assert.Error(t, err)
}

func TestLoadCountriesFile_DownloadsOnce(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, world)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "data", "countries.geo.json")
	for i := 0; i < 2; i++ {
		c, err := LoadCountriesFile(context.Background(), srv.Client(), path, srv.URL)
		require.NoError(t, err)
		assert.Len(t, c.Names(), 2)
	}
	assert.Equal(t, 1, hits)
}
