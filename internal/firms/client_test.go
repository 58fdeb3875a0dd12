package firms

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/cache"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/config"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/errs"
)

const viirsCSV = `latitude,longitude,bright_ti4,scan,track,acq_date,acq_time,satellite,instrument,confidence,version,bright_ti5,frp,daynight
4.61,-74.08,330.1,0.39,0.36,2024-03-10,130,N,VIIRS,n,2.0NRT,290.2,3.4,N
5.02,-73.50,345.7,0.41,0.37,2024-03-10,1842,N,VIIRS,h,2.0NRT,295.0,12.9,D
`

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	cfg := config.DefaultConfig().Firms
	cfg.APIBase = srv.URL + "/api"
	cfg.HistoricBase = srv.URL + "/zips"
	dir := t.TempDir()
	return NewClient(cfg,
		WithHTTPClient(srv.Client()),
		WithHistoricDir(dir+"/historical"),
		WithAvailabilityCache(cache.NewFileCache[[]Availability](dir+"/availability", 24*time.Hour)),
	)
}

func testBounds() orb.Bound {
	return orb.Bound{Min: orb.Point{-74.9, -4.2}, Max: orb.Point{-66.1, 12.7}}
}

func TestParseOffset(t *testing.T) {
	var got []int
	for _, s := range []string{"24 hours", "48 hours", "3 days"} {
		n, err := ParseOffset(s)
		require.NoError(t, err)
		got = append(got, n)
	}
	assert.Equal(t, []int{1, 2, 3}, got)

	_, err := ParseOffset("soon")
	assert.Error(t, err)
}

func TestFetch_RangeErrorBeforeNetwork(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()
	c := newTestClient(t, srv)

	for _, mode := range []Mode{ModeRange, ModeHistoric} {
		_, err := c.Fetch(context.Background(), Request{
			SatSource: ModisSP,
			Mode:      mode,
			StartDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			APIKey:    "KEY",
		})
		assert.ErrorIs(t, err, errs.ErrRange, string(mode))
	}
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestFetch_Recent(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		fmt.Fprint(w, viirsCSV)
	}))
	defer srv.Close()
	c := newTestClient(t, srv)

	rows, err := c.Fetch(context.Background(), Request{
		SatSource: ViirsSnppNRT,
		Mode:      ModeRecent,
		Offset:    "48 hours",
		Bounds:    testBounds(),
		APIKey:    "KEY",
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/area/csv/KEY/VIIRS_SNPP_NRT/-74,-4,-66,12/2", path)

	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].ID)
	assert.Equal(t, 1, rows[1].ID)
	assert.Equal(t, ViirsSnppNRT, rows[0].SatSource)
	assert.Equal(t, "01:30", rows[0].FormattedTime())
	assert.Equal(t, "18:42", rows[1].FormattedTime())
	assert.Equal(t, "h", rows[1].Confidence)
	assert.InDelta(t, 330.1, rows[0].Bright(), 1e-9)
	assert.Equal(t, orb.Point{-74.08, 4.61}, rows[0].Point())
	assert.Empty(t, rows[0].Reviewed)
}

func TestFetch_RangeURL(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		fmt.Fprint(w, viirsCSV)
	}))
	defer srv.Close()
	c := newTestClient(t, srv)

	_, err := c.Fetch(context.Background(), Request{
		SatSource: ModisNRT,
		Mode:      ModeRange,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		Bounds:    testBounds(),
		APIKey:    "KEY",
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/area/csv/KEY/MODIS_NRT/-74,-4,-66,12/3/2024-01-01", path)

	_, err = c.Fetch(context.Background(), Request{
		SatSource: ModisNRT,
		Mode:      ModeRange,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		APIKey:    "KEY",
	})
	assert.ErrorIs(t, err, errs.ErrRange)
}

func TestFetch_AuthenticationErrors(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"sentinel body":   {http.StatusOK, "Invalid MAP_KEY.\n"},
		"forbidden":       {http.StatusForbidden, "nope"},
		"unauthorized":    {http.StatusUnauthorized, ""},
		"error text body": {http.StatusOK, "Invalid MAP_KEY: please request a new MAP_KEY"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}))
			defer srv.Close()
			c := newTestClient(t, srv)

			_, err := c.Fetch(context.Background(), Request{
				SatSource: ViirsSnppNRT,
				Offset:    "24 hours",
				Bounds:    testBounds(),
				APIKey:    "BAD",
			})
			assert.ErrorIs(t, err, errs.ErrAuthentication)
		})
	}
}

func TestFetch_PlainTextErrorBodies(t *testing.T) {
	for _, body := range []string{
		"Invalid area coordinates.",
		"Invalid source.",
		"Exceeding allowed transaction limit.",
	} {
		t.Run(body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, body)
			}))
			defer srv.Close()
			c := newTestClient(t, srv)

			rows, err := c.Fetch(context.Background(), Request{
				SatSource: ViirsSnppNRT,
				Offset:    "24 hours",
				Bounds:    testBounds(),
				APIKey:    "KEY",
			})
			require.Error(t, err)
			assert.Nil(t, rows)
			assert.Contains(t, err.Error(), body)
			assert.False(t, errors.Is(err, errs.ErrAuthentication))
		})
	}
}

func TestFetch_EmptyBodyIsNoAlerts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	rows, err := newTestClient(t, srv).Fetch(context.Background(), Request{
		SatSource: ViirsSnppNRT,
		Offset:    "24 hours",
		Bounds:    testBounds(),
		APIKey:    "KEY",
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFetch_MissingKey(t *testing.T) {
	t.Setenv("FIRMS_API_KEY", "")
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()
	c := newTestClient(t, srv)

	_, err := c.Fetch(context.Background(), Request{SatSource: ModisNRT, Offset: "24 hours"})
	assert.ErrorIs(t, err, errs.ErrAuthentication)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestFetch_EnvKeyFallback(t *testing.T) {
	t.Setenv("FIRMS_API_KEY", "ENVKEY")
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		fmt.Fprint(w, viirsCSV)
	}))
	defer srv.Close()
	c := newTestClient(t, srv)

	_, err := c.Fetch(context.Background(), Request{SatSource: ModisNRT, Offset: "24 hours", Bounds: testBounds()})
	require.NoError(t, err)
	assert.True(t, strings.Contains(path, "/ENVKEY/"))
}

func TestFetch_UnknownSource(t *testing.T) {
	c := NewClient(config.DefaultConfig().Firms)
	_, err := c.Fetch(context.Background(), Request{SatSource: "goes", APIKey: "KEY"})
	assert.ErrorIs(t, err, errs.ErrClassification)
}

func yearArchive(t *testing.T, rows map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range rows {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	w, err := zw.Create("readme.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("not a csv"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestFetch_Historic(t *testing.T) {
	header := "latitude,longitude,brightness,acq_date,acq_time,confidence\n"
	archives := map[string][]byte{
		"/zips/modis_2023_all_countries.zip": yearArchive(t, map[string]string{
			"modis_2023_Colombia.csv": header +
				"4.1,-74.1,310,2023-12-29,0100,80\n" +
				"4.2,-74.2,311,2023-12-30,0200,55\n" +
				"4.3,-74.3,312,2023-12-31,0300,29\n",
		}),
		"/zips/modis_2024_all_countries.zip": yearArchive(t, map[string]string{
			"modis_2024_Colombia.csv": header +
				"4.4,-74.4,313,2024-01-01,0400,90\n" +
				"4.5,-74.5,314,2024-01-03,0500,50\n",
		}),
	}

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		data, ok := archives[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	var lastRead int64
	cfg := config.DefaultConfig().Firms
	cfg.APIBase = srv.URL + "/api"
	cfg.HistoricBase = srv.URL + "/zips"
	dir := t.TempDir()
	c := NewClient(cfg,
		WithHTTPClient(srv.Client()),
		WithHistoricDir(dir),
		WithProgress(func(read, total int64) { atomic.StoreInt64(&lastRead, read) }),
	)

	req := Request{
		SatSource: ModisSP,
		Mode:      ModeHistoric,
		StartDate: time.Date(2023, 12, 30, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	rows, err := c.Fetch(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "2023-12-30", rows[0].AcqDate)
	assert.Equal(t, "2023-12-31", rows[1].AcqDate)
	assert.Equal(t, "2024-01-01", rows[2].AcqDate)
	assert.Equal(t, 2, rows[2].ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.Positive(t, atomic.LoadInt64(&lastRead))

	_, err = os.Stat(c.ArchivePath("modis", 2023))
	assert.NoError(t, err)

	again, err := c.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, rows, again)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "cached archives are not downloaded again")
}

func TestFetch_HistoricMissingArchive(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	c := newTestClient(t, srv)

	_, err := c.Fetch(context.Background(), Request{
		SatSource: ModisSP,
		Mode:      ModeHistoric,
		StartDate: time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2001, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.False(t, errors.Is(err, errs.ErrAuthentication))

	_, statErr := os.Stat(c.ArchivePath("modis", 2001))
	assert.True(t, os.IsNotExist(statErr))
}

func TestAvailability(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/api/data_availability/csv/KEY/ALL", r.URL.Path)
		fmt.Fprint(w, "data_id,min_date,max_date\nMODIS_NRT,2024-01-01,2024-03-10\nVIIRS_SNPP_NRT,2024-01-05,2024-03-11\n")
	}))
	defer srv.Close()
	c := newTestClient(t, srv)

	rows, err := c.Availability(context.Background(), "KEY")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first, last, err := rows.Bounds(ViirsSnppNRT)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), first)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), last)

	_, _, err = rows.Bounds(ModisSP)
	assert.Error(t, err)

	_, err = c.Availability(context.Background(), "KEY")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}
