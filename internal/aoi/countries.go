package aoi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/logger"
)

// Countries is the read-only registry of country boundaries.
type Countries struct {
	byName map[string]orb.MultiPolygon
	names  []string
}

// LoadCountries reads a world countries FeatureCollection keyed by the "name" property.
func LoadCountries(r io.Reader) (*Countries, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read countries: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse countries: %w", err)
	}

	c := &Countries{byName: make(map[string]orb.MultiPolygon, len(fc.Features))}
	for _, f := range fc.Features {
		name := f.Properties.MustString("name", "")
		if name == "" {
			continue
		}
		mp := appendPolygons(c.byName[name], f.Geometry)
		if len(mp) == 0 {
			continue
		}
		if _, seen := c.byName[name]; !seen {
			c.names = append(c.names, name)
		}
		c.byName[name] = mp
	}
	sort.Strings(c.names)
	return c, nil
}

// LoadCountriesFile reads the countries file at path, downloading it from url first when missing.
func LoadCountriesFile(ctx context.Context, hc *http.Client, path, url string) (*Countries, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := download(ctx, hc, path, url); err != nil {
			return nil, err
		}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open countries: %w", err)
	}
	defer f.Close()
	return LoadCountries(f)
}

func download(ctx context.Context, hc *http.Client, path, url string) error {
	logger.Infof("downloading country boundaries from %s", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download countries: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download countries: status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	tmp := path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create countries file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write countries file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close countries file: %w", err)
	}
	return os.Rename(tmp, path)
}

// Names lists the countries in alphabetical order.
func (c *Countries) Names() []string {
	return append([]string(nil), c.names...)
}

func (c *Countries) AOI(name string) (*AOI, error) {
	mp, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown country %q", name)
	}
	return New(name, mp)
}
