package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/paulmach/orb/geojson"
)

var registerDrivers sync.Once

// writeShapefile converts the collection through a temporary GeoJSON file
// with GDAL's vector translate.
func writeShapefile(fc *geojson.FeatureCollection, dir string) error {
	registerDrivers.Do(godal.RegisterAll)

	tmp, err := os.CreateTemp(dir, "alerts-*.geojson")
	if err != nil {
		return fmt.Errorf("failed to create temp geojson: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	data, err := fc.MarshalJSON()
	if err != nil {
		tmp.Close()
		return fmt.Errorf("failed to marshal geojson: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp geojson: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp geojson: %w", err)
	}

	src, err := godal.Open(tmpName, godal.VectorOnly())
	if err != nil {
		return fmt.Errorf("failed to open geojson with gdal: %w", err)
	}
	defer src.Close()

	dst, err := src.VectorTranslate(filepath.Join(dir, ShapefileFile), []string{
		"-f", "ESRI Shapefile",
		"-nln", "alerts",
		"-lco", "ENCODING=UTF-8",
	})
	if err != nil {
		return fmt.Errorf("failed to translate to shapefile: %w", err)
	}
	return dst.Close()
}
