// Package export writes a fetched alert set to a result directory as
// GeoJSON, ESRI Shapefile, KML and a PNG preview.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/firms"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/footprint"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/logger"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/session"
)

const (
	GeoJSONFile   = "alerts.geojson"
	ShapefileFile = "alerts.shp"
	KMLFile       = "alerts.kml"
	PreviewFile   = "preview.png"
)

type Format string

const (
	FormatGeoJSON   Format = "geojson"
	FormatShapefile Format = "shapefile"
	FormatKML       Format = "kml"
	FormatPreview   Format = "preview"
)

var AllFormats = []Format{FormatGeoJSON, FormatShapefile, FormatKML, FormatPreview}

type Writer struct {
	root    string
	formats []Format
	now     func() time.Time
}

func NewWriter(root string, formats ...Format) *Writer {
	if len(formats) == 0 {
		formats = AllFormats
	}
	return &Writer{root: root, formats: formats, now: time.Now}
}

func (w *Writer) Root() string { return w.root }

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9\-]+`)

func sanitize(s string) string {
	return strings.Trim(unsafeChars.ReplaceAllString(s, "_"), "_")
}

// DirName is {timestamp}_{sensor}_{aoi_or_draw}_{date_range}.
func DirName(set *session.AlertSet, at time.Time) string {
	req := set.Request
	var dates string
	switch req.Mode {
	case firms.ModeRange, firms.ModeHistoric:
		dates = req.StartDate.Format("2006-01-02") + "_" + req.EndDate.Format("2006-01-02")
	default:
		dates = sanitize(req.Offset)
	}
	name := set.AOIName
	if name == "" {
		name = "draw"
	}
	return strings.Join([]string{
		at.Format("20060102-150405"),
		string(set.SatSource),
		sanitize(name),
		dates,
	}, "_")
}

// Write creates the result directory of set and returns its path.
func (w *Writer) Write(set *session.AlertSet) (string, error) {
	if set == nil || set.Len() == 0 {
		return "", fmt.Errorf("no alerts to export")
	}

	dir := filepath.Join(w.root, DirName(set, w.now()))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create result directory: %w", err)
	}

	fc, err := Features(set)
	if err != nil {
		return "", err
	}

	for _, f := range w.formats {
		switch f {
		case FormatGeoJSON:
			err = writeGeoJSON(fc, filepath.Join(dir, GeoJSONFile))
		case FormatShapefile:
			err = writeShapefile(fc, dir)
		case FormatKML:
			err = writeKML(fc, set, filepath.Join(dir, KMLFile))
		case FormatPreview:
			err = writePreview(fc, set.Scheme, filepath.Join(dir, PreviewFile))
		default:
			err = fmt.Errorf("unknown export format %q", f)
		}
		if err != nil {
			return "", fmt.Errorf("failed to write %s: %w", f, err)
		}
	}

	logger.Infof("%d alerts exported to %s", set.Len(), dir)
	return dir, nil
}

// Features renders the set footprints, or plain points when the set was
// too large to be squared.
func Features(set *session.AlertSet) (*geojson.FeatureCollection, error) {
	if len(set.Squares) > 0 {
		return footprint.FeatureCollection(set.Squares, set.Scheme)
	}
	fc := geojson.NewFeatureCollection()
	for _, d := range set.Detections {
		f, err := footprint.Feature(footprint.Square{Detection: d}, set.Scheme)
		if err != nil {
			return nil, err
		}
		f.Geometry = d.Point()
		fc.Append(f)
	}
	return fc, nil
}

func writeGeoJSON(fc *geojson.FeatureCollection, path string) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal geojson: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
