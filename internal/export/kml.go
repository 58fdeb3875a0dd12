package export

import (
	"fmt"
	"image/color"
	"os"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	kml "github.com/twpayne/go-kml/v2"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/properties"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/session"
)

func styleID(colorName string) string {
	return "alert-" + colorName
}

func kmlColor(name string, alpha uint8) color.Color {
	c, ok := properties.ColorMap[name]
	if !ok {
		c = properties.ColorMap["unknown"]
	}
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: alpha}
}

func coordinates(ring orb.Ring) []kml.Coordinate {
	out := make([]kml.Coordinate, len(ring))
	for i, p := range ring {
		out[i] = kml.Coordinate{Lon: p.Lon(), Lat: p.Lat()}
	}
	return out
}

func placemarkGeometry(g orb.Geometry) (kml.Element, error) {
	switch g := g.(type) {
	case orb.Polygon:
		if len(g) == 0 {
			return nil, fmt.Errorf("empty polygon")
		}
		return kml.Polygon(kml.OuterBoundaryIs(kml.LinearRing(kml.Coordinates(coordinates(g[0])...)))), nil
	case orb.Point:
		return kml.Point(kml.Coordinates(kml.Coordinate{Lon: g.Lon(), Lat: g.Lat()})), nil
	default:
		return nil, fmt.Errorf("unsupported geometry %s", g.GeoJSONType())
	}
}

func writeKML(fc *geojson.FeatureCollection, set *session.AlertSet, path string) error {
	colors := map[string]bool{}
	for _, f := range fc.Features {
		colors[f.Properties.MustString("color", "unknown")] = true
	}
	names := make([]string, 0, len(colors))
	for name := range colors {
		names = append(names, name)
	}
	sort.Strings(names)

	children := []kml.Element{kml.Name(fmt.Sprintf("%s alerts, %s", set.SatSource, set.AOIName))}
	for _, name := range names {
		children = append(children, kml.SharedStyle(styleID(name),
			kml.LineStyle(kml.Color(kmlColor(name, 0xff)), kml.Width(1)),
			kml.PolyStyle(kml.Color(kmlColor(name, 0x99))),
			kml.IconStyle(kml.Color(kmlColor(name, 0xff))),
		))
	}

	for _, f := range fc.Features {
		geom, err := placemarkGeometry(f.Geometry)
		if err != nil {
			return err
		}
		p := f.Properties
		desc := fmt.Sprintf("%s %s UTC, confidence %s (%s), reviewed %q, %s",
			p.MustString("acq_date", ""),
			p.MustString("acq_time", ""),
			p.MustString("confidence", ""),
			p.MustString("bucket", ""),
			p.MustString("reviewed", ""),
			p.MustString("observ", ""),
		)
		children = append(children, kml.Placemark(
			kml.Name(fmt.Sprintf("Alert %v", f.ID)),
			kml.Description(desc),
			kml.StyleURL("#"+styleID(p.MustString("color", "unknown"))),
			geom,
		))
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := kml.KML(kml.Document(children...)).WriteIndent(file, "", "  "); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode kml: %w", err)
	}
	return file.Close()
}
