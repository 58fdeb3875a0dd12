package export

import (
	"fmt"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/confidence"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/properties"
)

const (
	previewSize   = 800
	previewMargin = 20
	legendHeight  = 80
)

func setColor(dc *gg.Context, name string) {
	c, ok := properties.ColorMap[name]
	if !ok {
		c = properties.ColorMap["unknown"]
	}
	dc.SetRGB(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
}

// writePreview draws the footprints in a plate carree frame fitted to the
// collection bounds, with a legend of the scheme buckets below.
func writePreview(fc *geojson.FeatureCollection, scheme confidence.Scheme, path string) error {
	if len(fc.Features) == 0 {
		return fmt.Errorf("nothing to draw")
	}
	bound := fc.Features[0].Geometry.Bound()
	for _, f := range fc.Features[1:] {
		bound = bound.Union(f.Geometry.Bound())
	}
	bound = bound.Pad(0.01)

	inner := float64(previewSize - 2*previewMargin)
	var scale float64
	if w, h := bound.Right()-bound.Left(), bound.Top()-bound.Bottom(); w > h {
		scale = inner / w
	} else {
		scale = inner / h
	}
	project := func(p orb.Point) (float64, float64) {
		return previewMargin + (p.Lon()-bound.Left())*scale,
			previewMargin + (bound.Top()-p.Lat())*scale
	}

	dc := gg.NewContext(previewSize, previewSize+legendHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for _, f := range fc.Features {
		setColor(dc, f.Properties.MustString("color", "unknown"))
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			if len(g) == 0 {
				continue
			}
			for i, p := range g[0] {
				x, y := project(p)
				if i == 0 {
					dc.MoveTo(x, y)
				} else {
					dc.LineTo(x, y)
				}
			}
			dc.ClosePath()
			// keep single pixel squares visible at country scale
			dc.FillPreserve()
			dc.SetLineWidth(1)
			dc.Stroke()
		case orb.Point:
			x, y := project(g)
			dc.DrawCircle(x, y, 2)
			dc.Fill()
		}
	}

	dc.SetRGB(0, 0, 0)
	dc.DrawRectangle(previewMargin, previewMargin, inner, inner)
	dc.SetLineWidth(1)
	dc.Stroke()

	legendY := previewSize + 10
	legendX := previewMargin
	for i, b := range scheme.Buckets() {
		y := float64(legendY + i*20)

		setColor(dc, b.Color)
		dc.DrawRectangle(float64(legendX), y, 15, 15)
		dc.Fill()

		dc.SetRGB(0, 0, 0)
		dc.DrawRectangle(float64(legendX), y, 15, 15)
		dc.Stroke()
		dc.DrawStringAnchored(b.Label, float64(legendX+20), y+7, 0, 0.5)
	}
	dc.DrawStringAnchored(fmt.Sprintf("%d alerts", len(fc.Features)), previewSize-previewMargin, float64(legendY+7), 1, 0.5)

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}
