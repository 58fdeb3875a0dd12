package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/aoi"
)

func (a *App) SelectCountry(ctx context.Context) error {
	countries := a.Session.Countries()
	if countries == nil {
		return fmt.Errorf("no country boundaries loaded")
	}

	query := strings.ToLower(ReadString("Enter part of the country name: "))
	var matches []string
	for _, name := range countries.Names() {
		if strings.Contains(strings.ToLower(name), query) {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return fmt.Errorf("no country matches %q", query)
	}

	i, err := Choose("Matching countries", matches)
	if err != nil {
		return err
	}
	area, err := a.Session.SelectCountry(matches[i])
	if err != nil {
		return err
	}
	PrintSuccess(fmt.Sprintf("Area of interest set to %s", area.Name))
	return nil
}

// LoadDrawing uses a hand drawn GeoJSON polygon as area of interest.
func (a *App) LoadDrawing(ctx context.Context) error {
	path := ReadString("Enter the GeoJSON file path: ")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	area, err := aoi.FromGeoJSON(aoi.DrawName, data)
	if err != nil {
		return err
	}
	a.Session.SetAOI(area)
	PrintSuccess(fmt.Sprintf("Area of interest loaded from %s", filepath.Base(path)))
	return nil
}
