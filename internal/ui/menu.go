package ui

import (
	"context"
	"fmt"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/config"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/export"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/firms"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/planet"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/session"
)

// App bundles what the interactive menu drives.
type App struct {
	Config   *config.Config
	Session  *session.Session
	Pipeline *session.Pipeline
	Imagery  *session.Imagery
	Firms    *firms.Client
	Exporter *export.Writer
	FirmsKey string
	Planet   planet.Credentials
}

type menuOption struct {
	title   string
	handler func(ctx context.Context) error
}

// ShowMenu displays the main menu and handles user input until exit
func (a *App) ShowMenu(ctx context.Context) {
	menuOptions := []menuOption{
		{"Select the area of interest from a country", a.SelectCountry},
		{"Load the area of interest from a GeoJSON file", a.LoadDrawing},
		{"Fetch fire alerts", a.FetchAlerts},
		{"List the current alerts", a.ListAlerts},
		{"Filter the alerts by confidence", a.FilterAlerts},
		{"Select an alert", a.SelectAlert},
		{"Review the selected alert", a.EditMetadata},
		{"Set the imagery parameters", a.SetImageryParams},
		{"Search Planet imagery for the selected alert", a.SearchImagery},
		{"Export the current alerts", a.ExportAlerts},
		{"Show FIRMS data availability", a.ShowAvailability},
	}

	for {
		fmt.Fprintln(out, ColorBlue+"==================="+ColorReset)
		for i, opt := range menuOptions {
			fmt.Fprintf(out, "%s%d. %s%s\n", ColorBlue, i+1, opt.title, ColorReset)
		}
		fmt.Fprintf(out, "%s%d. Exit the application%s\n", ColorBlue, len(menuOptions)+1, ColorReset)

		choice, err := ReadInt("Please enter your choice: ", 1, len(menuOptions)+1)
		if err != nil {
			if inputClosed {
				return
			}
			PrintError(err.Error())
			continue
		}
		if choice == len(menuOptions)+1 {
			fmt.Fprintln(out, "Exiting...")
			return
		}

		if err := menuOptions[choice-1].handler(ctx); err != nil {
			PrintError(err.Error())
		}
		if ctx.Err() != nil {
			return
		}
	}
}
