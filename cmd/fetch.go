package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/aoi"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/confidence"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/export"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/firms"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/logger"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/notification"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/session"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/ui"
)

type fetchFlags struct {
	country  string
	aoiFile  string
	source   string
	offset   string
	start    string
	end      string
	historic bool
}

func (f *fetchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.country, "country", "", "Country used as area of interest")
	cmd.Flags().StringVar(&f.aoiFile, "aoi", "", "GeoJSON file with a drawn area of interest")
	cmd.Flags().StringVar(&f.source, "source", "", "Satellite source (modis_nrt, viirs_noaa_nrt, viirs_snpp_nrt, modis_sp, viirs_noaa_sp, viirs_snpp_sp)")
	cmd.Flags().StringVar(&f.offset, "offset", "", "Recent offset, e.g. '24 hours' or '7 days'")
	cmd.Flags().StringVar(&f.start, "start", "", "Start date YYYY-MM-DD")
	cmd.Flags().StringVar(&f.end, "end", "", "End date YYYY-MM-DD (defaults to the start date)")
	cmd.Flags().BoolVar(&f.historic, "historic", false, "Read the yearly country archives instead of the area API")
}

func (f *fetchFlags) setAOI(s *session.Session) error {
	switch {
	case f.aoiFile != "":
		data, err := os.ReadFile(f.aoiFile)
		if err != nil {
			return fmt.Errorf("error reading %s: %w", f.aoiFile, err)
		}
		area, err := aoi.FromGeoJSON(aoi.DrawName, data)
		if err != nil {
			return err
		}
		s.SetAOI(area)
		return nil
	case f.country != "":
		_, err := s.SelectCountry(f.country)
		return err
	}
	return fmt.Errorf("--country or --aoi is required")
}

func (f *fetchFlags) params(app *ui.App) (session.FetchParams, error) {
	src := f.source
	if src == "" {
		src = app.Config.Firms.DefaultSource
	}
	source, err := firms.ParseSatSource(src)
	if err != nil {
		return session.FetchParams{}, err
	}
	p := session.FetchParams{SatSource: source, APIKey: app.FirmsKey}

	if f.start == "" {
		if f.historic {
			return p, fmt.Errorf("--historic needs --start")
		}
		p.Mode = firms.ModeRecent
		p.Offset = f.offset
		if p.Offset == "" {
			p.Offset = app.Config.Firms.DefaultOffset
		}
		return p, nil
	}

	if p.StartDate, err = time.Parse("2006-01-02", f.start); err != nil {
		return p, fmt.Errorf("invalid --start: %w", err)
	}
	p.EndDate = p.StartDate
	if f.end != "" {
		if p.EndDate, err = time.Parse("2006-01-02", f.end); err != nil {
			return p, fmt.Errorf("invalid --end: %w", err)
		}
	}
	p.Mode = firms.ModeRange
	if f.historic {
		p.Mode = firms.ModeHistoric
	}
	return p, nil
}

// run installs the area and the alert set. An overloaded set is reported
// but still returned so it can be exported.
func (f *fetchFlags) run(ctx context.Context, app *ui.App) (*session.AlertSet, error) {
	if err := f.setAOI(app.Session); err != nil {
		return nil, err
	}
	params, err := f.params(app)
	if err != nil {
		return nil, err
	}
	set, err := app.Pipeline.Run(ctx, params)
	if session.IsOverload(err) {
		ui.PrintWarning(err.Error())
		return set, nil
	}
	return set, err
}

var (
	fetchOpts     fetchFlags
	exportFormats []string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch fire alerts over an area and export them",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeApp, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer closeApp()

		set, err := fetchOpts.run(cmd.Context(), app)
		if err != nil {
			return err
		}
		counts, err := confidence.Counts(set.Detections, set.Scheme)
		if err != nil {
			return err
		}
		fmt.Printf("%d alerts in %s from %s\n", set.Len(), set.AOIName, set.SatSource)
		for _, c := range counts {
			fmt.Printf("  %-8s %d\n", c.Bucket.Label, c.Count)
		}
		if set.Len() == 0 || len(exportFormats) == 0 {
			return nil
		}

		formats := make([]export.Format, 0, len(exportFormats))
		for _, name := range exportFormats {
			formats = append(formats, export.Format(strings.ToLower(name)))
		}
		app.Exporter = export.NewWriter(app.Exporter.Root(), formats...)
		dir, err := app.Exporter.Write(set)
		if err != nil {
			return err
		}
		ui.PrintSuccess(fmt.Sprintf("Alerts exported to %s", dir))
		if err := notification.SendDiscordSuccessNotification(fmt.Sprintf("%d %s alerts in %s exported to %s", set.Len(), set.SatSource, set.AOIName, dir)); err != nil {
			logger.Warnf("failed to send success notification: %v", err)
		}
		return nil
	},
}

func init() {
	fetchOpts.register(fetchCmd)
	fetchCmd.Flags().StringSliceVar(&exportFormats, "export", []string{"geojson", "shapefile", "kml", "preview"}, "Export formats, empty to skip")
}
