package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/firms"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/planet"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/session"
)

var (
	imageryOpts  fetchFlags
	imageryAlert int
	imageryPoint string
	imageryDays  []int
	imageryMax   int
	imageryCloud int
	imageryRule  string
)

func parseLonLat(s string) (orb.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return orb.Point{}, fmt.Errorf("point must be lon,lat, got %q", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid longitude: %w", err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid latitude: %w", err)
	}
	return orb.Point{lon, lat}, nil
}

func imageryParams(cmd *cobra.Command, s *session.Session) error {
	p := s.ImageryParams()
	if cmd.Flags().Changed("days") {
		if len(imageryDays) != 2 {
			return fmt.Errorf("--days takes before,after")
		}
		p.DaysBefore, p.DaysAfter = imageryDays[0], imageryDays[1]
	}
	if cmd.Flags().Changed("max-images") {
		p.MaxImages = imageryMax
	}
	if cmd.Flags().Changed("cloud-cover") {
		p.CloudCover = imageryCloud
	}
	if imageryRule != "" {
		policy, err := planet.ParseDayPolicy(imageryRule)
		if err != nil {
			return err
		}
		p.Policy = policy
	}
	return s.SetImageryParams(p)
}

var imageryCmd = &cobra.Command{
	Use:   "imagery",
	Short: "Find Planet scenes around one fire alert",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeApp, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer closeApp()

		if _, err := imageryOpts.run(cmd.Context(), app); err != nil {
			return err
		}
		if err := imageryParams(cmd, app.Session); err != nil {
			return err
		}

		var d firms.Detection
		switch {
		case imageryPoint != "":
			pt, err := parseLonLat(imageryPoint)
			if err != nil {
				return err
			}
			if d, err = app.Session.SelectAt(pt); err != nil {
				return err
			}
		case imageryAlert >= 0:
			if d, err = app.Session.SelectAlert(imageryAlert); err != nil {
				return err
			}
			app.Session.SetClick(d.Point())
		default:
			return fmt.Errorf("--alert or --point is required")
		}

		res, layers, err := app.Imagery.Search(cmd.Context(), app.Planet)
		if err != nil {
			return err
		}
		fmt.Printf("alert %d (%s %s): %s match\n", d.ID, d.AcqDate, d.FormattedTime(), res.Status)
		for _, l := range layers {
			fmt.Printf("  %s %s %s cloud %.0f%%\n    %s\n", l.Date, l.ItemType, l.AssetID, l.CloudCover*100, l.URL)
		}
		return nil
	},
}

func init() {
	imageryOpts.register(imageryCmd)
	imageryCmd.Flags().IntVar(&imageryAlert, "alert", -1, "Alert id to match")
	imageryCmd.Flags().StringVar(&imageryPoint, "point", "", "lon,lat inside the alert footprint")
	imageryCmd.Flags().IntSliceVar(&imageryDays, "days", nil, "Days before,after the alert date")
	imageryCmd.Flags().IntVar(&imageryMax, "max-images", 6, "Maximum number of images")
	imageryCmd.Flags().IntVar(&imageryCloud, "cloud-cover", 20, "Maximum cloud cover in percent")
	imageryCmd.Flags().StringVar(&imageryRule, "day-policy", "", "Earlier days image rule: best or legacy")
}
