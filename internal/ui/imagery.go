package ui

import (
	"context"
	"fmt"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/planet"
)

func (a *App) SetImageryParams(ctx context.Context) error {
	p := a.Session.ImageryParams()
	var err error
	if p.CloudCover, err = ReadIntDefault("Maximum cloud cover (%)", p.CloudCover, 0, 100); err != nil {
		return err
	}
	if p.DaysBefore, err = ReadIntDefault("Days before the alert", p.DaysBefore, 0, 5); err != nil {
		return err
	}
	if p.DaysAfter, err = ReadIntDefault("Days after the alert", p.DaysAfter, 0, 5); err != nil {
		return err
	}
	if p.MaxImages, err = ReadIntDefault("Maximum number of images", p.MaxImages, 1, 6); err != nil {
		return err
	}
	if p.Policy, err = planet.ParseDayPolicy(ReadDefault("Image per earlier day (best, legacy)", string(p.Policy))); err != nil {
		return err
	}
	return a.Session.SetImageryParams(p)
}

func (a *App) credentials() planet.Credentials {
	if a.Planet.APIKey == "" {
		a.Planet.APIKey = ReadString("Enter your Planet API key (tiles need one): ")
	}
	return a.Planet
}

func (a *App) SearchImagery(ctx context.Context) error {
	res, added, err := a.Imagery.Search(ctx, a.credentials())
	if err != nil {
		return err
	}
	switch res.Status {
	case planet.StatusNone:
		PrintWarning("No Planet image matches the alert, try widening the dates or the cloud cover.")
		return nil
	case planet.StatusOne:
		PrintSuccess("One Planet image found")
	default:
		PrintSuccess(fmt.Sprintf("%d Planet images found", len(res.Items)))
	}
	for _, it := range res.Items {
		fmt.Fprintf(out, "  %-12s %-28s %s cloud %.0f%%\n", it.ItemType, it.ID, it.Acquired.Format("2006-01-02 15:04"), it.CloudCover*100)
	}
	if len(added) > 0 {
		fmt.Fprintln(out, ColorGreen+"New layers:"+ColorReset)
		for _, l := range added {
			fmt.Fprintf(out, "  %s\n", l.URL)
		}
	}
	fmt.Fprintf(out, "%d layers on the map\n", len(a.Session.Layers().List()))
	return nil
}
