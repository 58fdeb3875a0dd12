package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/confidence"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/firms"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/session"
)

const listLimit = 50

func (a *App) FetchAlerts(ctx context.Context) error {
	if a.Session.AOI() == nil {
		return fmt.Errorf("select an area of interest first")
	}

	names := make([]string, len(firms.SatSources))
	for i, s := range firms.SatSources {
		names[i] = string(s)
	}
	i, err := Choose("Satellite sources", names)
	if err != nil {
		return err
	}
	params := session.FetchParams{SatSource: firms.SatSources[i], APIKey: a.FirmsKey}

	modes := []firms.Mode{firms.ModeRecent, firms.ModeRange, firms.ModeHistoric}
	m, err := Choose("Time span", []string{"Recent hours", "Date range (up to 10 days)", "Historic years"})
	if err != nil {
		return err
	}
	params.Mode = modes[m]

	switch params.Mode {
	case firms.ModeRecent:
		params.Offset = ReadDefault("Enter the offset (24 hours, 48 hours, 7 days)", a.Config.Firms.DefaultOffset)
	default:
		params.StartDate, params.EndDate, err = ReadDateRange()
		if err != nil {
			return err
		}
	}

	set, err := a.Pipeline.Run(ctx, params)
	if session.IsOverload(err) {
		PrintWarning(fmt.Sprintf("%v. Alerts are kept for export but not drawn, narrow the area or the dates.", err))
		return nil
	}
	if err != nil {
		return err
	}
	PrintSuccess(fmt.Sprintf("%d alerts loaded in %s (batch %s)", set.Len(), set.AOIName, set.BatchID))
	return printCounts(set)
}

func printCounts(set *session.AlertSet) error {
	counts, err := confidence.Counts(set.Detections, set.Scheme)
	if err != nil {
		return err
	}
	for _, c := range counts {
		fmt.Fprintf(out, "  %-8s %-7s %d\n", c.Bucket.Label, c.Bucket.Color, c.Count)
	}
	return nil
}

func printDetections(dets []firms.Detection) {
	fmt.Fprintf(out, "%s%6s  %-10s %-5s %9s %10s  %-10s %-8s%s\n", ColorGreen, "id", "date", "time", "lat", "lon", "confidence", "reviewed", ColorReset)
	for i, d := range dets {
		if i == listLimit {
			fmt.Fprintf(out, "... %d more\n", len(dets)-listLimit)
			break
		}
		fmt.Fprintf(out, "%6d  %-10s %-5s %9.4f %10.4f  %-10s %-8s\n",
			d.ID, d.AcqDate, d.FormattedTime(), d.Latitude, d.Longitude, d.Confidence, d.Reviewed)
	}
}

func (a *App) currentAlerts() (*session.AlertSet, error) {
	set := a.Session.Alerts()
	if set == nil || set.Len() == 0 {
		return nil, fmt.Errorf("no alerts loaded, fetch alerts first")
	}
	return set, nil
}

func (a *App) ListAlerts(ctx context.Context) error {
	set, err := a.currentAlerts()
	if err != nil {
		return err
	}
	printDetections(set.Detections)
	return printCounts(set)
}

func (a *App) FilterAlerts(ctx context.Context) error {
	set, err := a.currentAlerts()
	if err != nil {
		return err
	}
	buckets := set.Scheme.Buckets()
	labels := make([]string, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label
	}
	i, err := Choose("Confidence", labels)
	if err != nil {
		return err
	}
	dets, err := a.Session.FilterByConfidence(labels[i])
	if err != nil {
		return err
	}
	printDetections(dets)
	return nil
}

// SelectAlert selects by id or by a clicked location inside a footprint.
func (a *App) SelectAlert(ctx context.Context) error {
	set, err := a.currentAlerts()
	if err != nil {
		return err
	}
	input := ReadString("Enter the alert id, or lon,lat of a point inside it: ")

	var d firms.Detection
	if strings.Contains(input, ",") {
		pt, err := parsePoint(input)
		if err != nil {
			return err
		}
		if d, err = a.Session.SelectAt(pt); err != nil {
			return err
		}
	} else {
		id, err := strconv.Atoi(input)
		if err != nil {
			return fmt.Errorf("invalid alert id: %s", input)
		}
		if d, err = a.Session.SelectAlert(id); err != nil {
			return err
		}
		a.Session.SetClick(d.Point())
	}

	b, err := set.Scheme.Classify(d.Confidence)
	if err != nil {
		return err
	}
	PrintSuccess(fmt.Sprintf("Alert %d selected: %s %s, confidence %s (%s), FRP %.1f",
		d.ID, d.AcqDate, d.FormattedTime(), d.Confidence, b.Label, d.FRP))
	return nil
}

func (a *App) EditMetadata(ctx context.Context) error {
	d, ok := a.Session.Selected()
	if !ok {
		return fmt.Errorf("no alert selected")
	}
	reviewed := ReadDefault("Reviewed (yes/no)", d.Reviewed)
	observ := ReadDefault("Observation", d.Observ)
	if err := a.Session.EditMetadata(d.ID, reviewed, observ); err != nil {
		return err
	}
	PrintSuccess(fmt.Sprintf("Alert %d updated", d.ID))
	return nil
}

func (a *App) ExportAlerts(ctx context.Context) error {
	s, err := a.currentAlerts()
	if err != nil {
		return err
	}
	dir, err := a.Exporter.Write(s)
	if err != nil {
		return err
	}
	PrintSuccess(fmt.Sprintf("Alerts exported to %s", dir))
	return nil
}

func (a *App) ShowAvailability(ctx context.Context) error {
	rows, err := a.Firms.Availability(ctx, a.FirmsKey)
	if err != nil {
		return err
	}
	for _, src := range firms.SatSources {
		first, last, err := rows.Bounds(src)
		if err != nil {
			fmt.Fprintf(out, "  %-16s unavailable\n", src)
			continue
		}
		fmt.Fprintf(out, "  %-16s %s to %s\n", src, first.Format("2006-01-02"), last.Format("2006-01-02"))
	}
	return nil
}
