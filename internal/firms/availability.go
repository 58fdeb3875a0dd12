package firms

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/logger"
)

// Availability is one row of the data availability table.
type Availability struct {
	DataID  string `csv:"data_id" json:"data_id"`
	MinDate string `csv:"min_date" json:"min_date"`
	MaxDate string `csv:"max_date" json:"max_date"`
}

type Availabilities []Availability

// Bounds returns the first and last dates served for a source.
func (a Availabilities) Bounds(source SatSource) (time.Time, time.Time, error) {
	for _, row := range a {
		if row.DataID != source.Code() {
			continue
		}
		first, err := time.Parse(dateLayout, row.MinDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid min_date %q for %s: %w", row.MinDate, row.DataID, err)
		}
		last, err := time.Parse(dateLayout, row.MaxDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid max_date %q for %s: %w", row.MaxDate, row.DataID, err)
		}
		return first, last, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("no availability for %s", source.Code())
}

// Availability fetches the date bounds of every product, reusing today's copy when cached.
func (c *Client) Availability(ctx context.Context, key string) (Availabilities, error) {
	cacheKey := c.availability.GenerateKey("availability", c.now().UTC().Format(dateLayout))
	if rows, ok := c.availability.Get(cacheKey); ok {
		return rows, nil
	}

	key, err := c.resolveKey(key)
	if err != nil {
		return nil, err
	}
	body, err := c.get(ctx, fmt.Sprintf("%s/data_availability/csv/%s/ALL", c.apiBase, url.PathEscape(key)))
	if err != nil {
		return nil, err
	}

	var rows []Availability
	if err := gocsv.UnmarshalBytes(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse availability csv: %w", err)
	}
	if err := c.availability.Set(cacheKey, rows); err != nil {
		logger.Warnf("failed to cache availability: %v", err)
	}
	return rows, nil
}
