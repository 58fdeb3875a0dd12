package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/aoi"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/confidence"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/errs"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/firms"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/footprint"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/logger"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/planet"
)

type AlertFetcher interface {
	Fetch(ctx context.Context, req firms.Request) ([]firms.Detection, error)
}

type SquareBuilder interface {
	ToSquares(dets []firms.Detection) ([]footprint.Square, error)
}

type ImagerySearcher interface {
	Search(ctx context.Context, q planet.Query, creds planet.Credentials) (planet.Result, error)
}

type TileURLer interface {
	TileURL(item planet.Item, key string) (string, error)
}

type FetchParams struct {
	SatSource firms.SatSource
	Mode      firms.Mode
	Offset    string
	StartDate time.Time
	EndDate   time.Time
	APIKey    string
}

type Pipeline struct {
	session     *Session
	fetcher     AlertFetcher
	builder     SquareBuilder
	maxFeatures int
	now         func() time.Time
}

func NewPipeline(s *Session, fetcher AlertFetcher, builder SquareBuilder, maxFeatures int) *Pipeline {
	if maxFeatures <= 0 {
		maxFeatures = errs.MaxDisplayFeatures
	}
	return &Pipeline{
		session:     s,
		fetcher:     fetcher,
		builder:     builder,
		maxFeatures: maxFeatures,
		now:         time.Now,
	}
}

// Run fetches, clips, classifies and squares a new alert set and installs it.
// On failure the current set is left untouched. When the set is larger than
// the display limit it is installed without squares and an *errs.OverloadError
// is returned along with it.
func (p *Pipeline) Run(ctx context.Context, params FetchParams) (*AlertSet, error) {
	area := p.session.AOI()
	if area == nil {
		return nil, errs.ErrNoAoi
	}

	req := firms.Request{
		SatSource: params.SatSource,
		Mode:      params.Mode,
		Offset:    params.Offset,
		StartDate: params.StartDate,
		EndDate:   params.EndDate,
		Bounds:    area.Bound(),
		APIKey:    params.APIKey,
	}
	rows, err := p.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alerts: %w", err)
	}

	clipped, err := aoi.Clip(rows, area)
	if err != nil {
		return nil, err
	}
	logger.Infof("%d of %d alerts inside %s", len(clipped), len(rows), area.Name)

	scheme, err := confidence.SchemeFor(params.SatSource)
	if err != nil {
		return nil, err
	}
	if err := confidence.Validate(clipped, scheme); err != nil {
		return nil, err
	}

	set := &AlertSet{
		BatchID:    uuid.New(),
		Request:    req,
		AOIName:    area.Name,
		SatSource:  params.SatSource,
		Scheme:     scheme,
		Detections: clipped,
		FetchedAt:  p.now(),
	}

	if err := errs.CheckOverload(len(clipped), p.maxFeatures); err != nil {
		set.Overloaded = true
		p.session.install(set)
		p.session.bus.Publish(TopicAlertsOverload, err)
		logger.Warnf("%v", err)
		return set, err
	}

	squares, err := p.builder.ToSquares(clipped)
	if err != nil {
		return nil, err
	}
	set.Squares = squares
	p.session.install(set)
	return set, nil
}

// IsOverload reports whether err came from a set too large to display.
func IsOverload(err error) bool {
	var oe *errs.OverloadError
	return errors.As(err, &oe)
}

// Imagery runs Planet searches for the selected alert and tracks the layers.
type Imagery struct {
	session  *Session
	searcher ImagerySearcher
	tiles    TileURLer
}

func NewImagery(s *Session, searcher ImagerySearcher, tiles TileURLer) *Imagery {
	return &Imagery{session: s, searcher: searcher, tiles: tiles}
}

// Query builds the search of the selected alert around the click point.
func (im *Imagery) Query() (planet.Query, error) {
	d, ok := im.session.Selected()
	if !ok {
		return planet.Query{}, fmt.Errorf("no alert selected")
	}
	date, err := time.Parse("2006-01-02", d.AcqDate)
	if err != nil {
		return planet.Query{}, fmt.Errorf("alert %d has an invalid date %q: %w", d.ID, d.AcqDate, err)
	}
	params := im.session.ImageryParams()
	return planet.Query{
		Click:      im.session.Click(),
		AlertDate:  date,
		DaysBefore: params.DaysBefore,
		DaysAfter:  params.DaysAfter,
		MaxImages:  params.MaxImages,
		CloudCover: float64(params.CloudCover) / 100,
		Policy:     params.Policy,
	}, nil
}

// Search returns the ranked result and the layers newly added to the map.
// The layers of a previous search are removed. Tiles need an API key, so
// OAuth only credentials fail before any request.
func (im *Imagery) Search(ctx context.Context, creds planet.Credentials) (planet.Result, []Layer, error) {
	q, err := im.Query()
	if err != nil {
		return planet.Result{}, nil, err
	}
	if creds.APIKey == "" {
		return planet.Result{}, nil, fmt.Errorf("imagery layers need a Planet API key: %w", errs.ErrAuthentication)
	}
	res, err := im.searcher.Search(ctx, q, creds)
	if err != nil {
		return planet.Result{}, nil, err
	}

	layers := make([]Layer, 0, len(res.Items))
	for _, it := range res.Items {
		u, err := im.tiles.TileURL(it, creds.APIKey)
		if err != nil {
			return planet.Result{}, nil, err
		}
		layers = append(layers, Layer{
			AssetID:    it.ID,
			ItemType:   it.ItemType,
			Date:       it.Date,
			CloudCover: it.CloudCover,
			URL:        u,
		})
	}
	added, changed := im.session.layers.Replace(layers...)
	if changed {
		im.session.bus.Publish(TopicImageryLayers, im.session.layers.List())
	}
	return res, added, nil
}
