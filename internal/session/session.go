package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/aoi"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/config"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/confidence"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/errs"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/firms"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/footprint"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/planet"
)

// AlertSet is one fetched batch. It is replaced wholesale and never mutated
// in place; readers compare BatchID to notice a replacement.
type AlertSet struct {
	BatchID    uuid.UUID
	Request    firms.Request
	AOIName    string
	SatSource  firms.SatSource
	Scheme     confidence.Scheme
	Detections []firms.Detection
	Squares    []footprint.Square
	// Overloaded sets are kept but carry no squares for display.
	Overloaded bool
	FetchedAt  time.Time
}

func (a *AlertSet) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Detections)
}

func (a *AlertSet) find(id int) (int, bool) {
	for i, d := range a.Detections {
		if d.ID == id {
			return i, true
		}
	}
	return 0, false
}

// ImageryParams are the Planet search settings chosen by the user.
type ImageryParams struct {
	CloudCover int
	DaysBefore int
	DaysAfter  int
	MaxImages  int
	Policy     planet.DayPolicy
}

func ImageryParamsFromConfig(cfg config.PlanetConfig) ImageryParams {
	policy, err := planet.ParseDayPolicy(cfg.DayPolicy)
	if err != nil {
		policy = planet.BestPerDay
	}
	return ImageryParams{
		CloudCover: cfg.CloudCover,
		DaysBefore: cfg.DaysBefore,
		DaysAfter:  cfg.DaysAfter,
		MaxImages:  cfg.MaxImages,
		Policy:     policy,
	}
}

func (p ImageryParams) Validate() error {
	switch {
	case p.CloudCover < 0 || p.CloudCover > 100:
		return fmt.Errorf("cloud cover must be between 0 and 100, got %d", p.CloudCover)
	case p.DaysBefore < 0 || p.DaysBefore > 5:
		return fmt.Errorf("days before must be between 0 and 5, got %d", p.DaysBefore)
	case p.DaysAfter < 0 || p.DaysAfter > 5:
		return fmt.Errorf("days after must be between 0 and 5, got %d", p.DaysAfter)
	case p.MaxImages < 1 || p.MaxImages > 6:
		return fmt.Errorf("max images must be between 1 and 6, got %d", p.MaxImages)
	}
	return nil
}

type MetadataChange struct {
	BatchID  uuid.UUID
	ID       int
	Reviewed string
	Observ   string
}

type Session struct {
	bus       *Bus
	countries *aoi.Countries

	mu       sync.RWMutex
	aoi      *aoi.AOI
	alerts   *AlertSet
	selected *firms.Detection
	click    *orb.Point
	imagery  ImageryParams
	layers   *Layers
}

func New(bus *Bus, countries *aoi.Countries, params ImageryParams) *Session {
	return &Session{
		bus:       bus,
		countries: countries,
		imagery:   params,
		layers:    NewLayers(),
	}
}

func (s *Session) Bus() *Bus { return s.bus }

func (s *Session) Countries() *aoi.Countries { return s.countries }

func (s *Session) SetAOI(a *aoi.AOI) {
	s.mu.Lock()
	s.aoi = a
	s.mu.Unlock()
	s.bus.Publish(TopicAOIChanged, a)
}

// SelectCountry uses a country boundary from the registry as AOI.
func (s *Session) SelectCountry(name string) (*aoi.AOI, error) {
	if s.countries == nil {
		return nil, fmt.Errorf("no country boundaries loaded")
	}
	a, err := s.countries.AOI(name)
	if err != nil {
		return nil, err
	}
	s.SetAOI(a)
	return a, nil
}

func (s *Session) AOI() *aoi.AOI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aoi
}

// Alerts returns the current set. The returned set must not be modified.
func (s *Session) Alerts() *AlertSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.alerts
}

// install replaces the current set, clearing the selection and imagery layers.
func (s *Session) install(set *AlertSet) {
	s.mu.Lock()
	s.alerts = set
	s.selected = nil
	s.click = nil
	s.mu.Unlock()
	s.layers.Clear()
	s.bus.Publish(TopicAlertsReplaced, set)
}

func (s *Session) SelectAlert(id int) (firms.Detection, error) {
	s.mu.Lock()
	if s.alerts == nil {
		s.mu.Unlock()
		return firms.Detection{}, fmt.Errorf("no alerts loaded")
	}
	i, ok := s.alerts.find(id)
	if !ok {
		s.mu.Unlock()
		return firms.Detection{}, fmt.Errorf("alert %d not found in batch %s", id, s.alerts.BatchID)
	}
	d := s.alerts.Detections[i]
	s.selected = &d
	s.mu.Unlock()

	s.bus.Publish(TopicAlertSelected, d)
	return d, nil
}

// SelectAt selects the alert whose footprint contains pt and registers pt
// as the imagery click point.
func (s *Session) SelectAt(pt orb.Point) (firms.Detection, error) {
	set := s.Alerts()
	if set == nil {
		return firms.Detection{}, fmt.Errorf("no alerts loaded")
	}
	sq, ok := footprint.Find(set.Squares, pt)
	if !ok {
		return firms.Detection{}, fmt.Errorf("no alert at %v", pt)
	}
	s.SetClick(pt)
	return s.SelectAlert(sq.Detection.ID)
}

func (s *Session) Selected() (firms.Detection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return firms.Detection{}, false
	}
	return *s.selected, true
}

func (s *Session) SetClick(pt orb.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.click = &pt
}

func (s *Session) Click() *orb.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.click == nil {
		return nil
	}
	pt := *s.click
	return &pt
}

// EditMetadata updates the annotation fields of one alert. The current set
// is copied so readers of the previous one are unaffected.
func (s *Session) EditMetadata(id int, reviewed, observ string) error {
	s.mu.Lock()
	if s.alerts == nil {
		s.mu.Unlock()
		return fmt.Errorf("no alerts loaded")
	}
	i, ok := s.alerts.find(id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("alert %d not found in batch %s", id, s.alerts.BatchID)
	}

	next := *s.alerts
	next.Detections = append([]firms.Detection(nil), s.alerts.Detections...)
	next.Detections[i].Reviewed = reviewed
	next.Detections[i].Observ = observ
	if len(s.alerts.Squares) > 0 {
		next.Squares = append([]footprint.Square(nil), s.alerts.Squares...)
		for j := range next.Squares {
			if next.Squares[j].Detection.ID == id {
				next.Squares[j].Detection = next.Detections[i]
			}
		}
	}
	s.alerts = &next
	if s.selected != nil && s.selected.ID == id {
		d := next.Detections[i]
		s.selected = &d
	}
	s.mu.Unlock()

	s.bus.Publish(TopicAlertMetadata, MetadataChange{BatchID: next.BatchID, ID: id, Reviewed: reviewed, Observ: observ})
	return nil
}

// FilterByConfidence returns the current alerts of one confidence bucket.
func (s *Session) FilterByConfidence(label string) ([]firms.Detection, error) {
	set := s.Alerts()
	if set == nil {
		return nil, fmt.Errorf("no alerts loaded")
	}
	if set.Scheme == nil {
		return nil, fmt.Errorf("alert set has no confidence scheme: %w", errs.ErrClassification)
	}
	return confidence.Select(set.Detections, set.Scheme, label)
}

func (s *Session) ImageryParams() ImageryParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.imagery
}

func (s *Session) SetImageryParams(p ImageryParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imagery = p
	return nil
}

func (s *Session) Layers() *Layers { return s.layers }

// StateHook publishes imagery matcher transitions on the bus.
func (s *Session) StateHook() func(planet.State) {
	return func(st planet.State) {
		s.bus.Publish(TopicImageryState, st)
	}
}
