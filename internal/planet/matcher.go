package planet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/errs"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/geoutils"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/logger"
)

// ClickBuffer is the half side, in degrees, of the search square around a click.
const ClickBuffer = 0.001

type State string

const (
	StateIdle            State = "idle"
	StateBuildingFilters State = "building_filters"
	StateQuerying        State = "querying"
	StatePrioritizing    State = "prioritizing"
	StateReady           State = "ready"
	StateFailed          State = "failed"
)

type Status int

const (
	StatusNone Status = iota
	StatusOne
	StatusMany
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusOne:
		return "one"
	}
	return "many"
}

func statusOf(n int) Status {
	switch n {
	case 0:
		return StatusNone
	case 1:
		return StatusOne
	}
	return StatusMany
}

type Query struct {
	Click      *orb.Point
	AlertDate  time.Time
	DaysBefore int
	DaysAfter  int
	MaxImages  int
	// CloudCover is the maximum cloud cover as a fraction between 0 and 1.
	CloudCover float64
	Policy     DayPolicy
}

type Result struct {
	Items  []Item
	Status Status
}

type Searcher interface {
	QuickSearch(ctx context.Context, creds Credentials, sr SearchRequest) ([]*Feature, error)
}

type KeyValidator interface {
	Validate(ctx context.Context, creds Credentials) error
}

type Matcher struct {
	searcher  Searcher
	validator KeyValidator
	onState   func(State)

	mu        sync.Mutex
	state     State
	validated map[Credentials]bool
}

type MatcherOption func(*Matcher)

// WithValidator checks credentials once before their first search.
func WithValidator(v KeyValidator) MatcherOption {
	return func(m *Matcher) { m.validator = v }
}

// WithStateHook is called on every state transition.
func WithStateHook(fn func(State)) MatcherOption {
	return func(m *Matcher) { m.onState = fn }
}

func NewMatcher(s Searcher, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		searcher:  s,
		state:     StateIdle,
		validated: map[Credentials]bool{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Matcher) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Matcher) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
	if m.onState != nil {
		m.onState(s)
	}
}

func (m *Matcher) fail(err error) (Result, error) {
	m.setState(StateFailed)
	return Result{}, err
}

// Window returns the half-open search interval [date-before, date+after+1 day).
func Window(date time.Time, before, after int) (time.Time, time.Time) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -before), day.AddDate(0, 0, after+1)
}

// BuildRequest assembles the quick search filters of a query.
func BuildRequest(q Query) SearchRequest {
	start, end := Window(q.AlertDate, q.DaysBefore, q.DaysAfter)
	cloud := q.CloudCover
	return SearchRequest{
		ItemTypes: append([]string(nil), ItemTypes...),
		Filter: AndFilter{
			Type: "AndFilter",
			Config: []interface{}{
				GeometryFilter{
					Type:      "GeometryFilter",
					FieldName: "geometry",
					Config:    geojson.NewGeometry(geoutils.BoxAround(*q.Click, ClickBuffer)),
				},
				RangeFilter{
					Type:      "RangeFilter",
					FieldName: "cloud_cover",
					Config:    &Range{LTE: &cloud},
				},
				DateRangeFilter{
					Type:      "DateRangeFilter",
					FieldName: "acquired",
					Config:    &DateRange{GTE: &start, LT: &end},
				},
			},
		},
	}
}

// Search finds and ranks the imagery of a detection around the clicked point.
// A missing click or unusable credentials fail before any search request.
func (m *Matcher) Search(ctx context.Context, q Query, creds Credentials) (Result, error) {
	m.setState(StateBuildingFilters)
	if q.Click == nil {
		return m.fail(errs.ErrNoClickPoint)
	}
	if q.AlertDate.IsZero() {
		return m.fail(fmt.Errorf("alert date is required"))
	}
	if err := m.checkCredentials(ctx, creds); err != nil {
		return m.fail(err)
	}
	sr := BuildRequest(q)

	m.setState(StateQuerying)
	features, err := m.searcher.QuickSearch(ctx, creds, sr)
	if err != nil {
		return m.fail(err)
	}

	m.setState(StatePrioritizing)
	items := make([]Item, 0, len(features))
	for _, f := range features {
		items = append(items, itemFromFeature(f))
	}
	items = Prioritize(items, q.DaysBefore, q.MaxImages, q.Policy)
	logger.Debugf("%d planet items kept out of %d", len(items), len(features))

	m.setState(StateReady)
	return Result{Items: items, Status: statusOf(len(items))}, nil
}

func (m *Matcher) checkCredentials(ctx context.Context, creds Credentials) error {
	if creds.Empty() {
		return fmt.Errorf("no planet credentials: %w", errs.ErrAuthentication)
	}
	if m.validator == nil {
		return nil
	}
	m.mu.Lock()
	ok := m.validated[creds]
	m.mu.Unlock()
	if ok {
		return nil
	}
	if err := m.validator.Validate(ctx, creds); err != nil {
		return err
	}
	m.mu.Lock()
	m.validated[creds] = true
	m.mu.Unlock()
	return nil
}
