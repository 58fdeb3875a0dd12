package firms

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/paulmach/orb"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/cache"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/config"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/errs"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/geoutils"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/logger"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/properties"
)

type Mode string

const (
	ModeRecent   Mode = "recent"
	ModeRange    Mode = "range"
	ModeHistoric Mode = "historic"
)

const (
	dateLayout = "2006-01-02"
	// Body returned with a 200 status when the map key is rejected.
	invalidKeySentinel = "Invalid MAP_KEY."
	maxRangeDays       = 10
)

type Request struct {
	SatSource SatSource
	Mode      Mode
	Offset    string
	StartDate time.Time
	EndDate   time.Time
	Bounds    orb.Bound
	APIKey    string
}

// ProgressFunc receives the bytes read so far and the expected total (-1 if unknown).
type ProgressFunc func(read, total int64)

type Client struct {
	httpClient   *http.Client
	apiBase      string
	historicBase string
	historicDir  string
	progress     ProgressFunc
	progressBar  bool
	availability *cache.FileCache[[]Availability]
	now          func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithProgress(fn ProgressFunc) Option {
	return func(c *Client) { c.progress = fn }
}

// WithProgressBar draws a terminal bar while yearly archives download.
func WithProgressBar() Option {
	return func(c *Client) { c.progressBar = true }
}

func WithHistoricDir(dir string) Option {
	return func(c *Client) { c.historicDir = dir }
}

func WithAvailabilityCache(fc *cache.FileCache[[]Availability]) Option {
	return func(c *Client) { c.availability = fc }
}

func NewClient(cfg config.FirmsConfig, opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		apiBase:      strings.TrimRight(cfg.APIBase, "/"),
		historicBase: strings.TrimRight(cfg.HistoricBase, "/"),
		historicDir:  properties.HistoricDir(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.availability == nil {
		c.availability = cache.NewFileCache[[]Availability](filepath.Join(properties.DataDir(), "availability"), 24*time.Hour)
	}
	return c
}

// Fetch retrieves the detections of one source. Range and key problems are
// reported before any request goes out.
func (c *Client) Fetch(ctx context.Context, req Request) ([]Detection, error) {
	if !req.SatSource.Valid() {
		return nil, fmt.Errorf("unknown satellite source %q: %w", req.SatSource, errs.ErrClassification)
	}

	var (
		rows []Detection
		err  error
	)
	switch req.Mode {
	case ModeRecent, "":
		rows, err = c.fetchRecent(ctx, req)
	case ModeRange:
		rows, err = c.fetchRange(ctx, req)
	case ModeHistoric:
		rows, err = c.fetchHistoric(ctx, req)
	default:
		return nil, fmt.Errorf("unknown fetch mode %q", req.Mode)
	}
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].ID = i
		rows[i].SatSource = req.SatSource
	}
	return rows, nil
}

func (c *Client) resolveKey(key string) (string, error) {
	if key == "" {
		key = properties.FirmsAPIKey()
	}
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("no FIRMS map key available: %w", errs.ErrAuthentication)
	}
	return key, nil
}

func (c *Client) areaURL(key string, req Request, days int) string {
	return fmt.Sprintf("%s/area/csv/%s/%s/%s/%d",
		c.apiBase,
		url.PathEscape(key),
		req.SatSource.Code(),
		geoutils.TruncatedBounds(req.Bounds),
		days,
	)
}

func (c *Client) fetchRecent(ctx context.Context, req Request) ([]Detection, error) {
	days, err := ParseOffset(req.Offset)
	if err != nil {
		return nil, err
	}
	key, err := c.resolveKey(req.APIKey)
	if err != nil {
		return nil, err
	}
	return c.getCSV(ctx, c.areaURL(key, req, days))
}

func (c *Client) fetchRange(ctx context.Context, req Request) ([]Detection, error) {
	days, err := rangeDays(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if days > maxRangeDays {
		return nil, fmt.Errorf("range of %d days exceeds the %d days the area endpoint serves: %w", days, maxRangeDays, errs.ErrRange)
	}
	key, err := c.resolveKey(req.APIKey)
	if err != nil {
		return nil, err
	}
	u := c.areaURL(key, req, days) + "/" + req.StartDate.Format(dateLayout)
	return c.getCSV(ctx, u)
}

// rangeDays counts the calendar days of the inclusive range.
func rangeDays(start, end time.Time) (int, error) {
	if start.IsZero() || end.IsZero() {
		return 0, fmt.Errorf("start and end dates are required: %w", errs.ErrRange)
	}
	s := truncateDay(start)
	e := truncateDay(end)
	if e.Before(s) {
		return 0, fmt.Errorf("end date %s precedes start date %s: %w", e.Format(dateLayout), s.Format(dateLayout), errs.ErrRange)
	}
	return int(e.Sub(s).Hours()/24) + 1, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (c *Client) getCSV(ctx context.Context, u string) ([]Detection, error) {
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	return parseDetections(body)
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	logger.Debugf("GET %s", redactKey(u))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("firms request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read firms response: %w", err)
	}
	if err := checkResponse(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

// checkResponse classifies provider answers. The exact sentinel body is
// honoured first, then status codes, then a CSV without coordinates that
// mentions the map key.
func checkResponse(status int, body []byte) error {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == invalidKeySentinel {
		return fmt.Errorf("provider rejected the map key: %w", errs.ErrAuthentication)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Errorf("provider answered %d: %w", status, errs.ErrAuthentication)
	}
	if status != http.StatusOK {
		return fmt.Errorf("firms request failed with status %d: %s", status, truncate(trimmed, 200))
	}
	if !hasCoordinateHeader(trimmed) && strings.Contains(trimmed, "MAP_KEY") {
		return fmt.Errorf("provider rejected the map key: %s: %w", truncate(trimmed, 200), errs.ErrAuthentication)
	}
	return nil
}

func hasCoordinateHeader(body string) bool {
	header := body
	if i := strings.IndexByte(header, '\n'); i >= 0 {
		header = header[:i]
	}
	return strings.Contains(header, "latitude") && strings.Contains(header, "longitude")
}

func parseDetections(body []byte) ([]Detection, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return []Detection{}, nil
	}
	// provider errors come back as 200 plain text
	if trimmed := strings.TrimSpace(string(body)); !hasCoordinateHeader(trimmed) {
		return nil, fmt.Errorf("unexpected firms response: %s", truncate(trimmed, 200))
	}
	var rows []Detection
	if err := gocsv.UnmarshalBytes(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse firms csv: %w", err)
	}
	if rows == nil {
		rows = []Detection{}
	}
	return rows, nil
}

func redactKey(u string) string {
	parts := strings.Split(u, "/")
	for i, p := range parts {
		if p == "csv" && i+1 < len(parts) {
			parts[i+1] = "***"
			break
		}
	}
	return strings.Join(parts, "/")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
