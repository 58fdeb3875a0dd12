package planet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/config"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/errs"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/logger"
)

const maxPages = 50

// Credentials hold either an API key or OAuth2 client credentials.
type Credentials struct {
	APIKey       string
	ClientID     string
	ClientSecret string
	TokenURL     string
}

func (c Credentials) Empty() bool {
	return c.APIKey == "" && (c.ClientID == "" || c.ClientSecret == "" || c.TokenURL == "")
}

type basicAuthTransport struct {
	key  string
	base http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r2 := r.Clone(r.Context())
	r2.SetBasicAuth(t.key, "")
	return t.base.RoundTrip(r2)
}

type Client struct {
	httpClient *http.Client
	apiBase    string
	tilesBase  string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(cfg config.PlanetConfig, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiBase:    strings.TrimRight(cfg.APIBase, "/"),
		tilesBase:  strings.TrimRight(cfg.TilesBase, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// authorized returns a client that signs requests with creds. An API key is
// sent as the basic auth user; client credentials go through an OAuth2 token.
func (c *Client) authorized(ctx context.Context, creds Credentials) (*http.Client, error) {
	if creds.Empty() {
		return nil, fmt.Errorf("no planet credentials: %w", errs.ErrAuthentication)
	}
	if creds.APIKey != "" {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		return &http.Client{
			Timeout:   c.httpClient.Timeout,
			Transport: &basicAuthTransport{key: creds.APIKey, base: base},
		}, nil
	}
	cc := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     creds.TokenURL,
	}
	return cc.Client(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)), nil
}

// Validate checks the credentials with a single authenticated call.
func (c *Client) Validate(ctx context.Context, creds Credentials) error {
	hc, err := c.authorized(ctx, creds)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/data/v1", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := hc.Do(req)
	if err != nil {
		if isOAuthError(err) {
			return fmt.Errorf("planet token request failed: %v: %w", err, errs.ErrAuthentication)
		}
		return fmt.Errorf("planet key check failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("planet rejected the credentials: %w", errs.ErrAuthentication)
	}
	return fmt.Errorf("planet key check failed with status %d", resp.StatusCode)
}

func isOAuthError(err error) bool {
	var re *oauth2.RetrieveError
	return errors.As(err, &re)
}

// QuickSearch runs a quick search and follows every result page.
func (c *Client) QuickSearch(ctx context.Context, creds Credentials, sr SearchRequest) ([]*Feature, error) {
	hc, err := c.authorized(ctx, creds)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(sr)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/data/v1/quick-search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var features []*Feature
	seen := map[string]bool{}
	for page := 0; ; page++ {
		res, err := c.do(hc, req)
		if err != nil {
			return nil, err
		}
		features = append(features, res.Features...)

		next := res.Links.Next
		if next == "" || seen[next] {
			break
		}
		if page+1 >= maxPages {
			logger.Warnf("planet search stopped after %d pages", maxPages)
			break
		}
		seen[next] = true
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build page request: %w", err)
		}
	}
	return features, nil
}

func (c *Client) do(hc *http.Client, req *http.Request) (*SearchResponse, error) {
	resp, err := hc.Do(req)
	if err != nil {
		if isOAuthError(err) {
			return nil, fmt.Errorf("planet token request failed: %v: %w", err, errs.ErrAuthentication)
		}
		return nil, fmt.Errorf("planet search failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read planet response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("planet rejected the credentials: %w", errs.ErrAuthentication)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("planet search failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var res SearchResponse
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to decode planet response: %w", err)
	}
	return &res, nil
}

// TileURL is the XYZ template of an item, with {z}/{x}/{y} left for the map.
// Tiles only accept an API key, OAuth tokens are not honoured there.
func (c *Client) TileURL(item Item, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("tile layers need a Planet API key: %w", errs.ErrAuthentication)
	}
	return fmt.Sprintf("%s/data/v1/%s/%s/{z}/{x}/{y}.png?api_key=%s",
		c.tilesBase, item.ItemType, item.ID, url.QueryEscape(key)), nil
}
