// Package geo resolves free-text locations to coordinates using the
// Open-Meteo geocoding API.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mpavel/homescreen/internal/logging"
)

const defaultBaseURL = "https://geocoding-api.open-meteo.com/v1/search"

// ErrNotFound is returned when the search yields no results.
var ErrNotFound = errors.New("no matching location found")

// Location is a resolved place: coordinates plus a display label.
type Location struct {
	Lat   float64
	Lon   float64
	Label string
}

// Client queries the geocoding endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the geocoding endpoint, used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a geocoding client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
	Admin1    string  `json:"admin1"`
}

// Search resolves query to the best-matching location. Returns ErrNotFound
// when nothing matches.
func (c *Client) Search(ctx context.Context, query string) (Location, error) {
	u := fmt.Sprintf("%s?name=%s&count=1&language=en&format=json", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Location{}, fmt.Errorf("building geocode request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geocode request: unexpected status %s", resp.Status)
	}

	var data searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Location{}, fmt.Errorf("decoding geocode response: %w", err)
	}

	if len(data.Results) == 0 {
		return Location{}, ErrNotFound
	}

	first := data.Results[0]
	loc := Location{
		Lat:   first.Latitude,
		Lon:   first.Longitude,
		Label: displayLabel(first.Name, first.Admin1, first.Country),
	}
	logging.FromContext(ctx).Debug().
		Str("query", query).
		Str("label", loc.Label).
		Msg("geocode resolved")
	return loc, nil
}

// displayLabel composes the location label shown in status text: the bare
// name when the country is unknown, "name (country)" when the admin region is
// unknown, otherwise "name — admin1, country".
func displayLabel(name, admin1, country string) string {
	switch {
	case country == "":
		return name
	case admin1 == "":
		return fmt.Sprintf("%s (%s)", name, country)
	default:
		return fmt.Sprintf("%s — %s, %s", name, admin1, country)
	}
}
