// Package weather fetches hourly forecasts from the Open-Meteo API and
// renders them into display rows.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mpavel/homescreen/internal/logging"
	"github.com/mpavel/homescreen/internal/store"
)

const defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// hourLayout is the timestamp format of the hourly series.
const hourLayout = "2006-01-02T15:04"

// Client fetches hourly forecasts.
type Client struct {
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the forecast endpoint, used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithClock overrides the reference clock, used in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a forecast client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    defaultBaseURL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type forecastResponse struct {
	Hourly hourlySeries `json:"hourly"`
}

type hourlySeries struct {
	Time          []string  `json:"time"`
	Temperature   []float64 `json:"temperature_2m"`
	FeelsLike     []float64 `json:"apparent_temperature"`
	Precipitation []int     `json:"precipitation_probability"`
	WeatherCode   []int     `json:"weather_code"`
	IsDay         []int     `json:"is_day"`
}

// NextHours fetches the hourly forecast for the given coordinates and renders
// the next count hours starting at the current one. Unit selection happens at
// the API, not by converting afterwards.
func (c *Client) NextHours(ctx context.Context, lat, lon float64, count int, celsius bool) ([]store.WeatherRow, error) {
	unit := "fahrenheit"
	if celsius {
		unit = "celsius"
	}
	u := fmt.Sprintf(
		"%s?latitude=%v&longitude=%v&hourly=temperature_2m,apparent_temperature,precipitation_probability,weather_code,is_day&timezone=auto&forecast_days=2&temperature_unit=%s",
		c.baseURL, lat, lon, unit,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building forecast request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast request: unexpected status %s", resp.Status)
	}

	var data forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding forecast response: %w", err)
	}

	rows := buildRows(data.Hourly, c.now(), count, celsius)
	logging.FromContext(ctx).Debug().
		Int("rows", len(rows)).
		Bool("celsius", celsius).
		Msg("forecast fetched")
	return rows, nil
}

// buildRows windows the hourly series to count entries starting at the first
// hour not in the past, and formats each into a display row. The first row's
// time label is always "Now".
func buildRows(h hourlySeries, now time.Time, count int, celsius bool) []store.WeatherRow {
	start := 0
	for i, ts := range h.Time {
		t, err := time.ParseInLocation(hourLayout, ts, now.Location())
		if err != nil {
			continue
		}
		if !t.Before(now) {
			start = i
			break
		}
	}

	glyph := "°F"
	if celsius {
		glyph = "°C"
	}

	end := min(start+count, len(h.Time))
	rows := make([]store.WeatherRow, 0, end-start)
	for i := start; i < end; i++ {
		label := "Now"
		if i != start {
			label = hourLabel(h.Time[i])
		}

		summary, icon := describe(at(h.WeatherCode, i, 0), at(h.IsDay, i, 1) == 1)

		rows = append(rows, store.WeatherRow{
			Time:          label,
			Temp:          fmt.Sprintf("%.0f%s", at(h.Temperature, i, 0), glyph),
			FeelsLike:     fmt.Sprintf("%.0f%s", at(h.FeelsLike, i, 0), glyph),
			Precipitation: fmt.Sprintf("%d%% precipitation", at(h.Precipitation, i, 0)),
			Summary:       summary,
			Icon:          icon,
		})
	}
	return rows
}

// hourLabel extracts the hour-of-day portion of an hourly timestamp.
func hourLabel(ts string) string {
	for i := 0; i < len(ts); i++ {
		if ts[i] == 'T' {
			return ts[i+1:]
		}
	}
	return "00:00"
}

// at indexes a parallel series defensively; short series fall back to def
// rather than panic.
func at[T any](s []T, i int, def T) T {
	if i < len(s) {
		return s[i]
	}
	return def
}
