package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// series builds a 24-hour hourly payload starting at midnight local time.
func series(day string, hours int) hourlySeries {
	h := hourlySeries{}
	for i := 0; i < hours; i++ {
		h.Time = append(h.Time, fmt.Sprintf("%sT%02d:00", day, i))
		h.Temperature = append(h.Temperature, float64(10+i))
		h.FeelsLike = append(h.FeelsLike, float64(9+i))
		h.Precipitation = append(h.Precipitation, i)
		h.WeatherCode = append(h.WeatherCode, 0)
		h.IsDay = append(h.IsDay, 1)
	}
	return h
}

func TestBuildRowsWindow(t *testing.T) {
	h := series("2026-08-25", 24)
	now := time.Date(2026, 8, 25, 5, 0, 0, 0, time.Local)

	rows := buildRows(h, now, 8, true)
	require.Len(t, rows, 8)

	assert.Equal(t, "Now", rows[0].Time)
	assert.Equal(t, "15°C", rows[0].Temp, "window starts at hour 5")
	assert.Equal(t, "06:00", rows[1].Time)
	assert.Equal(t, "12:00", rows[7].Time, "window covers hours 5..12")
}

func TestBuildRowsTieBreaksToEarliestMatch(t *testing.T) {
	h := series("2026-08-25", 24)
	// Mid-hour: 05:30 means hour 5 is already past, first match is hour 6.
	now := time.Date(2026, 8, 25, 5, 30, 0, 0, time.Local)

	rows := buildRows(h, now, 2, true)
	require.Len(t, rows, 2)
	assert.Equal(t, "Now", rows[0].Time)
	assert.Equal(t, "16°C", rows[0].Temp)
}

func TestBuildRowsAllPastFallsBackToIndexZero(t *testing.T) {
	h := series("2026-08-25", 24)
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.Local)

	rows := buildRows(h, now, 3, true)
	require.Len(t, rows, 3)
	assert.Equal(t, "Now", rows[0].Time)
	assert.Equal(t, "10°C", rows[0].Temp)
}

func TestBuildRowsClampsToSeriesLength(t *testing.T) {
	h := series("2026-08-25", 6)
	now := time.Date(2026, 8, 25, 4, 0, 0, 0, time.Local)

	rows := buildRows(h, now, 8, true)
	assert.Len(t, rows, 2)
}

func TestBuildRowsFormatting(t *testing.T) {
	h := hourlySeries{
		Time:          []string{"2026-08-25T05:00"},
		Temperature:   []float64{21.6},
		FeelsLike:     []float64{19.4},
		Precipitation: []int{30},
		WeatherCode:   []int{61},
		IsDay:         []int{0},
	}
	now := time.Date(2026, 8, 25, 5, 0, 0, 0, time.Local)

	rows := buildRows(h, now, 1, false)
	require.Len(t, rows, 1)
	assert.Equal(t, "22°F", rows[0].Temp, "temperature rounds to zero decimals")
	assert.Equal(t, "19°F", rows[0].FeelsLike)
	assert.Equal(t, "30% precipitation", rows[0].Precipitation)
	assert.Equal(t, "Light rain", rows[0].Summary)
	assert.Equal(t, "rain", rows[0].Icon)
}

func TestBuildRowsShortParallelSeries(t *testing.T) {
	h := hourlySeries{
		Time: []string{"2026-08-25T05:00", "2026-08-25T06:00"},
		// Parallel arrays truncated; rows must still render.
		Temperature: []float64{12},
	}
	now := time.Date(2026, 8, 25, 5, 0, 0, 0, time.Local)

	rows := buildRows(h, now, 2, true)
	require.Len(t, rows, 2)
	assert.Equal(t, "0°C", rows[1].Temp)
}

func TestDescribe(t *testing.T) {
	summary, icon := describe(0, true)
	assert.Equal(t, "Clear sky", summary)
	assert.Equal(t, "clear-day", icon)

	summary, icon = describe(0, false)
	assert.Equal(t, "Clear sky", summary)
	assert.Equal(t, "clear-night", icon)

	summary, icon = describe(1234, true)
	assert.Equal(t, unknownSummary, summary, "unmapped codes degrade, never error")
	assert.Empty(t, icon)
}

func TestNextHours(t *testing.T) {
	day := time.Now().Format("2006-01-02")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "celsius", r.URL.Query().Get("temperature_unit"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"hourly":{"time":["%sT00:00"],"temperature_2m":[4.2],"apparent_temperature":[2.0],"precipitation_probability":[5],"weather_code":[3],"is_day":[1]}}`, day)
	}))
	defer srv.Close()

	c := NewClient(
		WithBaseURL(srv.URL),
		WithClock(func() time.Time { return time.Date(2026, 8, 25, 0, 0, 0, 0, time.Local) }),
	)
	rows, err := c.NextHours(context.Background(), 44.4, 26.1, 8, true)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "Now", rows[0].Time)
	assert.Equal(t, "Overcast", rows[0].Summary)
}

func TestNextHoursServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.NextHours(context.Background(), 0, 0, 8, true)
	assert.Error(t, err)
}
