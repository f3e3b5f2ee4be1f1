package store

import (
	"strings"
	"time"
)

// Domain identifies one of the cached data kinds.
type Domain string

// Cached domains. Each (user, domain) pair maps to exactly one file.
const (
	DomainWeather Domain = "weather"
	DomainNews    Domain = "news"
)

// DefaultTTL is the canonical freshness window for cached records.
const DefaultTTL = 15 * time.Minute

// WeatherRow is one rendered hour of forecast. Rows are immutable snapshots;
// a record's rows are only ever replaced as a whole.
type WeatherRow struct {
	Time          string `json:"time"`
	Temp          string `json:"temp"`
	FeelsLike     string `json:"feels_like,omitempty"`
	Precipitation string `json:"precipitation,omitempty"`
	Summary       string `json:"summary"`
	Icon          string `json:"icon,omitempty"`
}

// NewsRow is the persisted projection of an article. Thumbnails are fetched
// live and never written to disk.
type NewsRow struct {
	Title     string `json:"title"`
	Source    string `json:"source"`
	Published string `json:"published"`
	URL       string `json:"url"`
}

// WeatherRecord is the last successful weather fetch for one user.
// Units and City are the parameters the fetch was issued with; old files
// without them unmarshal to empty strings and simply never match.
type WeatherRecord struct {
	TS    int64        `json:"ts"`
	Units string       `json:"units,omitempty"`
	City  string       `json:"city,omitempty"`
	Rows  []WeatherRow `json:"rows"`
}

// NewsRecord is the last successful news fetch for one user.
type NewsRecord struct {
	TS   int64     `json:"ts"`
	Rows []NewsRow `json:"rows"`
}

// Matches reports whether the record was fetched with the requested
// parameters. City comparison is case-insensitive; freshness is a separate
// check.
func (r *WeatherRecord) Matches(units, city string) bool {
	return r.Units == units && r.City == strings.ToLower(city)
}

// IsFresh reports whether a record written at unix time ts is still within
// ttl. A ts in the future saturates to age zero and is always fresh.
func IsFresh(ts int64, ttl time.Duration) bool {
	age := time.Now().Unix() - ts
	if age < 0 {
		age = 0
	}
	return time.Duration(age)*time.Second <= ttl
}

// AgeMinutes returns the whole minutes since ts, floored at zero. Used for
// "updated Nm ago" status text.
func AgeMinutes(ts int64) int64 {
	age := (time.Now().Unix() - ts) / 60
	if age < 0 {
		return 0
	}
	return age
}
