package refresh

import (
	"strings"

	"github.com/mpavel/homescreen/internal/news"
	"github.com/mpavel/homescreen/internal/store"
)

// Messages presented by the orchestrator. The presentation loop applies them
// to its view state through the reducers below; keeping the reduction here
// means the cache-versus-failure rules live next to the policy that emits
// them.

// WeatherStatus replaces the weather status line only.
type WeatherStatus string

// WeatherRows replaces the rendered rows and the status line together.
type WeatherRows struct {
	Rows   []store.WeatherRow
	Status string
}

// WeatherFailure reports a failed network refresh.
type WeatherFailure struct {
	Err string
}

// NewsStatus replaces the news status line only.
type NewsStatus string

// NewsRows replaces the rendered articles and the status line together.
type NewsRows struct {
	Articles []news.Article
	Status   string
}

// NewsFailure reports a failed news refresh.
type NewsFailure struct {
	Err string
}

// WeatherView is the rendered weather panel.
type WeatherView struct {
	Rows   []store.WeatherRow
	Status string
}

// Apply reduces one message into the view. A failure only degrades the
// status text: it prefixes a "Cached"-leading status with "Offline • " and
// replaces any other status with the error, but rendered rows always stay.
// When nothing was cached the panel is empty because no rows were ever set.
func (v WeatherView) Apply(msg any) WeatherView {
	switch m := msg.(type) {
	case WeatherStatus:
		v.Status = string(m)
	case WeatherRows:
		v.Rows = m.Rows
		v.Status = m.Status
	case WeatherFailure:
		if strings.HasPrefix(v.Status, "Cached") {
			v.Status = "Offline • " + v.Status
		} else {
			v.Status = "Failed to load: " + m.Err
		}
	}
	return v
}

// NewsView is the rendered news panel.
type NewsView struct {
	Articles []news.Article
	Status   string
}

// Apply reduces one message into the view, with the same failure rules as
// the weather panel.
func (v NewsView) Apply(msg any) NewsView {
	switch m := msg.(type) {
	case NewsStatus:
		v.Status = string(m)
	case NewsRows:
		v.Articles = m.Articles
		v.Status = m.Status
	case NewsFailure:
		if strings.HasPrefix(v.Status, "Cached") {
			v.Status = "Offline • " + v.Status
		} else {
			v.Status = "Failed to load: " + m.Err
		}
	}
	return v
}
