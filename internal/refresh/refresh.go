// Package refresh implements the per-domain refresh policy: serve the
// on-disk cache immediately when it is fresh, always revalidate over the
// network, and degrade to stale data with an "Offline" status when the
// network fails. Both domains share the same shape.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mpavel/homescreen/internal/geo"
	"github.com/mpavel/homescreen/internal/logging"
	"github.com/mpavel/homescreen/internal/news"
	"github.com/mpavel/homescreen/internal/state"
	"github.com/mpavel/homescreen/internal/store"
)

// Fetch sizes per refresh.
const (
	WeatherHours = 8
	NewsCount    = 12
)

// Geocoder resolves a free-text city to coordinates and a display label.
type Geocoder interface {
	Search(ctx context.Context, query string) (geo.Location, error)
}

// ForecastFetcher fetches rendered hourly forecast rows.
type ForecastFetcher interface {
	NextHours(ctx context.Context, lat, lon float64, count int, celsius bool) ([]store.WeatherRow, error)
}

// ArticleFetcher fetches enriched articles for a topic.
type ArticleFetcher interface {
	Fetch(ctx context.Context, topic string, count int) ([]news.Article, error)
}

// Orchestrator runs refreshes for both domains. The synchronous part (cache
// check and immediate render) completes before the method returns; the
// network part runs in the background and lands through the synchronizer.
//
// Superseded refreshes are not canceled: when the user triggers a second
// refresh before the first lands, both complete and the last write wins.
type Orchestrator struct {
	store   *store.Store
	sync    *state.Synchronizer
	geo     Geocoder
	weather ForecastFetcher
	news    ArticleFetcher
	ttl     time.Duration

	wg sync.WaitGroup
}

// New creates an orchestrator. ttl <= 0 uses the store default.
func New(st *store.Store, syn *state.Synchronizer, g Geocoder, w ForecastFetcher, n ArticleFetcher, ttl time.Duration) *Orchestrator {
	if ttl <= 0 {
		ttl = store.DefaultTTL
	}
	return &Orchestrator{store: st, sync: syn, geo: g, weather: w, news: n, ttl: ttl}
}

// Wait blocks until all in-flight background fetches have settled. Used by
// the one-shot CLI path and by tests; the TUI never calls it.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func unitKey(celsius bool) string {
	if celsius {
		return "C"
	}
	return "F"
}

func unitGlyph(celsius bool) string {
	if celsius {
		return "°C"
	}
	return "°F"
}

// Weather runs one weather refresh for the current user. The cache render,
// if any, is presented before the network attempt starts, so it can never
// arrive after this refresh's failure status.
func (o *Orchestrator) Weather(ctx context.Context, city string, celsius bool) {
	user := o.sync.CurrentUser()

	o.sync.Present(WeatherStatus("Loading…"))

	if rec := o.store.Weather(user); rec != nil &&
		store.IsFresh(rec.TS, o.ttl) && rec.Matches(unitKey(celsius), city) {
		o.sync.Present(WeatherRows{
			Rows:   rec.Rows,
			Status: fmt.Sprintf("Cached (%s) • updated %dm ago", unitGlyph(celsius), store.AgeMinutes(rec.TS)),
		})
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()

		loc, err := o.geo.Search(ctx, city)
		if err != nil {
			if errors.Is(err, geo.ErrNotFound) {
				// A city that does not exist is not an outage; the cached
				// rows stay on screen with a plain status.
				o.sync.Present(WeatherStatus("City not found: " + city))
				return
			}
			o.sync.Present(WeatherFailure{Err: err.Error()})
			return
		}

		o.sync.Present(WeatherStatus("Loading… (" + loc.Label + ")"))

		rows, err := o.weather.NextHours(ctx, loc.Lat, loc.Lon, WeatherHours, celsius)
		if err != nil {
			o.sync.Present(WeatherFailure{Err: err.Error()})
			return
		}

		// A failed cache write must not fail the refresh that produced the
		// data.
		if err := o.store.PutWeather(user, rows, unitKey(celsius), city); err != nil {
			logging.FromContext(ctx).Warn().Str("user", user).Err(err).Msg("weather cache write failed")
		}

		o.sync.Present(WeatherRows{
			Rows:   rows,
			Status: fmt.Sprintf("Updated (%s)", unitGlyph(celsius)),
		})
	}()
}

// News runs one news refresh for the current user, same policy as Weather.
func (o *Orchestrator) News(ctx context.Context, topic string) {
	user := o.sync.CurrentUser()

	o.sync.Present(NewsStatus("Loading…"))

	if rec := o.store.News(user); rec != nil && store.IsFresh(rec.TS, o.ttl) {
		o.sync.Present(NewsRows{
			Articles: cachedArticles(rec.Rows),
			Status:   fmt.Sprintf("Cached • updated %dm ago", store.AgeMinutes(rec.TS)),
		})
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()

		articles, err := o.news.Fetch(ctx, topic, NewsCount)
		if err != nil {
			o.sync.Present(NewsFailure{Err: err.Error()})
			return
		}

		rows := make([]store.NewsRow, len(articles))
		for i, a := range articles {
			rows[i] = a.NewsRow
		}
		if err := o.store.PutNews(user, rows); err != nil {
			logging.FromContext(ctx).Warn().Str("user", user).Err(err).Msg("news cache write failed")
		}

		o.sync.Present(NewsRows{Articles: articles, Status: "Updated"})
	}()
}

// cachedArticles lifts persisted rows into articles. Thumbnails are not
// persisted, so cached renders carry the placeholder until the network
// result replaces them.
func cachedArticles(rows []store.NewsRow) []news.Article {
	articles := make([]news.Article, len(rows))
	for i, r := range rows {
		articles[i] = news.Article{NewsRow: r, Thumb: news.Placeholder()}
	}
	return articles
}
