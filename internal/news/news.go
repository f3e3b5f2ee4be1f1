// Package news fetches headlines from the Hacker News Algolia API and
// enriches each article with a thumbnail scraped from its page metadata.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mpavel/homescreen/internal/logging"
	"github.com/mpavel/homescreen/internal/store"
)

const (
	defaultBaseURL = "https://hn.algolia.com/api/v1/search"

	// topStories is the topic that maps to the front-page listing.
	topStories = "Top Stories"

	// publishedLayout is how article timestamps render in the list.
	publishedLayout = "2006-01-02 15:04"

	// thumbTimeout bounds each article HTML and image fetch.
	thumbTimeout = 8 * time.Second

	userAgent = "homescreen/1.0"
)

// Article is one search hit plus its fetched thumbnail. The embedded row is
// what the freshness store persists; the thumbnail is live-only.
type Article struct {
	store.NewsRow
	Thumb image.Image
}

// Client fetches and enriches news articles.
type Client struct {
	httpClient  *http.Client
	thumbClient *http.Client
	baseURL     string
	memo        *memo
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the search endpoint, used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the search HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithThumbClient overrides the client used for article pages and images.
func WithThumbClient(h *http.Client) Option {
	return func(c *Client) { c.thumbClient = h }
}

// NewClient creates a news client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:  http.DefaultClient,
		thumbClient: &http.Client{Timeout: thumbTimeout},
		baseURL:     defaultBaseURL,
		memo:        newMemo(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Hits []hit `json:"hits"`
}

type hit struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
	ObjectID  string `json:"objectID"`
}

// Fetch runs a topic search and concurrently enriches the first count hits
// with thumbnails. Individual thumbnail failures degrade to a placeholder;
// the fetch as a whole only fails on search transport or decode errors.
func (c *Client) Fetch(ctx context.Context, topic string, count int) ([]Article, error) {
	u := c.searchURL(topic)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news search: unexpected status %s", resp.Status)
	}

	var data searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	hits := data.Hits
	if len(hits) > count {
		hits = hits[:count]
	}

	articles := make([]Article, len(hits))
	g, gctx := errgroup.WithContext(ctx)
	for i, h := range hits {
		i, h := i, h
		g.Go(func() error {
			row := mapHit(h)
			// Thumbnail failure maps to the placeholder per item; the join
			// itself never fails.
			articles[i] = Article{NewsRow: row, Thumb: c.thumbnailOrPlaceholder(gctx, row.URL)}
			return nil
		})
	}
	_ = g.Wait()

	logging.FromContext(ctx).Debug().
		Str("topic", topic).
		Int("articles", len(articles)).
		Msg("news fetched")
	return articles, nil
}

// FetchCached is Fetch behind a process-local per-topic memo. It is a
// short-lived convenience layer, deliberately separate from the on-disk
// freshness store: no TTL, no persistence, gone at process exit.
func (c *Client) FetchCached(ctx context.Context, topic string, count int) ([]Article, error) {
	if cached, ok := c.memo.get(topic); ok {
		return cached, nil
	}
	articles, err := c.Fetch(ctx, topic, count)
	if err != nil {
		return nil, err
	}
	c.memo.put(topic, articles)
	return articles, nil
}

func (c *Client) searchURL(topic string) string {
	if isTopStories(topic) {
		return c.baseURL + "?tags=front_page"
	}
	return fmt.Sprintf("%s?query=%s&tags=story", c.baseURL, url.QueryEscape(topic))
}

// isTopStories reports whether topic means the front-page listing.
func isTopStories(topic string) bool {
	trimmed := strings.TrimSpace(topic)
	return trimmed == "" || strings.EqualFold(trimmed, topStories)
}

// mapHit fills row fields with their documented fallbacks: "Untitled" for a
// missing title, an item link derived from the id (or the site root) for a
// missing url, and the raw timestamp when it does not parse as RFC3339.
func mapHit(h hit) store.NewsRow {
	title := h.Title
	if title == "" {
		title = "Untitled"
	}

	link := h.URL
	if link == "" {
		if h.ObjectID != "" {
			link = "https://news.ycombinator.com/item?id=" + h.ObjectID
		} else {
			link = "https://news.ycombinator.com/"
		}
	}

	published := h.CreatedAt
	if t, err := time.Parse(time.RFC3339, h.CreatedAt); err == nil {
		published = t.Local().Format(publishedLayout)
	}

	return store.NewsRow{
		Title:     title,
		Source:    hostFromURL(link),
		Published: published,
		URL:       link,
	}
}

// hostFromURL extracts the host part of a URL: the substring after the first
// "://" up to the next "/".
func hostFromURL(u string) string {
	s := u
	for i := 0; i+3 <= len(u); i++ {
		if u[i:i+3] == "://" {
			s = u[i+3:]
			break
		}
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			return s[:i]
		}
	}
	return s
}
