package news

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/html"

	// Register decoders for the image formats article thumbnails ship in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/mpavel/homescreen/internal/logging"
)

//go:embed placeholder.png
var placeholderFS embed.FS

// metaPriority is the fixed order in which page metadata is consulted for a
// thumbnail URL.
var metaPriority = []string{
	"og:image",
	"og:image:secure_url",
	"twitter:image",
	"twitter:image:src",
}

// errNoImageMeta means the article page carries none of the known image tags.
var errNoImageMeta = errors.New("no image metadata")

// thumbnailOrPlaceholder fetches a thumbnail for the article, degrading to
// the bundled placeholder and finally to a blank buffer. It never fails.
func (c *Client) thumbnailOrPlaceholder(ctx context.Context, articleURL string) image.Image {
	img, err := c.fetchThumbnail(ctx, articleURL)
	if err != nil {
		logging.FromContext(ctx).Debug().
			Str("article", articleURL).
			Err(err).
			Msg("thumbnail degraded to placeholder")
		return Placeholder()
	}
	return img
}

// fetchThumbnail downloads the article page, locates an image URL in its
// metadata, and downloads and decodes that image.
func (c *Client) fetchThumbnail(ctx context.Context, articleURL string) (image.Image, error) {
	page, err := c.get(ctx, articleURL)
	if err != nil {
		return nil, fmt.Errorf("fetching article page: %w", err)
	}

	imgURL, err := metaImageURL(strings.NewReader(page))
	if err != nil {
		return nil, err
	}

	resolved, err := resolveImageURL(articleURL, imgURL)
	if err != nil {
		return nil, err
	}

	raw, err := c.get(ctx, resolved)
	if err != nil {
		return nil, fmt.Errorf("downloading thumbnail: %w", err)
	}

	img, _, err := image.Decode(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding thumbnail: %w", err)
	}
	return img, nil
}

func (c *Client) get(ctx context.Context, u string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.thumbClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// metaImageURL scans the page's meta tags and returns the image URL with the
// highest priority. Scanning tolerates malformed HTML; the tokenizer just
// stops at the end of input.
func metaImageURL(r io.Reader) (string, error) {
	found := map[string]string{}

	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "meta" || !hasAttr {
			continue
		}

		var key, content string
		for {
			k, v, more := z.TagAttr()
			switch string(k) {
			case "property", "name":
				key = string(v)
			case "content":
				content = string(v)
			}
			if !more {
				break
			}
		}
		if key == "" || content == "" {
			continue
		}
		if _, ok := found[key]; !ok {
			found[key] = content
		}
	}

	for _, key := range metaPriority {
		if u, ok := found[key]; ok {
			return u, nil
		}
	}
	return "", errNoImageMeta
}

// resolveImageURL resolves a possibly-relative image URL against the article
// and appends the fixed size hints the thumbnail box renders at.
func resolveImageURL(articleURL, imgURL string) (string, error) {
	base, err := url.Parse(articleURL)
	if err != nil {
		return "", fmt.Errorf("parsing article url: %w", err)
	}
	ref, err := url.Parse(imgURL)
	if err != nil {
		return "", fmt.Errorf("parsing image url: %w", err)
	}

	resolved := base.ResolveReference(ref)
	q := resolved.Query()
	q.Set("w", "300")
	q.Set("h", "150")
	resolved.RawQuery = q.Encode()
	return resolved.String(), nil
}

var (
	placeholderOnce sync.Once   //nolint:gochecknoglobals // decoded at most once per process
	placeholderImg  image.Image //nolint:gochecknoglobals
)

// Placeholder returns the bundled fallback thumbnail, or a minimal blank
// buffer if even that cannot be decoded. Cached news renders use it too,
// since thumbnails are never persisted.
func Placeholder() image.Image {
	placeholderOnce.Do(func() {
		data, err := placeholderFS.ReadFile("placeholder.png")
		if err == nil {
			if img, _, decErr := image.Decode(strings.NewReader(string(data))); decErr == nil {
				placeholderImg = img
				return
			}
		}
		placeholderImg = image.NewRGBA(image.Rect(0, 0, 10, 10))
	})
	return placeholderImg
}
