// ABOUTME: Feed discovery: resolve a page URL to the feed it advertises
// ABOUTME: Tries direct parse, HTML alternate links, then common path probing

package discover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/rssrs/rssrs/internal/adapter"
)

// Common feed paths to probe when other discovery methods fail
var commonFeedPaths = []string{
	"/feed.xml",
	"/feed",
	"/rss.xml",
	"/rss",
	"/atom.xml",
	"/atom",
	"/index.xml",
	"/feeds/posts/default",
}

var (
	ErrNoFeedFound = errors.New("no feed found at URL")
	ErrInvalidURL  = errors.New("invalid URL")
)

// Feed is a discovered feed endpoint.
type Feed struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Discover attempts to find a feed starting from the given URL. It tries
// the following strategies in order:
//  1. Parse the URL as a direct feed
//  2. Follow <link rel="alternate"> elements in the page HTML
//  3. Probe common feed URL patterns on the same host
func Discover(ctx context.Context, client *http.Client, rawURL string) (*Feed, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: missing scheme or host", ErrInvalidURL)
	}

	feed, body, err := tryDirectFeed(ctx, client, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	if feed != nil {
		return feed, nil
	}

	for _, candidate := range alternateLinks(body, parsed) {
		verified, _, err := tryDirectFeed(ctx, client, candidate.URL)
		if err == nil && verified != nil {
			if verified.Title == "" {
				verified.Title = candidate.Title
			}
			return verified, nil
		}
	}

	probeBase := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	for _, path := range commonFeedPaths {
		feed, _, err := tryDirectFeed(ctx, client, probeBase.String()+path)
		if err == nil && feed != nil {
			return feed, nil
		}
	}

	return nil, ErrNoFeedFound
}

// tryDirectFeed fetches the URL and attempts to parse it as a feed. A
// body that is not a feed is returned for HTML inspection, not an error.
func tryDirectFeed(ctx context.Context, client *http.Client, feedURL string) (*Feed, []byte, error) {
	body, err := adapter.FetchBody(ctx, client, feedURL)
	if err != nil {
		return nil, nil, err
	}

	parsed, parseErr := gofeed.NewParser().Parse(bytes.NewReader(body))
	if parseErr != nil {
		return nil, body, nil
	}
	return &Feed{URL: feedURL, Title: parsed.Title}, body, nil
}

// alternateLinks returns feed candidates advertised by the page's
// <link rel="alternate"> elements, resolved against the page URL.
func alternateLinks(body []byte, base *url.URL) []Feed {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var feeds []Feed
	doc.Find(`link[rel="alternate"]`).Each(func(_ int, sel *goquery.Selection) {
		linkType, _ := sel.Attr("type")
		if !isFeedContentType(linkType) {
			return
		}
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		title, _ := sel.Attr("title")
		feeds = append(feeds, Feed{URL: base.ResolveReference(ref).String(), Title: title})
	})
	return feeds
}

func isFeedContentType(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.Contains(contentType, "rss") ||
		strings.Contains(contentType, "atom") ||
		strings.Contains(contentType, "xml")
}
