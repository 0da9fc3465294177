// ABOUTME: Universal RSS adapter built on gofeed
// ABOUTME: Drops items without a usable pub date or older than thirty days

package adapter

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/rssrs/rssrs/internal/models"
)

// rssWindow is how far back items are accepted relative to now.
const rssWindow = 30 * 24 * time.Hour

// RSSAdapter parses RSS/Atom channels. It claims every URL, so it must be
// last in the registry.
type RSSAdapter struct{}

// Supports always claims the URL.
func (a *RSSAdapter) Supports(string) bool { return true }

// Parse decodes the payload as a feed channel. The guid falls back from
// the item guid to its link to its title. Items without a parseable
// publication date are dropped, as are items older than the window.
func (a *RSSAdapter) Parse(data []byte, seedID int64) ([]models.Article, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	deadline := time.Now().Add(-rssWindow)
	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		guid := item.GUID
		if guid == "" {
			guid = item.Link
		}
		if guid == "" {
			guid = item.Title
		}

		published := item.PublishedParsed
		if published == nil {
			continue
		}
		if !published.After(deadline) {
			continue
		}

		var author string
		if item.Author != nil {
			author = item.Author.Name
		}

		articles = append(articles, models.Article{
			SeedID:  seedID,
			GUID:    guid,
			Title:   models.OptionalString(item.Title),
			Author:  models.OptionalString(author),
			Desc:    models.OptionalString(item.Description),
			Link:    models.OptionalString(item.Link),
			PubDate: published.Unix(),
			Unread:  true,
		})
	}

	return articles, nil
}

// Fetch is the default protocol: one GET, then Parse.
func (a *RSSAdapter) Fetch(ctx context.Context, client *http.Client, seed *models.Seed) ([]models.Article, error) {
	body, err := FetchBody(ctx, client, seed.URL)
	if err != nil {
		return nil, err
	}
	return a.Parse(body, seed.ID)
}
