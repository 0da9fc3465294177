// ABOUTME: Site-specific scraping adapter for t66y forum listings
// ABOUTME: Extracts rows via CSS selectors, then fetches each article body separately

package adapter

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rssrs/rssrs/internal/models"
)

const (
	t66yHost   = "www.t66y.com"
	t66yOrigin = "https://t66y.com/"
)

// T66yAdapter scrapes the t66y listing page. Unlike the RSS adapter, a
// malformed row fails the whole seed.
type T66yAdapter struct {
	// Origin overrides the link-resolution origin; empty means the real
	// site. Tests point it at a local server.
	Origin string
}

func (a *T66yAdapter) origin() string {
	if a.Origin != "" {
		return a.Origin
	}
	return t66yOrigin
}

// Supports claims URLs whose host is the fixed site host.
func (a *T66yAdapter) Supports(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Host == t66yHost
}

// Parse extracts article rows from the listing table. The publication
// time comes from an epoch-seconds data attribute; relative links are
// resolved against the site origin. Descriptions are filled in by Fetch.
func (a *T66yAdapter) Parse(data []byte, seedID int64) ([]models.Article, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	var (
		articles []models.Article
		rowErr   error
	)
	doc.Find("#ajaxtable > tbody:nth-child(2) .tr3").EachWithBreak(func(i int, row *goquery.Selection) bool {
		titleLink := row.Find(".tal h3 a").First()
		if titleLink.Length() == 0 {
			rowErr = fmt.Errorf("row %d: no title link", i)
			return false
		}
		td3 := row.Find("td:nth-child(3)").First()
		tsAttr, ok := td3.Find("span[data-timestamp]").First().Attr("data-timestamp")
		if !ok {
			rowErr = fmt.Errorf("row %d: no timestamp attribute", i)
			return false
		}
		pubDate, err := strconv.ParseInt(tsAttr, 10, 64)
		if err != nil {
			rowErr = fmt.Errorf("row %d: parse timestamp: %w", i, err)
			return false
		}

		href, _ := titleLink.Attr("href")
		link := a.origin() + href
		title := strings.TrimSpace(titleLink.Text())
		author := strings.TrimSpace(td3.Find("a").First().Text())

		articles = append(articles, models.Article{
			SeedID:  seedID,
			GUID:    link,
			Title:   models.OptionalString(title),
			Author:  models.OptionalString(author),
			Link:    &link,
			PubDate: pubDate,
			Unread:  true,
		})
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return articles, nil
}

// Fetch lists the page, then performs one additional GET per article on
// the same client to populate the description from the content element.
func (a *T66yAdapter) Fetch(ctx context.Context, client *http.Client, seed *models.Seed) ([]models.Article, error) {
	body, err := FetchBody(ctx, client, seed.URL)
	if err != nil {
		return nil, err
	}
	articles, err := a.Parse(body, seed.ID)
	if err != nil {
		return nil, err
	}

	for i := range articles {
		page, err := FetchBody(ctx, client, *articles[i].Link)
		if err != nil {
			return nil, err
		}
		desc, err := extractDescription(page)
		if err != nil {
			return nil, fmt.Errorf("article %s: %w", *articles[i].Link, err)
		}
		articles[i].Desc = &desc
	}

	return articles, nil
}

func extractDescription(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse article page: %w", err)
	}
	content := doc.Find("div.tpc_content").First()
	if content.Length() == 0 {
		return "", fmt.Errorf("no content element")
	}
	html, err := content.Html()
	if err != nil {
		return "", fmt.Errorf("render content: %w", err)
	}
	return html, nil
}
