// ABOUTME: OPML parsing and rendering for seed subscription lists
// ABOUTME: Imports flatten nested folders; exports write a flat outline per seed

package opml

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/rssrs/rssrs/internal/models"
)

// Version is written on export.
const Version = "2.0"

// Subscription is one feed entry from an OPML document.
type Subscription struct {
	URL   string
	Title string
}

type opmlXML struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    headXML  `xml:"head"`
	Body    bodyXML  `xml:"body"`
}

type headXML struct {
	Title string `xml:"title"`
}

type bodyXML struct {
	Outlines []outlineXML `xml:"outline"`
}

type outlineXML struct {
	Text     string       `xml:"text,attr"`
	Title    string       `xml:"title,attr,omitempty"`
	Type     string       `xml:"type,attr,omitempty"`
	XMLURL   string       `xml:"xmlUrl,attr,omitempty"`
	Children []outlineXML `xml:"outline,omitempty"`
}

// Parse reads an OPML document and returns its feeds as a flat list.
// Folder nesting is walked but not preserved. Outlines without an
// xmlUrl attribute are treated as folders, never as feeds.
func Parse(r io.Reader) ([]Subscription, error) {
	var doc opmlXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode opml: %w", err)
	}

	var subs []Subscription
	seen := make(map[string]bool)
	var walk func([]outlineXML)
	walk = func(outlines []outlineXML) {
		for _, o := range outlines {
			if o.XMLURL != "" && !seen[o.XMLURL] {
				seen[o.XMLURL] = true
				title := o.Title
				if title == "" {
					title = o.Text
				}
				subs = append(subs, Subscription{URL: o.XMLURL, Title: title})
			}
			walk(o.Children)
		}
	}
	walk(doc.Body.Outlines)
	return subs, nil
}

// Render writes the seeds as a flat OPML 2.0 document.
func Render(w io.Writer, title string, seeds []models.Seed) error {
	doc := opmlXML{
		Version: Version,
		Head:    headXML{Title: title},
	}
	for _, seed := range seeds {
		doc.Body.Outlines = append(doc.Body.Outlines, outlineXML{
			Text:   seed.Name,
			Title:  seed.Name,
			Type:   "rss",
			XMLURL: seed.URL,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode opml: %w", err)
	}
	return enc.Close()
}
