// ABOUTME: Subscription management endpoints: OPML import/export and discovery
// ABOUTME: Import inserts every feed it can; duplicates are skipped, not errors

package server

import (
	"errors"
	"net/http"

	"github.com/rssrs/rssrs/internal/adapter"
	"github.com/rssrs/rssrs/internal/discover"
	"github.com/rssrs/rssrs/internal/opml"
)

func (s *Server) exportOPML(w http.ResponseWriter, r *http.Request) {
	seeds, err := s.store.GetAllSeeds()
	if err != nil {
		s.log.Warn().Err(err).Msg("export opml")
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/x-opml")
	if err := opml.Render(w, "rssrs seeds", seeds); err != nil {
		s.log.Warn().Err(err).Msg("render opml")
	}
}

// importOPML parses the request body as OPML and inserts every feed as a
// seed. Feeds that collide with existing names or URLs are counted as
// skipped. The reply reports both counts.
func (s *Server) importOPML(w http.ResponseWriter, r *http.Request) {
	subs, err := opml.Parse(r.Body)
	if err != nil {
		http.Error(w, "malformed opml document", http.StatusBadRequest)
		return
	}

	var imported, skipped int
	for _, sub := range subs {
		name := sub.Title
		if name == "" {
			name = sub.URL
		}
		if err := s.store.InsertSeed(name, sub.URL); err != nil {
			skipped++
			continue
		}
		imported++
	}

	s.writeJSON(w, http.StatusOK, map[string]int{"imported": imported, "skipped": skipped})
}

func (s *Server) discoverFeed(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}

	client, err := s.httpClient()
	if err != nil {
		s.log.Warn().Err(err).Msg("build http client")
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	feed, err := discover.Discover(r.Context(), client, rawURL)
	switch {
	case errors.Is(err, discover.ErrInvalidURL):
		http.Error(w, "invalid url", http.StatusBadRequest)
	case err != nil:
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no feed found"})
	default:
		s.writeJSON(w, http.StatusOK, feed)
	}
}

// httpClient builds an outbound client honoring the stored proxy and
// timeout settings, same as the polling pass does.
func (s *Server) httpClient() (*http.Client, error) {
	proxy, err := s.store.Proxy()
	if err != nil {
		return nil, err
	}
	generic, err := s.store.Generic()
	if err != nil {
		return nil, err
	}
	return adapter.NewClient(proxy, generic)
}
