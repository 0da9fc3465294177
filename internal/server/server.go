// ABOUTME: JSON command surface over chi exposing store and polling operations
// ABOUTME: Boolean commands follow a call-and-reply contract: {"ok":bool}, HTTP 200

package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rssrs/rssrs/internal/poller"
	"github.com/rssrs/rssrs/internal/store"
)

// Server exposes the aggregator over HTTP for local frontends.
type Server struct {
	store  *store.Store
	poller *poller.Poller
	log    zerolog.Logger
}

func New(st *store.Store, p *poller.Poller, log zerolog.Logger) *Server {
	return &Server{
		store:  st,
		poller: p,
		log:    log.With().Str("component", "server").Logger(),
	}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/seeds", func(r chi.Router) {
			r.Get("/", s.listSeeds)
			r.Post("/", s.insertSeed)
			r.Put("/", s.updateSeed)
			r.Delete("/{id}", s.deleteSeed)
			r.Post("/{id}/fetch", s.fetchSeed)
		})

		r.Get("/articles", s.listArticles)
		r.Get("/unread-count", s.unreadCount)
		r.Post("/articles/{id}/read", s.readArticle)
		r.Post("/read-all", s.readAll)

		r.Route("/watch-list", func(r chi.Router) {
			r.Get("/", s.getWatchList)
			r.Post("/", s.addWatchKeyword)
			r.Delete("/", s.deleteWatchKeyword)
		})

		r.Get("/opml", s.exportOPML)
		r.Post("/opml", s.importOPML)
		r.Get("/discover", s.discoverFeed)

		r.Route("/settings/{key}", func(r chi.Router) {
			r.Get("/", s.getSetting)
			r.Put("/", s.putSetting)
		})
	})

	return r
}

type okReply struct {
	OK bool `json:"ok"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn().Err(err).Msg("encode response")
	}
}

// writeOutcome reports a command result. Store failures are part of the
// reply, not the transport: ok=false still travels as HTTP 200.
func (s *Server) writeOutcome(w http.ResponseWriter, op string, err error) {
	if err != nil {
		s.log.Warn().Err(err).Str("op", op).Msg("command failed")
	}
	s.writeJSON(w, http.StatusOK, okReply{OK: err == nil})
}

// decode unmarshals the request body, replying 400 on malformed JSON.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return false
	}
	return true
}

// idParam parses the {id} route fragment.
func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// seedIDQuery parses an optional seed_id query parameter.
func seedIDQuery(r *http.Request) (*int64, error) {
	raw := r.URL.Query().Get("seed_id")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
