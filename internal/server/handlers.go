// ABOUTME: HTTP handlers mapping the JSON API onto store and poller operations
// ABOUTME: Query listing and reads return data; mutations reply with {"ok":bool}

package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rssrs/rssrs/internal/models"
	"github.com/rssrs/rssrs/internal/store"
)

func (s *Server) listSeeds(w http.ResponseWriter, r *http.Request) {
	seeds, err := s.store.GetAllSeeds()
	if err != nil {
		s.log.Warn().Err(err).Msg("list seeds")
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if seeds == nil {
		seeds = []models.Seed{}
	}
	s.writeJSON(w, http.StatusOK, seeds)
}

func (s *Server) insertSeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	s.writeOutcome(w, "insert_seed", s.store.InsertSeed(req.Name, req.URL))
}

func (s *Server) updateSeed(w http.ResponseWriter, r *http.Request) {
	var seed models.Seed
	if !s.decode(w, r, &seed) {
		return
	}
	s.writeOutcome(w, "update_seed", s.store.UpdateSeed(&seed))
}

func (s *Server) deleteSeed(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "bad seed id", http.StatusBadRequest)
		return
	}
	s.writeOutcome(w, "delete_seed", s.store.DeleteSeed(id))
}

func (s *Server) fetchSeed(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "bad seed id", http.StatusBadRequest)
		return
	}
	s.writeOutcome(w, "fetch_seed", s.poller.FetchSeed(r.Context(), id))
}

func (s *Server) listArticles(w http.ResponseWriter, r *http.Request) {
	seedID, err := seedIDQuery(r)
	if err != nil {
		http.Error(w, "bad seed_id", http.StatusBadRequest)
		return
	}

	q := store.ArticleQuery{
		SeedID: seedID,
		Cursor: r.URL.Query().Get("cursor"),
		Search: r.URL.Query().Get("search"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
		q.Limit = limit
	}

	page, err := s.store.ListArticles(q)
	if err != nil {
		s.log.Warn().Err(err).Msg("list articles")
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

func (s *Server) unreadCount(w http.ResponseWriter, r *http.Request) {
	seedID, err := seedIDQuery(r)
	if err != nil {
		http.Error(w, "bad seed_id", http.StatusBadRequest)
		return
	}
	n, err := s.store.GetUnreadCount(seedID)
	if err != nil {
		s.log.Warn().Err(err).Msg("unread count")
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (s *Server) readArticle(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "bad article id", http.StatusBadRequest)
		return
	}
	var req struct {
		Read bool `json:"read"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	s.writeOutcome(w, "read_article", s.store.ReadArticle(id, req.Read))
}

func (s *Server) readAll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SeedID *int64 `json:"seed_id"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	s.writeOutcome(w, "read_all", s.store.ReadAll(req.SeedID))
}

func (s *Server) getWatchList(w http.ResponseWriter, r *http.Request) {
	keywords, err := s.store.GetWatchList()
	if err != nil {
		s.log.Warn().Err(err).Msg("get watch list")
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if keywords == nil {
		keywords = []string{}
	}
	s.writeJSON(w, http.StatusOK, keywords)
}

func (s *Server) addWatchKeyword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keyword string `json:"keyword"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	s.writeOutcome(w, "add_watch_keyword", s.store.AddWatchKeyword(req.Keyword))
}

func (s *Server) deleteWatchKeyword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keyword string `json:"keyword"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	s.writeOutcome(w, "delete_watch_keyword", s.store.DeleteWatchKeyword(req.Keyword))
}

func (s *Server) getSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, err := s.store.GetSetting(key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("get setting")
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"value": value})
}

func (s *Server) putSetting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value string `json:"value"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	s.writeOutcome(w, "set_setting", s.store.SetSetting(chi.URLParam(r, "key"), req.Value))
}
