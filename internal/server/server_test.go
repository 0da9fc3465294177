// ABOUTME: Handler tests against a real store and an in-memory router
// ABOUTME: Exercises the call-and-reply contract and the listing endpoints

package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rssrs/rssrs/internal/adapter"
	"github.com/rssrs/rssrs/internal/events"
	"github.com/rssrs/rssrs/internal/models"
	"github.com/rssrs/rssrs/internal/poller"
	"github.com/rssrs/rssrs/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), store.DBFileName)
	st, err := store.Open(dbPath, events.NewBus(nil, zerolog.Nop()), zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	p := poller.New(st, dbPath, adapter.DefaultRegistry(), false, zerolog.Nop())
	return New(st, p, zerolog.Nop()), st
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body == "" {
		rd = bytes.NewReader(nil)
	} else {
		rd = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeOK(t *testing.T, rec *httptest.ResponseRecorder) bool {
	t.Helper()
	var reply struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode reply %q: %v", rec.Body.String(), err)
	}
	return reply.OK
}

func TestInsertAndListSeeds(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/seeds", `{"name":"blog","url":"https://example.com/feed"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !decodeOK(t, rec) {
		t.Fatal("expected ok=true")
	}

	rec = doJSON(t, h, http.MethodGet, "/api/seeds", "")
	var seeds []models.Seed
	if err := json.Unmarshal(rec.Body.Bytes(), &seeds); err != nil {
		t.Fatalf("decode seeds: %v", err)
	}
	if len(seeds) != 1 || seeds[0].Name != "blog" {
		t.Fatalf("unexpected seeds: %+v", seeds)
	}
}

func TestInsertSeedDuplicateRepliesOKFalse(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	doJSON(t, h, http.MethodPost, "/api/seeds", `{"name":"blog","url":"https://example.com/feed"}`)
	rec := doJSON(t, h, http.MethodPost, "/api/seeds", `{"name":"blog","url":"https://example.com/other"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("store failures ride HTTP 200, got %d", rec.Code)
	}
	if decodeOK(t, rec) {
		t.Fatal("expected ok=false for duplicate name")
	}
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	for _, path := range []string{"/api/seeds", "/api/read-all", "/api/watch-list"} {
		rec := doJSON(t, h, http.MethodPost, path, `{not json`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400 for malformed body, got %d", path, rec.Code)
		}
	}
}

func TestUpdateAndDeleteSeed(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Handler()

	doJSON(t, h, http.MethodPost, "/api/seeds", `{"name":"blog","url":"https://example.com/feed"}`)
	seeds, err := st.GetAllSeeds()
	if err != nil || len(seeds) != 1 {
		t.Fatalf("seed setup: %v %d", err, len(seeds))
	}
	id := seeds[0].ID

	body, _ := json.Marshal(map[string]any{"id": id, "name": "renamed", "url": "https://example.com/feed", "interval": 30})
	rec := doJSON(t, h, http.MethodPut, "/api/seeds", string(body))
	if !decodeOK(t, rec) {
		t.Fatal("expected update ok")
	}
	seed, err := st.GetSeed(id)
	if err != nil {
		t.Fatalf("get seed: %v", err)
	}
	if seed.Name != "renamed" || seed.Interval != 30 {
		t.Errorf("update not applied: %+v", seed)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/seeds/"+itoa(id), "")
	if !decodeOK(t, rec) {
		t.Fatal("expected delete ok")
	}
	rec = doJSON(t, h, http.MethodDelete, "/api/seeds/"+itoa(id), "")
	if decodeOK(t, rec) {
		t.Fatal("expected ok=false for deleting a missing seed")
	}
}

func TestArticleFlow(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Handler()

	doJSON(t, h, http.MethodPost, "/api/seeds", `{"name":"blog","url":"https://example.com/feed"}`)
	seeds, _ := st.GetAllSeeds()
	seedID := seeds[0].ID

	now := time.Now().Unix()
	arts := []models.Article{
		{GUID: "g1", Title: models.OptionalString("alpha"), PubDate: now, Unread: true},
		{GUID: "g2", Title: models.OptionalString("beta"), PubDate: now - 1, Unread: true},
	}
	if _, err := st.InsertArticles(seedID, arts); err != nil {
		t.Fatalf("insert articles: %v", err)
	}

	rec := doJSON(t, h, http.MethodGet, "/api/articles?limit=10", "")
	var page store.ArticlePage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(page.Articles))
	}

	rec = doJSON(t, h, http.MethodGet, "/api/unread-count", "")
	if !strings.Contains(rec.Body.String(), `"count":2`) {
		t.Fatalf("unexpected count reply: %s", rec.Body.String())
	}

	artID := page.Articles[0].ID
	rec = doJSON(t, h, http.MethodPost, "/api/articles/"+itoa(artID)+"/read", `{"read":true}`)
	if !decodeOK(t, rec) {
		t.Fatal("expected read ok")
	}

	rec = doJSON(t, h, http.MethodPost, "/api/read-all", `{}`)
	if !decodeOK(t, rec) {
		t.Fatal("expected read-all ok")
	}
	rec = doJSON(t, h, http.MethodGet, "/api/unread-count", "")
	if !strings.Contains(rec.Body.String(), `"count":0`) {
		t.Fatalf("expected zero unread, got %s", rec.Body.String())
	}
}

func TestWatchListEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/api/watch-list", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty list, got %s", rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/api/watch-list", `{"keyword":"rust"}`)
	if !decodeOK(t, rec) {
		t.Fatal("expected add ok")
	}

	rec = doJSON(t, h, http.MethodGet, "/api/watch-list", "")
	var keywords []string
	if err := json.Unmarshal(rec.Body.Bytes(), &keywords); err != nil {
		t.Fatalf("decode keywords: %v", err)
	}
	if len(keywords) != 1 || keywords[0] != "rust" {
		t.Fatalf("unexpected keywords: %v", keywords)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/watch-list", `{"keyword":"rust"}`)
	if !decodeOK(t, rec) {
		t.Fatal("expected delete ok")
	}
}

func TestSettingsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/api/settings/proxy", "")
	if !strings.Contains(rec.Body.String(), `"value":""`) {
		t.Fatalf("expected empty value for unset key, got %s", rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPut, "/api/settings/proxy", `{"value":"{\"type\":\"http\",\"host\":\"127.0.0.1\",\"port\":8080}"}`)
	if !decodeOK(t, rec) {
		t.Fatal("expected put ok")
	}

	rec = doJSON(t, h, http.MethodGet, "/api/settings/proxy", "")
	if !strings.Contains(rec.Body.String(), "127.0.0.1") {
		t.Fatalf("expected stored value back, got %s", rec.Body.String())
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
