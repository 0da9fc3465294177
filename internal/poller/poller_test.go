// ABOUTME: Tests for the polling pass: due filtering, bookkeeping and force-fetch
// ABOUTME: Uses an httptest RSS endpoint so real adapter dispatch is exercised

package poller

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rssrs/rssrs/internal/adapter"
	"github.com/rssrs/rssrs/internal/events"
	"github.com/rssrs/rssrs/internal/store"
)

func rssBody(now time.Time) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<rss version="2.0"><channel><title>feed</title>
<item><guid>g1</guid><title>first</title><link>http://example.com/1</link><pubDate>%s</pubDate></item>
<item><guid>g2</guid><title>second</title><link>http://example.com/2</link><pubDate>%s</pubDate></item>
</channel></rss>`,
		now.Format(time.RFC1123Z), now.Add(-time.Hour).Format(time.RFC1123Z))
}

func addSeed(t *testing.T, st *store.Store, name, url string) int64 {
	t.Helper()
	if err := st.InsertSeed(name, url); err != nil {
		t.Fatalf("insert seed %q: %v", name, err)
	}
	seeds, err := st.GetAllSeeds()
	if err != nil {
		t.Fatalf("get seeds: %v", err)
	}
	for _, s := range seeds {
		if s.Name == name {
			return s.ID
		}
	}
	t.Fatalf("seed %q not found after insert", name)
	return 0
}

func newTestPoller(t *testing.T) (*Poller, *store.Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), store.DBFileName)
	st, err := store.Open(dbPath, events.NewBus(nil, zerolog.Nop()), zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	p := New(st, dbPath, adapter.DefaultRegistry(), false, zerolog.Nop())
	return p, st, dbPath
}

func TestCheckSeedsFetchesDueSeeds(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, rssBody(time.Now()))
	}))
	defer srv.Close()

	p, st, _ := newTestPoller(t)
	id := addSeed(t, st, "due", srv.URL)

	if err := p.CheckSeeds(context.Background()); err != nil {
		t.Fatalf("check seeds: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected 1 fetch, got %d", got)
	}

	n, err := st.GetUnreadCount(&id)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 unread articles, got %d", n)
	}

	seed, err := st.GetSeed(id)
	if err != nil {
		t.Fatalf("get seed: %v", err)
	}
	if seed.LastFetchedAt == 0 {
		t.Error("expected last fetch timestamp to be recorded")
	}
	if !seed.LastFetchOK {
		t.Error("expected last fetch marked ok")
	}
}

func TestCheckSeedsSkipsNotDue(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, rssBody(time.Now()))
	}))
	defer srv.Close()

	p, st, _ := newTestPoller(t)
	id := addSeed(t, st, "fresh", srv.URL)
	if err := st.SaveLastFetch(id, time.Now().Unix(), true); err != nil {
		t.Fatalf("save last fetch: %v", err)
	}

	if err := p.CheckSeeds(context.Background()); err != nil {
		t.Fatalf("check seeds: %v", err)
	}
	if got := hits.Load(); got != 0 {
		t.Errorf("expected no fetch for a fresh seed, got %d", got)
	}
}

func TestCheckSeedsRecordsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, st, _ := newTestPoller(t)
	id := addSeed(t, st, "broken", srv.URL)

	if err := p.CheckSeeds(context.Background()); err != nil {
		t.Fatalf("check seeds: %v", err)
	}

	seed, err := st.GetSeed(id)
	if err != nil {
		t.Fatalf("get seed: %v", err)
	}
	if seed.LastFetchedAt == 0 {
		t.Error("expected failed fetch to still record a timestamp")
	}
	if seed.LastFetchOK {
		t.Error("expected last fetch marked failed")
	}

	n, err := st.GetUnreadCount(&id)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no articles after failed fetch, got %d", n)
	}
}

func TestCheckSeedsNoAdapterSkipsBookkeeping(t *testing.T) {
	p, st, _ := newTestPoller(t)
	p.adapters = adapter.Registry{&adapter.T66yAdapter{}}

	id := addSeed(t, st, "unclaimed", "https://example.com/feed")

	if err := p.CheckSeeds(context.Background()); err != nil {
		t.Fatalf("check seeds: %v", err)
	}

	seed, err := st.GetSeed(id)
	if err != nil {
		t.Fatalf("get seed: %v", err)
	}
	if seed.LastFetchedAt != 0 {
		t.Error("expected an unclaimed seed to keep zero bookkeeping")
	}
}

func TestFetchSeedBypassesDueCheck(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, rssBody(time.Now()))
	}))
	defer srv.Close()

	p, st, _ := newTestPoller(t)
	id := addSeed(t, st, "forced", srv.URL)
	if err := st.SaveLastFetch(id, time.Now().Unix(), true); err != nil {
		t.Fatalf("save last fetch: %v", err)
	}

	if err := p.FetchSeed(context.Background(), id); err != nil {
		t.Fatalf("fetch seed: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected forced fetch despite fresh bookkeeping, got %d hits", got)
	}

	n, err := st.GetUnreadCount(&id)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 articles, got %d", n)
	}
}

func TestFetchSeedUnknownID(t *testing.T) {
	p, _, _ := newTestPoller(t)
	if err := p.FetchSeed(context.Background(), 404); err == nil {
		t.Fatal("expected error for unknown seed")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	p, _, _ := newTestPoller(t)
	p.check = 10 * time.Millisecond
	p.maintain = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}
