// ABOUTME: Cooperative scheduler driving periodic seed checks and maintenance
// ABOUTME: Dispatches due seeds to the first claiming adapter and records fetch outcomes

package poller

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rssrs/rssrs/internal/adapter"
	"github.com/rssrs/rssrs/internal/models"
	"github.com/rssrs/rssrs/internal/store"
)

const (
	// CheckInterval is the seed-check cadence in release builds.
	CheckInterval = 60 * time.Second

	// DebugCheckInterval replaces CheckInterval when debug mode is on.
	DebugCheckInterval = 10 * time.Second

	// MaintenanceInterval is how often retention compaction runs.
	MaintenanceInterval = time.Hour
)

// Poller walks all seeds on a timer, fetches the due ones and commits
// the results. A second timer runs store maintenance.
type Poller struct {
	store    *store.Store
	dbPath   string
	adapters adapter.Registry
	check    time.Duration
	maintain time.Duration
	log      zerolog.Logger

	// now is swapped in tests.
	now func() time.Time
}

// New builds a poller. Debug mode shortens the seed-check cadence.
func New(st *store.Store, dbPath string, adapters adapter.Registry, debug bool, log zerolog.Logger) *Poller {
	check := CheckInterval
	if debug {
		check = DebugCheckInterval
	}
	return &Poller{
		store:    st,
		dbPath:   dbPath,
		adapters: adapters,
		check:    check,
		maintain: MaintenanceInterval,
		log:      log.With().Str("component", "poller").Logger(),
		now:      time.Now,
	}
}

// Run drives both periodic tasks until the context is canceled. A tick
// handler runs to completion before the next tick of the same task is
// taken, so ticks never overlap.
func (p *Poller) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(p.check)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := p.CheckSeeds(ctx); err != nil {
					p.log.Warn().Err(err).Msg("seed check failed")
				}
			}
		}
	}()

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(p.maintain)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := p.store.Optimize(p.now()); err != nil {
					p.log.Warn().Err(err).Msg("maintenance failed")
				}
			}
		}
	}()

	wg.Wait()
}

// CheckSeeds performs one polling pass: load settings and seeds through
// the read-only probe, then fetch every due seed sequentially. One seed
// failing does not stop the pass.
func (p *Poller) CheckSeeds(ctx context.Context) error {
	proxy, generic, seeds, err := store.Probe(p.dbPath)
	if err != nil {
		return err
	}

	client, err := adapter.NewClient(proxy, generic)
	if err != nil {
		return err
	}

	now := p.now().Unix()
	for i := range seeds {
		seed := &seeds[i]
		if !seed.Due(now) {
			continue
		}
		p.fetchOne(ctx, client, seed)
	}
	return nil
}

// FetchSeed force-polls a single seed, bypassing the due check.
func (p *Poller) FetchSeed(ctx context.Context, seedID int64) error {
	seed, err := p.store.GetSeed(seedID)
	if err != nil {
		return err
	}
	proxy, err := p.store.Proxy()
	if err != nil {
		return err
	}
	generic, err := p.store.Generic()
	if err != nil {
		return err
	}
	client, err := adapter.NewClient(proxy, generic)
	if err != nil {
		return err
	}

	p.fetchOne(ctx, client, seed)
	return nil
}

// fetchOne dispatches the seed to the first claiming adapter and records
// the outcome. A seed no adapter claims is skipped without touching its
// bookkeeping.
func (p *Poller) fetchOne(ctx context.Context, client *http.Client, seed *models.Seed) {
	ad := p.adapters.ForURL(seed.URL)
	if ad == nil {
		p.log.Warn().Str("seed", seed.Name).Msg("no adapter for seed")
		return
	}

	p.log.Info().Str("seed", seed.Name).Int64("seed_id", seed.ID).Msg("fetching")

	articles, err := ad.Fetch(ctx, client, seed)
	if err != nil {
		p.log.Warn().Err(err).Str("seed", seed.Name).Msg("fetch failed")
		p.saveOutcome(seed.ID, false)
		return
	}

	if _, err := p.store.InsertArticles(seed.ID, articles); err != nil {
		p.log.Warn().Err(err).Str("seed", seed.Name).Msg("ingest failed")
		p.saveOutcome(seed.ID, false)
		return
	}

	p.saveOutcome(seed.ID, true)
}

func (p *Poller) saveOutcome(seedID int64, ok bool) {
	if err := p.store.SaveLastFetch(seedID, p.now().Unix(), ok); err != nil {
		p.log.Warn().Err(err).Int64("seed_id", seedID).Msg("save fetch bookkeeping")
	}
}
