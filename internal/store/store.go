// ABOUTME: SQLite-backed store owning the process-wide database handle
// ABOUTME: All access goes through a mutex-scoped closure over the connection

package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/rssrs/rssrs/internal/events"
	"github.com/rssrs/rssrs/internal/models"
)

// DBFileName is the database file created inside the data directory.
const DBFileName = "rssrs.db"

// Store mediates every access to the embedded database. The raw handle
// never escapes; operations borrow the connection inside withConn.
type Store struct {
	mu  sync.Mutex
	db  *sql.DB
	bus *events.Bus
	log zerolog.Logger
}

// Open initializes the database at dbPath, running migrations if needed.
// The bus receives the store's derived events; it may be nil.
func Open(dbPath string, bus *events.Bus, log zerolog.Logger) (*Store, error) {
	dir := filepath.Dir(dbPath)
	// 0700: reading habits are personal data
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{
		db:  db,
		bus: bus,
		log: log.With().Str("component", "store").Logger(),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// withConn runs op while holding the store mutex. Every operation on the
// shared handle goes through here so the mutex is released on all exit
// paths. Event emission happens after the closure returns, never while
// the mutex is held.
func (s *Store) withConn(op func(db *sql.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return op(s.db)
}

// Probe opens a separate read-only connection and loads the settings and
// seeds the polling driver needs, so the probe does not contend with
// command handlers on the primary handle.
func Probe(dbPath string) (models.ProxySettings, models.GenericSettings, []models.Seed, error) {
	var (
		proxy   models.ProxySettings
		generic models.GenericSettings
	)

	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return proxy, generic, nil, fmt.Errorf("open database read-only: %w", err)
	}
	defer db.Close()

	rawProxy, err := readSetting(db, models.SettingProxy)
	if err != nil {
		return proxy, generic, nil, err
	}
	proxy, err = models.ParseProxySettings(rawProxy)
	if err != nil {
		return proxy, generic, nil, err
	}

	rawGeneric, err := readSetting(db, models.SettingGeneric)
	if err != nil {
		return proxy, generic, nil, err
	}
	generic, err = models.ParseGenericSettings(rawGeneric)
	if err != nil {
		return proxy, generic, nil, err
	}

	seeds, err := scanAllSeeds(db)
	if err != nil {
		return proxy, generic, nil, err
	}

	return proxy, generic, seeds, nil
}
