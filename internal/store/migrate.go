// ABOUTME: Schema migration keyed on the SQLite user_version pragma
// ABOUTME: Idempotent DDL runs in one transaction when the version is behind

package store

import (
	"fmt"
)

// CurrentDBVersion is the schema version this build expects.
const CurrentDBVersion = 4

const schema = `
	CREATE TABLE IF NOT EXISTS seeds (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		url TEXT NOT NULL UNIQUE,
		favicon TEXT,
		interval INTEGER NOT NULL DEFAULT 10,
		last_fetched_at INTEGER NOT NULL DEFAULT 0,
		last_fetch_ok INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS articles (
		id INTEGER PRIMARY KEY,
		seed_id INTEGER NOT NULL REFERENCES seeds(id) ON DELETE CASCADE ON UPDATE CASCADE,
		guid TEXT NOT NULL UNIQUE,
		title TEXT,
		author TEXT,
		"desc" TEXT,
		link TEXT,
		pub_date INTEGER NOT NULL,
		unread INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_articles_pub_date ON articles(pub_date DESC);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS watch_list (
		id INTEGER PRIMARY KEY,
		keyword TEXT NOT NULL UNIQUE
	);
`

// migrate brings the schema up to CurrentDBVersion. The DDL is idempotent,
// so re-running against an up-to-date database is a no-op.
func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= CurrentDBVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", CurrentDBVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}

	s.log.Info().Int("from", version).Int("to", CurrentDBVersion).Msg("database migrated")
	return nil
}
