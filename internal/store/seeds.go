// ABOUTME: Seed accessors backed by the seeds relation
// ABOUTME: Insertion emits seed/add; fetch bookkeeping is updated by the polling driver

package store

import (
	"database/sql"
	"fmt"

	"github.com/rssrs/rssrs/internal/events"
	"github.com/rssrs/rssrs/internal/models"
)

// InsertSeed creates a new seed with the default polling interval.
// Violating name or URL uniqueness fails without emitting events.
func (s *Store) InsertSeed(name, url string) error {
	err := s.withConn(func(db *sql.DB) error {
		_, err := db.Exec(
			"INSERT INTO seeds (name, url, interval) VALUES (?, ?, ?)",
			name, url, models.DefaultInterval,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert seed: %w", err)
	}

	s.bus.Publish(events.TopicSeedAdd, nil)
	return nil
}

// GetAllSeeds returns every seed.
func (s *Store) GetAllSeeds() ([]models.Seed, error) {
	var seeds []models.Seed
	err := s.withConn(func(db *sql.DB) error {
		var err error
		seeds, err = scanAllSeeds(db)
		return err
	})
	return seeds, err
}

// GetSeed retrieves a single seed by id.
func (s *Store) GetSeed(id int64) (*models.Seed, error) {
	var seed models.Seed
	err := s.withConn(func(db *sql.DB) error {
		row := db.QueryRow(
			"SELECT id, name, url, favicon, interval, last_fetched_at, last_fetch_ok FROM seeds WHERE id = ?",
			id,
		)
		return scanSeed(row.Scan, &seed)
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("seed not found: %d", id)
		}
		return nil, fmt.Errorf("get seed: %w", err)
	}
	return &seed, nil
}

// UpdateSeed writes back the user-editable fields: name, url and interval.
func (s *Store) UpdateSeed(seed *models.Seed) error {
	err := s.withConn(func(db *sql.DB) error {
		result, err := db.Exec(
			"UPDATE seeds SET name = ?, url = ?, interval = ? WHERE id = ?",
			seed.Name, seed.URL, seed.Interval, seed.ID,
		)
		if err != nil {
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return fmt.Errorf("seed not found: %d", seed.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update seed: %w", err)
	}
	return nil
}

// DeleteSeed removes a seed; its articles go with it via the cascade.
func (s *Store) DeleteSeed(id int64) error {
	err := s.withConn(func(db *sql.DB) error {
		result, err := db.Exec("DELETE FROM seeds WHERE id = ?", id)
		if err != nil {
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return fmt.Errorf("seed not found: %d", id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete seed: %w", err)
	}
	return nil
}

// SaveLastFetch records the outcome of a fetch attempt.
func (s *Store) SaveLastFetch(seedID, fetchedAt int64, ok bool) error {
	err := s.withConn(func(db *sql.DB) error {
		_, err := db.Exec(
			"UPDATE seeds SET last_fetched_at = ?, last_fetch_ok = ? WHERE id = ?",
			fetchedAt, boolToInt(ok), seedID,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("save last fetch: %w", err)
	}
	return nil
}

// scanAllSeeds is shared with the read-only polling probe.
func scanAllSeeds(db *sql.DB) ([]models.Seed, error) {
	rows, err := db.Query(
		"SELECT id, name, url, favicon, interval, last_fetched_at, last_fetch_ok FROM seeds ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("query seeds: %w", err)
	}
	defer rows.Close()

	var seeds []models.Seed
	for rows.Next() {
		var seed models.Seed
		if err := scanSeed(rows.Scan, &seed); err != nil {
			return nil, fmt.Errorf("scan seed: %w", err)
		}
		seeds = append(seeds, seed)
	}
	return seeds, rows.Err()
}

func scanSeed(scan func(...any) error, seed *models.Seed) error {
	var (
		favicon sql.NullString
		ok      int
	)
	if err := scan(&seed.ID, &seed.Name, &seed.URL, &favicon, &seed.Interval, &seed.LastFetchedAt, &ok); err != nil {
		return err
	}
	if favicon.Valid {
		seed.Favicon = &favicon.String
	}
	seed.LastFetchOK = ok != 0
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
