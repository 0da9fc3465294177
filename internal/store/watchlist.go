// ABOUTME: Watch-list keyword CRUD backing the watched-articles query mode
// ABOUTME: Every mutation emits watchlist/change

package store

import (
	"database/sql"
	"fmt"

	"github.com/rssrs/rssrs/internal/events"
)

// GetWatchList returns all watch keywords.
func (s *Store) GetWatchList() ([]string, error) {
	var keywords []string
	err := s.withConn(func(db *sql.DB) error {
		var err error
		keywords, err = scanWatchList(db)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get watch list: %w", err)
	}
	return keywords, nil
}

// AddWatchKeyword inserts a keyword; duplicates fail without emitting.
func (s *Store) AddWatchKeyword(keyword string) error {
	err := s.withConn(func(db *sql.DB) error {
		_, err := db.Exec("INSERT INTO watch_list (keyword) VALUES (?)", keyword)
		return err
	})
	if err != nil {
		return fmt.Errorf("add watch keyword: %w", err)
	}
	s.bus.Publish(events.TopicWatchlistChange, nil)
	return nil
}

// DeleteWatchKeyword removes a keyword.
func (s *Store) DeleteWatchKeyword(keyword string) error {
	err := s.withConn(func(db *sql.DB) error {
		result, err := db.Exec("DELETE FROM watch_list WHERE keyword = ?", keyword)
		if err != nil {
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return fmt.Errorf("keyword not found: %s", keyword)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete watch keyword: %w", err)
	}
	s.bus.Publish(events.TopicWatchlistChange, nil)
	return nil
}

func scanWatchList(db *sql.DB) ([]string, error) {
	rows, err := db.Query("SELECT keyword FROM watch_list ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query watch list: %w", err)
	}
	defer rows.Close()

	var keywords []string
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		keywords = append(keywords, kw)
	}
	return keywords, rows.Err()
}
