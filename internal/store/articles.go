// ABOUTME: Article ingestion, read-state marking and retention compaction
// ABOUTME: Deduplicates on guid with INSERT OR IGNORE and emits derived unread events

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rssrs/rssrs/internal/events"
	"github.com/rssrs/rssrs/internal/models"
)

// retentionWindow is how long read articles are kept before compaction.
const retentionWindow = 30 * 24 * time.Hour

// InsertArticles inserts the fetched articles for a seed inside one
// transaction, ignoring guid duplicates, and returns the number of rows
// actually inserted. When anything was inserted it emits seed/new twice:
// once scoped to the seed and once globally, both carrying the count.
func (s *Store) InsertArticles(seedID int64, articles []models.Article) (int64, error) {
	var total int64
	err := s.withConn(func(db *sql.DB) error {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		stmt, err := tx.Prepare(
			`INSERT OR IGNORE INTO articles (seed_id, guid, title, author, "desc", link, pub_date, unread)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, a := range articles {
			result, err := stmt.Exec(
				seedID, a.GUID, a.Title, a.Author, a.Desc, a.Link, a.PubDate, boolToInt(a.Unread),
			)
			if err != nil {
				return err
			}
			inserted, err := result.RowsAffected()
			if err != nil {
				return err
			}
			total += inserted
		}

		return tx.Commit()
	})
	if err != nil {
		return 0, fmt.Errorf("insert articles: %w", err)
	}

	if total > 0 {
		s.log.Info().Int64("seed_id", seedID).Int64("count", total).Msg("new articles")
		s.bus.Publish(events.TopicSeedNew, events.SeedUnreadCount{ID: &seedID, UnreadCount: total})
		s.bus.Publish(events.TopicSeedNew, events.SeedUnreadCount{ID: nil, UnreadCount: total})
	}

	return total, nil
}

// ReadArticle sets the unread flag of one article and emits, in order,
// the owning seed's unread count, the global unread count, and the
// article's new state. Observers rely on that ordering.
func (s *Store) ReadArticle(id int64, read bool) error {
	var (
		seedID     int64
		seedCount  int64
		totalCount int64
	)
	err := s.withConn(func(db *sql.DB) error {
		if err := db.QueryRow("SELECT seed_id FROM articles WHERE id = ?", id).Scan(&seedID); err != nil {
			return err
		}
		if _, err := db.Exec("UPDATE articles SET unread = ? WHERE id = ?", boolToInt(!read), id); err != nil {
			return err
		}
		var err error
		if seedCount, err = unreadCount(db, &seedID); err != nil {
			return err
		}
		totalCount, err = unreadCount(db, nil)
		return err
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("article not found: %d", id)
		}
		return fmt.Errorf("read article: %w", err)
	}

	s.bus.Publish(events.TopicSeedUnread, events.SeedUnreadCount{ID: &seedID, UnreadCount: seedCount})
	s.bus.Publish(events.TopicSeedUnread, events.SeedUnreadCount{ID: nil, UnreadCount: totalCount})
	s.bus.Publish(events.TopicArticleUnread, events.ArticleRead{ID: id, Unread: !read})
	return nil
}

// ReadAll bulk-marks articles read, for one seed or globally. The global
// form emits a zero count unconditionally; the sentinel article/unread
// event with id -1 tells subscribers to refresh everything.
func (s *Store) ReadAll(seedID *int64) error {
	var totalCount int64
	err := s.withConn(func(db *sql.DB) error {
		if seedID != nil {
			if _, err := db.Exec("UPDATE articles SET unread = 0 WHERE seed_id = ?", *seedID); err != nil {
				return err
			}
			var err error
			totalCount, err = unreadCount(db, nil)
			return err
		}
		_, err := db.Exec("UPDATE articles SET unread = 0")
		return err
	})
	if err != nil {
		return fmt.Errorf("read all: %w", err)
	}

	if seedID != nil {
		s.bus.Publish(events.TopicSeedUnread, events.SeedUnreadCount{ID: seedID, UnreadCount: 0})
		s.bus.Publish(events.TopicSeedUnread, events.SeedUnreadCount{ID: nil, UnreadCount: totalCount})
	} else {
		s.bus.Publish(events.TopicSeedUnread, events.SeedUnreadCount{ID: nil, UnreadCount: 0})
	}
	s.bus.Publish(events.TopicArticleUnread, events.ArticleRead{ID: -1, Unread: false})
	return nil
}

// GetUnreadCount counts unread articles for one seed, or globally when
// seedID is nil. The global count excludes the reserved seed id 0.
func (s *Store) GetUnreadCount(seedID *int64) (int64, error) {
	var count int64
	err := s.withConn(func(db *sql.DB) error {
		var err error
		count, err = unreadCount(db, seedID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

// Optimize deletes read articles older than the retention window and runs
// the store's self-optimization. Unread articles are kept regardless of age.
func (s *Store) Optimize(now time.Time) error {
	deadline := now.Add(-retentionWindow).Unix()
	var deleted int64
	err := s.withConn(func(db *sql.DB) error {
		result, err := db.Exec("DELETE FROM articles WHERE unread = 0 AND pub_date < ?", deadline)
		if err != nil {
			return err
		}
		deleted, _ = result.RowsAffected()
		_, err = db.Exec("PRAGMA optimize")
		return err
	})
	if err != nil {
		return fmt.Errorf("optimize: %w", err)
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Msg("compacted read articles")
	}
	return nil
}

func unreadCount(db *sql.DB, seedID *int64) (int64, error) {
	var (
		count int64
		err   error
	)
	if seedID != nil {
		err = db.QueryRow("SELECT COUNT(*) FROM articles WHERE unread != 0 AND seed_id = ?", *seedID).Scan(&count)
	} else {
		err = db.QueryRow("SELECT COUNT(*) FROM articles WHERE unread != 0 AND seed_id != 0").Scan(&count)
	}
	return count, err
}
