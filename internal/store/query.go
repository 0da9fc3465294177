// ABOUTME: Keyset-paginated article listing filtered by seed, watch list or title search
// ABOUTME: Ordering is (pub_date DESC, id ASC) and stays stable under concurrent inserts

package store

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/rssrs/rssrs/internal/models"
)

// ArticleQuery selects a page of unread articles.
//
// SeedID semantics: nil lists every seed except the reserved id 0; a
// positive value lists that seed only; a negative value switches to
// watched mode, matching titles against the current watch list.
type ArticleQuery struct {
	SeedID *int64
	Cursor string
	Limit  int
	Search string
}

// ArticlePage is one page of results plus the continuation cursor, nil
// when the listing is exhausted.
type ArticlePage struct {
	Articles   []models.Article `json:"articles"`
	NextCursor *string          `json:"next_cursor"`
}

// ListArticles runs the paginated query. It asks for one row beyond the
// limit; when that extra row comes back, its (pub_date, id) becomes the
// next cursor and the row itself is the first entry of the following page.
func (s *Store) ListArticles(q ArticleQuery) (*ArticlePage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	cur := ParseCursor(q.Cursor)

	page := &ArticlePage{Articles: []models.Article{}}
	err := s.withConn(func(db *sql.DB) error {
		builder := sq.Select(
			"a.id", "a.seed_id", "IFNULL(s.name, '')", "a.guid",
			"a.title", "a.author", `a."desc"`, "a.link", "a.pub_date", "a.unread",
		).
			From("articles a").
			LeftJoin("seeds s ON s.id = a.seed_id").
			Where("a.unread != 0").
			Where(sq.Or{
				sq.Lt{"a.pub_date": cur.PubDate},
				sq.And{sq.Eq{"a.pub_date": cur.PubDate}, sq.GtOrEq{"a.id": cur.ID}},
			}).
			OrderBy("a.pub_date DESC", "a.id ASC").
			Limit(uint64(limit) + 1)

		switch {
		case q.SeedID == nil:
			builder = builder.Where(sq.NotEq{"a.seed_id": 0})
		case *q.SeedID > 0:
			builder = builder.Where(sq.Eq{"a.seed_id": *q.SeedID})
		default:
			// Watched mode: any title containing any watch keyword.
			keywords, err := scanWatchList(db)
			if err != nil {
				return err
			}
			if len(keywords) == 0 {
				return nil
			}
			match := sq.Or{}
			for _, kw := range keywords {
				match = append(match, sq.Expr("instr(a.title, ?) > 0", kw))
			}
			builder = builder.Where(match)
		}

		if q.Search != "" {
			builder = builder.Where(sq.Expr("instr(a.title, ?) > 0", q.Search))
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return err
		}

		rows, err := db.Query(query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		var articles []models.Article
		for rows.Next() {
			var (
				a                         models.Article
				title, author, desc, link sql.NullString
				unread                    int
			)
			if err := rows.Scan(
				&a.ID, &a.SeedID, &a.SeedName, &a.GUID,
				&title, &author, &desc, &link, &a.PubDate, &unread,
			); err != nil {
				return err
			}
			if title.Valid {
				a.Title = &title.String
			}
			if author.Valid {
				a.Author = &author.String
			}
			if desc.Valid {
				a.Desc = &desc.String
			}
			if link.Valid {
				a.Link = &link.String
			}
			a.Unread = unread != 0
			articles = append(articles, a)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		if len(articles) > limit {
			extra := articles[limit]
			next := Cursor{PubDate: extra.PubDate, ID: extra.ID}.String()
			page.NextCursor = &next
			articles = articles[:limit]
		}
		page.Articles = articles
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return page, nil
}
