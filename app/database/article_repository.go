package database

import (
	"database/sql"
	"time"

	"github.com/nharvey/govpulse/app/feed"
)

type SQLArticleRepository struct {
	db *DB
}

var _ ArticleRepository = (*SQLArticleRepository)(nil)

func NewArticleRepository(db *DB) *SQLArticleRepository {
	return &SQLArticleRepository{db: db}
}

// UpsertArticle inserts the article or, when a row with the same feed_id
// exists, replaces every mutable field with the new values. Applying the
// same record twice leaves exactly one row.
func (r *SQLArticleRepository) UpsertArticle(article feed.Article) error {
	organisationID, err := r.resolveOrganisation(article.Organisation)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		INSERT INTO articles (
			feed_id, title, link, summary, body_text,
			organisation_id, published_at, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (feed_id) DO UPDATE SET
			title = excluded.title,
			link = excluded.link,
			summary = excluded.summary,
			body_text = excluded.body_text,
			organisation_id = excluded.organisation_id,
			published_at = excluded.published_at,
			fetched_at = excluded.fetched_at,
			updated_at = CURRENT_TIMESTAMP
	`, article.FeedID, article.Title, article.Link, article.Summary, article.BodyText,
		organisationID, article.PublishedAt.UTC(), article.FetchedAt.UTC())

	if err != nil {
		return &StorageError{Op: "upsert article", Err: err}
	}

	return nil
}

// resolveOrganisation returns the id for the named organisation, creating
// the row on first sighting. A nil name resolves to a null id.
func (r *SQLArticleRepository) resolveOrganisation(name *string) (*int64, error) {
	if name == nil || *name == "" {
		return nil, nil
	}

	_, err := r.db.Exec(`
		INSERT INTO organisations (name) VALUES (?)
		ON CONFLICT (name) DO NOTHING
	`, *name)
	if err != nil {
		return nil, &StorageError{Op: "upsert organisation", Err: err}
	}

	var id int64
	err = r.db.QueryRow(`SELECT id FROM organisations WHERE name = ?`, *name).Scan(&id)
	if err != nil {
		return nil, &StorageError{Op: "resolve organisation", Err: err}
	}

	return &id, nil
}

// GetAllArticles returns every stored article joined with its organisation
// name, ordered by published_at ascending. Each call re-reads the store.
func (r *SQLArticleRepository) GetAllArticles() ([]Article, error) {
	rows, err := r.db.Query(`
		SELECT a.id, a.feed_id, a.title, a.link, a.summary, a.body_text,
		       o.name, a.published_at, a.fetched_at, a.created_at, a.updated_at
		FROM articles a
		LEFT JOIN organisations o ON o.id = a.organisation_id
		ORDER BY a.published_at ASC, a.id ASC
	`)
	if err != nil {
		return nil, &StorageError{Op: "get all articles", Err: err}
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, &StorageError{Op: "scan article row", Err: err}
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate article rows", Err: err}
	}

	return articles, nil
}

// GetArticleByFeedID returns the article with the given stable identifier,
// or nil when it has not been seen.
func (r *SQLArticleRepository) GetArticleByFeedID(feedID string) (*Article, error) {
	row := r.db.QueryRow(`
		SELECT a.id, a.feed_id, a.title, a.link, a.summary, a.body_text,
		       o.name, a.published_at, a.fetched_at, a.created_at, a.updated_at
		FROM articles a
		LEFT JOIN organisations o ON o.id = a.organisation_id
		WHERE a.feed_id = ?
	`, feedID)

	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "get article by feed id", Err: err}
	}

	return &article, nil
}

func (r *SQLArticleRepository) GetArticleCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM articles`).Scan(&count)
	if err != nil {
		return 0, &StorageError{Op: "get article count", Err: err}
	}
	return count, nil
}

// CountByOrganisation returns per-organisation article counts, largest
// first. Articles without an organisation land in the "unknown" bucket.
func (r *SQLArticleRepository) CountByOrganisation() ([]OrganisationCount, error) {
	rows, err := r.db.Query(`
		SELECT COALESCE(o.name, ?), COUNT(*)
		FROM articles a
		LEFT JOIN organisations o ON o.id = a.organisation_id
		GROUP BY COALESCE(o.name, ?)
		ORDER BY COUNT(*) DESC, COALESCE(o.name, ?) ASC
	`, UnknownOrganisation, UnknownOrganisation, UnknownOrganisation)
	if err != nil {
		return nil, &StorageError{Op: "count by organisation", Err: err}
	}
	defer rows.Close()

	var counts []OrganisationCount
	for rows.Next() {
		var c OrganisationCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, &StorageError{Op: "scan organisation count", Err: err}
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate organisation counts", Err: err}
	}

	return counts, nil
}

// CountByDay returns article counts per calendar day of published_at,
// oldest day first.
func (r *SQLArticleRepository) CountByDay() ([]DayCount, error) {
	rows, err := r.db.Query(`
		SELECT date(published_at), COUNT(*)
		FROM articles
		GROUP BY date(published_at)
		ORDER BY date(published_at) ASC
	`)
	if err != nil {
		return nil, &StorageError{Op: "count by day", Err: err}
	}
	defer rows.Close()

	var counts []DayCount
	for rows.Next() {
		var day string
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, &StorageError{Op: "scan day count", Err: err}
		}

		parsed, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, &StorageError{Op: "parse day bucket", Err: err}
		}

		counts = append(counts, DayCount{Day: parsed, Count: count})
	}

	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate day counts", Err: err}
	}

	return counts, nil
}

// CountByDayAndOrganisation returns article counts per calendar day split
// by organisation, oldest day first and organisations alphabetical within
// a day. Articles without an organisation count under the "unknown" bucket.
func (r *SQLArticleRepository) CountByDayAndOrganisation() ([]DayOrganisationCount, error) {
	rows, err := r.db.Query(`
		SELECT date(a.published_at), COALESCE(o.name, ?), COUNT(*)
		FROM articles a
		LEFT JOIN organisations o ON o.id = a.organisation_id
		GROUP BY date(a.published_at), COALESCE(o.name, ?)
		ORDER BY date(a.published_at) ASC, COALESCE(o.name, ?) ASC
	`, UnknownOrganisation, UnknownOrganisation, UnknownOrganisation)
	if err != nil {
		return nil, &StorageError{Op: "count by day and organisation", Err: err}
	}
	defer rows.Close()

	var counts []DayOrganisationCount
	for rows.Next() {
		var day string
		var c DayOrganisationCount
		if err := rows.Scan(&day, &c.Organisation, &c.Count); err != nil {
			return nil, &StorageError{Op: "scan day organisation count", Err: err}
		}

		parsed, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, &StorageError{Op: "parse day bucket", Err: err}
		}
		c.Day = parsed

		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate day organisation counts", Err: err}
	}

	return counts, nil
}

// CountByHour returns article counts per hour of day of published_at.
// Hours with no articles are absent; the renderer fills the gaps.
func (r *SQLArticleRepository) CountByHour() ([]HourCount, error) {
	rows, err := r.db.Query(`
		SELECT CAST(strftime('%H', published_at) AS INTEGER), COUNT(*)
		FROM articles
		GROUP BY strftime('%H', published_at)
		ORDER BY strftime('%H', published_at) ASC
	`)
	if err != nil {
		return nil, &StorageError{Op: "count by hour", Err: err}
	}
	defer rows.Close()

	var counts []HourCount
	for rows.Next() {
		var c HourCount
		if err := rows.Scan(&c.Hour, &c.Count); err != nil {
			return nil, &StorageError{Op: "scan hour count", Err: err}
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate hour counts", Err: err}
	}

	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (Article, error) {
	var article Article
	var bodyText sql.NullString
	var organisation sql.NullString

	err := row.Scan(
		&article.ID, &article.FeedID, &article.Title, &article.Link,
		&article.Summary, &bodyText, &organisation,
		&article.PublishedAt, &article.FetchedAt,
		&article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		return Article{}, err
	}

	if bodyText.Valid {
		article.BodyText = &bodyText.String
	}
	if organisation.Valid {
		article.Organisation = &organisation.String
	}

	return article, nil
}
