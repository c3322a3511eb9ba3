package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	"github.com/samber/lo"

	"AutoPublisher/internal/domain"
	"AutoPublisher/internal/ports"
)

// Expected schema (migrations are owned by the hosting platform):
//
//	articles(id bigserial, title, excerpt, body, category, read_time,
//	         image_url, published bool, created_at timestamptz)
//	distribution_targets(id bigserial, platform, url, enabled bool)
//	subscribers(email text, confirmed bool, unsubscribed_at timestamptz null)
//	accounts(id bigserial, email text, role text)
//
// The read-then-write published-today check has a race window if two runs
// trigger in the same instant; a unique index on (created_at::date) makes
// it airtight at the storage layer.

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository implements every pipeline read/write against Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var (
	_ ports.ArticleRepository    = (*PostgresRepository)(nil)
	_ ports.TargetRepository     = (*PostgresRepository)(nil)
	_ ports.SubscriberRepository = (*PostgresRepository)(nil)
	_ ports.AccountRepository    = (*PostgresRepository)(nil)
)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// HasPublishedToday reports whether an article was created within the
// calendar day containing now (in now's location). This is the sole
// idempotency guard for the pipeline.
func (r *PostgresRepository) HasPublishedToday(ctx context.Context, now time.Time) (bool, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query, args, err := psql.Select("COUNT(*)").
		From("articles").
		Where(sq.GtOrEq{"created_at": dayStart}).
		Where(sq.Lt{"created_at": dayEnd}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build published-today query: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("query published today: %w", err)
	}

	return count > 0, nil
}

// Insert writes the article atomically and returns its assigned ID.
func (r *PostgresRepository) Insert(ctx context.Context, article domain.Article) (int64, error) {
	query, args, err := psql.Insert("articles").
		Columns("title", "excerpt", "body", "category", "read_time", "image_url", "published", "created_at").
		Values(article.Title, article.Excerpt, article.Body, article.Category,
			article.ReadTime, article.ImageURL, article.Published, article.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert query: %w", err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert article: %w", err)
	}

	return id, nil
}

// RecentTitles returns titles of the most recently created articles, used
// as the exclusion list in the generation prompt.
func (r *PostgresRepository) RecentTitles(ctx context.Context, limit int) ([]string, error) {
	query, args, err := psql.Select("title").
		From("articles").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent-titles query: %w", err)
	}

	return r.queryStrings(ctx, query, args)
}

// RecentCategories returns categories of the most recently created articles,
// newest first.
func (r *PostgresRepository) RecentCategories(ctx context.Context, limit int) ([]string, error) {
	query, args, err := psql.Select("category").
		From("articles").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent-categories query: %w", err)
	}

	return r.queryStrings(ctx, query, args)
}

type dbArticle struct {
	ID        int64
	Title     string
	Excerpt   string
	Body      string
	Category  string
	ReadTime  string
	ImageURL  string
	Published bool
	CreatedAt time.Time
}

// Recent returns the newest published articles for the read surfaces
// (RSS, articles endpoint).
func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]domain.Article, error) {
	query, args, err := psql.Select("id", "title", "excerpt", "body", "category", "read_time", "image_url", "published", "created_at").
		From("articles").
		Where(sq.Eq{"published": true}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent articles: %w", err)
	}
	defer rows.Close()

	var articles []dbArticle
	for rows.Next() {
		var a dbArticle
		if err := rows.Scan(&a.ID, &a.Title, &a.Excerpt, &a.Body, &a.Category,
			&a.ReadTime, &a.ImageURL, &a.Published, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return lo.Map(articles, func(a dbArticle, _ int) domain.Article {
		return domain.Article(a)
	}), nil
}

// EnabledTargets loads the distribution targets currently switched on.
func (r *PostgresRepository) EnabledTargets(ctx context.Context) ([]domain.DistributionTarget, error) {
	query, args, err := psql.Select("id", "platform", "url", "enabled").
		From("distribution_targets").
		Where(sq.Eq{"enabled": true}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build targets query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query targets: %w", err)
	}
	defer rows.Close()

	var targets []domain.DistributionTarget
	for rows.Next() {
		var t domain.DistributionTarget
		if err := rows.Scan(&t.ID, &t.Platform, &t.URL, &t.Enabled); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return targets, nil
}

// ActiveSubscribers loads confirmed subscribers that have not unsubscribed.
func (r *PostgresRepository) ActiveSubscribers(ctx context.Context) ([]domain.Subscriber, error) {
	query, args, err := psql.Select("email", "confirmed", "unsubscribed_at").
		From("subscribers").
		Where(sq.Eq{"confirmed": true}).
		Where(sq.Eq{"unsubscribed_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build subscribers query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subscriber
	for rows.Next() {
		var s domain.Subscriber
		var unsub sql.NullTime
		if err := rows.Scan(&s.Email, &s.Confirmed, &unsub); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		if unsub.Valid {
			t := unsub.Time
			s.UnsubscribedAt = &t
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return subs, nil
}

// AdminEmails resolves the addresses of accounts holding the admin role.
// Accounts without an email are skipped; an empty result is valid.
func (r *PostgresRepository) AdminEmails(ctx context.Context) ([]string, error) {
	query, args, err := psql.Select("email").
		From("accounts").
		Where(sq.Eq{"role": "admin"}).
		Where(sq.NotEq{"email": ""}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build admins query: %w", err)
	}

	return r.queryStrings(ctx, query, args)
}

func (r *PostgresRepository) queryStrings(ctx context.Context, query string, args []interface{}) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return values, nil
}
