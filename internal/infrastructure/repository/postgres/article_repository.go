package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oktayozdemir/blog-chatbot/internal/core/domain"
	"github.com/oktayozdemir/blog-chatbot/internal/core/ports"
)

type ArticleRepository struct {
	db *sql.DB
}

var _ ports.ArticleRepository = (*ArticleRepository)(nil)

func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ArticleRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS articles (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	url TEXT,
	author TEXT NOT NULL,
	source_type TEXT NOT NULL,
	body TEXT NOT NULL,
	char_count INTEGER NOT NULL,
	chunk_count INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_articles_status ON articles(status);
CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO articles (
	id, title, url, author, source_type, body, char_count, chunk_count, status, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		article.ID, article.Title, article.URL, article.Author, article.SourceType, article.Text,
		article.CharCount, article.ChunkCount, string(article.Status), article.Error,
		article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, url, author, source_type, body, char_count, chunk_count, status, error_message, created_at, updated_at
FROM articles
WHERE id = $1
`, id)

	var article domain.Article
	var status string

	err := row.Scan(
		&article.ID, &article.Title, &article.URL, &article.Author, &article.SourceType, &article.Text,
		&article.CharCount, &article.ChunkCount, &status, &article.Error,
		&article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrArticleNotFound, "get article", err)
		}
		return nil, fmt.Errorf("scan article: %w", err)
	}

	article.Status = domain.ArticleStatus(status)
	return &article, nil
}

func (r *ArticleRepository) MarkIndexed(ctx context.Context, id string, chunkCount int) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE articles
SET status = $2, chunk_count = $3, error_message = '', updated_at = $4
WHERE id = $1
`, id, string(domain.ArticleIndexed), chunkCount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark article indexed: %w", err)
	}
	return requireRowAffected(result, id)
}

func (r *ArticleRepository) MarkFailed(ctx context.Context, id string, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE articles
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(domain.ArticleFailed), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark article failed: %w", err)
	}
	return requireRowAffected(result, id)
}

func (r *ArticleRepository) Stats(ctx context.Context) (domain.ArticleStats, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT
	COUNT(*),
	COUNT(*) FILTER (WHERE status = $1),
	COUNT(*) FILTER (WHERE status = $2)
FROM articles
`, string(domain.ArticleIndexed), string(domain.ArticleFailed))

	var stats domain.ArticleStats
	if err := row.Scan(&stats.Total, &stats.Indexed, &stats.Failed); err != nil {
		return domain.ArticleStats{}, fmt.Errorf("scan article stats: %w", err)
	}
	return stats, nil
}

func requireRowAffected(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrArticleNotFound, "update article", sql.ErrNoRows)
	}
	return nil
}
