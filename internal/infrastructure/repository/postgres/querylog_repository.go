package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"querygate/internal/core/domain"
)

// QueryLogRepository persists the audit log of executed searches.
type QueryLogRepository struct {
	db *sql.DB
}

func NewQueryLogRepository(db *sql.DB) *QueryLogRepository {
	return &QueryLogRepository{db: db}
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

func (r *QueryLogRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent gateway startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082301)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS search_log (
	id TEXT PRIMARY KEY,
	endpoint TEXT NOT NULL,
	index_name TEXT NOT NULL,
	body JSONB NOT NULL,
	hits INTEGER NOT NULL,
	duration_ms DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_search_log_created_at ON search_log(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *QueryLogRepository) Record(ctx context.Context, rec domain.SearchRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO search_log (id, endpoint, index_name, body, hits, duration_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID,
		rec.Endpoint,
		rec.Index,
		[]byte(rec.Body),
		rec.Hits,
		rec.DurationMS,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert search log entry: %w", err)
	}
	return nil
}

func (r *QueryLogRepository) Recent(ctx context.Context, limit int) ([]domain.SearchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, endpoint, index_name, body, hits, duration_ms, created_at
FROM search_log
ORDER BY created_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query search log: %w", err)
	}
	defer rows.Close()

	var out []domain.SearchRecord
	for rows.Next() {
		var rec domain.SearchRecord
		var body []byte
		if err := rows.Scan(&rec.ID, &rec.Endpoint, &rec.Index, &body, &rec.Hits, &rec.DurationMS, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan search log row: %w", err)
		}
		rec.Body = body
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search log rows: %w", err)
	}
	return out, nil
}
