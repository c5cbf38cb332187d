package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLExecutor is the slice of pgx used by the Postgres backend. pgxpool.Pool
// satisfies it; tests supply stubs.
type SQLExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

const (
	qSelectEntry = `SELECT value FROM kv_entries WHERE key = $1`
	qUpsertEntry = `INSERT INTO kv_entries (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
)

// PostgresStore keeps the key-value pairs in a kv_entries table for server
// deployments where the counter must survive the process.
type PostgresStore struct {
	sql SQLExecutor
}

// NewPostgresStore wraps an executor. The kv_entries table (key text primary
// key, value text, updated_at timestamptz) is expected to exist.
func NewPostgresStore(sql SQLExecutor) *PostgresStore {
	return &PostgresStore{sql: sql}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	row := s.sql.QueryRow(ctx, qSelectEntry, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("kvstore: select %q: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if _, err := s.sql.Exec(ctx, qUpsertEntry, key, value); err != nil {
		return fmt.Errorf("kvstore: upsert %q: %w", key, err)
	}
	return nil
}
