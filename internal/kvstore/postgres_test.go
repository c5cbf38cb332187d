package kvstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error {
	return r.scan(dest...)
}

// stubSQL emulates the kv_entries table over the two queries the store uses.
type stubSQL struct {
	mu      sync.Mutex
	entries map[string]string
	execErr error
}

func newStubSQL() *stubSQL {
	return &stubSQL{entries: make(map[string]string)}
}

func (s *stubSQL) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.execErr != nil {
		return pgconn.CommandTag{}, s.execErr
	}
	key := args[0].(string)
	s.entries[key] = args[1].(string)
	return pgconn.CommandTag{}, nil
}

func (s *stubSQL) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := args[0].(string)
	value, ok := s.entries[key]
	return stubRow{scan: func(dest ...any) error {
		if !ok {
			return pgx.ErrNoRows
		}
		*(dest[0].(*string)) = value
		return nil
	}}
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewPostgresStore(newStubSQL())

	if err := store.Set(ctx, "quota:d:generation_count", "2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := store.Get(ctx, "quota:d:generation_count")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "2" {
		t.Fatalf("value = %q, want 2", got)
	}
}

func TestPostgresStoreMissingKeyIsEmpty(t *testing.T) {
	store := NewPostgresStore(newStubSQL())
	got, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "" {
		t.Fatalf("value = %q, want empty for missing key", got)
	}
}

func TestPostgresStoreErrors(t *testing.T) {
	sql := newStubSQL()
	sql.execErr = errors.New("connection reset")
	store := NewPostgresStore(sql)

	if err := store.Set(context.Background(), "k", "v"); err == nil {
		t.Fatal("expected write error to surface")
	}
	if _, err := store.Get(context.Background(), ""); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("err = %v, want ErrEmptyKey", err)
	}
	if err := store.Set(context.Background(), "", "v"); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("err = %v, want ErrEmptyKey", err)
	}
}
