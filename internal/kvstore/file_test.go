package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "store.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	ctx := context.Background()

	got, err := store.Get(ctx, "quota:dev-1:generation_count")
	if err != nil {
		t.Fatalf("get missing key: %v", err)
	}
	if got != "" {
		t.Fatalf("missing key = %q, want empty", got)
	}

	if err := store.Set(ctx, "quota:dev-1:generation_count", "2"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err = store.Get(ctx, "quota:dev-1:generation_count")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "2" {
		t.Fatalf("get = %q, want 2", got)
	}
}

func TestFileStorePicksUpExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	ctx := context.Background()
	if err := store.Set(ctx, "onboarding_completed", "true"); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Simulate another process rewriting the document.
	if err := os.WriteFile(path, []byte(`{"onboarding_completed":"false"}`), 0o644); err != nil {
		t.Fatalf("rewrite file: %v", err)
	}
	got, err := store.Get(ctx, "onboarding_completed")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "false" {
		t.Fatalf("get = %q, want false (fresh read expected)", got)
	}
}

func TestFileStoreRejectsEmptyKey(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if _, err := store.Get(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if err := store.Set(context.Background(), "", "x"); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
