package quota

import (
	"context"
	"testing"

	"styleshot/internal/kvstore"
)

func TestFreshUserConsumesThreeThenBlocks(t *testing.T) {
	store := kvstore.NewMemory()
	gate := NewGate(store, 3, NopLogger())
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		decision, err := gate.CheckAndConsume(ctx, "dev-1", false)
		if err != nil {
			t.Fatalf("action %d: %v", i, err)
		}
		if !decision.Allowed {
			t.Fatalf("action %d blocked, want allowed", i)
		}
		if decision.State.Used != i {
			t.Fatalf("action %d used = %d, want %d", i, decision.State.Used, i)
		}
		wantLast := i == 3
		if decision.LastFree != wantLast {
			t.Fatalf("action %d lastFree = %v, want %v", i, decision.LastFree, wantLast)
		}
	}

	decision, err := gate.CheckAndConsume(ctx, "dev-1", false)
	if err != nil {
		t.Fatalf("fourth action: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("fourth action allowed, want blocked")
	}
	if decision.State.Used != 3 {
		t.Fatalf("blocked action mutated counter: used = %d", decision.State.Used)
	}
}

func TestEntitledNeverTouchesCounter(t *testing.T) {
	store := kvstore.NewMemory()
	gate := NewGate(store, 3, NopLogger())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		decision, err := gate.CheckAndConsume(ctx, "dev-1", true)
		if err != nil {
			t.Fatalf("entitled action: %v", err)
		}
		if !decision.Allowed {
			t.Fatalf("entitled action blocked")
		}
	}
	state, err := gate.State(ctx, "dev-1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Used != 0 {
		t.Fatalf("entitled actions consumed quota: used = %d", state.Used)
	}
}

func TestEntitledAllowedEvenPastLimit(t *testing.T) {
	store := kvstore.NewMemory()
	if err := store.Set(context.Background(), "quota:dev-1:generation_count", "3"); err != nil {
		t.Fatalf("seed counter: %v", err)
	}
	gate := NewGate(store, 3, NopLogger())
	decision, err := gate.CheckAndConsume(context.Background(), "dev-1", true)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("subscriber blocked by exhausted free counter")
	}
}

func TestStateReadsFreshValue(t *testing.T) {
	store := kvstore.NewMemory()
	gate := NewGate(store, 3, NopLogger())
	ctx := context.Background()

	if _, err := gate.CheckAndConsume(ctx, "dev-1", false); err != nil {
		t.Fatalf("consume: %v", err)
	}
	// External modification between reads must be visible.
	if err := store.Set(ctx, "quota:dev-1:generation_count", "2"); err != nil {
		t.Fatalf("set: %v", err)
	}
	state, err := gate.State(ctx, "dev-1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Used != 2 {
		t.Fatalf("used = %d, want 2 (fresh read)", state.Used)
	}
}

func TestCorruptCounterTreatedAsExhausted(t *testing.T) {
	store := kvstore.NewMemory()
	if err := store.Set(context.Background(), "quota:dev-1:generation_count", "lots"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	gate := NewGate(store, 3, NopLogger())
	decision, err := gate.CheckAndConsume(context.Background(), "dev-1", false)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("corrupt counter allowed generation")
	}
}

func TestSubjectsAreIsolated(t *testing.T) {
	store := kvstore.NewMemory()
	gate := NewGate(store, 3, NopLogger())
	ctx := context.Background()

	if _, err := gate.CheckAndConsume(ctx, "dev-1", false); err != nil {
		t.Fatalf("consume dev-1: %v", err)
	}
	state, err := gate.State(ctx, "dev-2")
	if err != nil {
		t.Fatalf("state dev-2: %v", err)
	}
	if state.Used != 0 {
		t.Fatalf("dev-2 used = %d, want 0", state.Used)
	}
}
