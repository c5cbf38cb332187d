// Package kvstore provides the string key-value persistence used for the
// free-generation counter and small installation preferences. Backends share
// one contract: Get returns "" (and no error) for a missing key, mirroring
// the absent-row convention of the rest of the codebase.
package kvstore

import (
	"context"
	"errors"
	"sync"
)

// Store is the persistence contract consumed by the quota gate and prefs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// ErrEmptyKey is returned when a caller passes a blank key.
var ErrEmptyKey = errors.New("kvstore: key is required")

// Memory is an in-process Store used by tests and as a last-resort fallback.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if key == "" {
		return "", ErrEmptyKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
