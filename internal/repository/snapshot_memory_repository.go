package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
)

// MemorySnapshotRepository keeps snapshots in process memory. Values are stored encoded so
// callers never share state with the store.
type MemorySnapshotRepository struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemorySnapshotRepository constructs an empty store.
func NewMemorySnapshotRepository() *MemorySnapshotRepository {
	return &MemorySnapshotRepository{items: make(map[string][]byte)}
}

// Load decodes the snapshot stored under key into dest.
func (r *MemorySnapshotRepository) Load(_ context.Context, key string, dest interface{}) error {
	r.mu.RLock()
	raw, ok := r.items[key]
	r.mu.RUnlock()
	if !ok {
		return appErrors.ErrSnapshotNotFound
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return nil
}

// Save replaces the snapshot stored under key.
func (r *MemorySnapshotRepository) Save(_ context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	r.mu.Lock()
	r.items[key] = payload
	r.mu.Unlock()
	return nil
}
