package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
	"github.com/noah-isme/smart-edu-api/pkg/storage"
)

// FileSnapshotRepository keeps each snapshot as <key>.json inside a LocalStorage root.
type FileSnapshotRepository struct {
	storage *storage.LocalStorage
}

// NewFileSnapshotRepository constructs the repository.
func NewFileSnapshotRepository(store *storage.LocalStorage) *FileSnapshotRepository {
	return &FileSnapshotRepository{storage: store}
}

// Load decodes the snapshot stored under key into dest.
func (r *FileSnapshotRepository) Load(ctx context.Context, key string, dest interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := r.storage.Read(snapshotFile(key))
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return appErrors.ErrSnapshotNotFound
		}
		return fmt.Errorf("read snapshot %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return nil
}

// Save replaces the snapshot stored under key.
func (r *FileSnapshotRepository) Save(ctx context.Context, key string, value interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	if _, err := r.storage.Save(snapshotFile(key), payload); err != nil {
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}
	return nil
}

func snapshotFile(key string) string {
	return key + ".json"
}
