package storage

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/gsinghjay/gpt-character-gen/config"
	"github.com/gsinghjay/gpt-character-gen/models"
)

// ErrNotFound is returned when no character exists for the requested id.
var ErrNotFound = errors.New("character not found")

// Store persists the character collection. All implementations keep the same
// external contract: List returns characters newest-first by creation time,
// Save inserts or overwrites by id and refreshes updated_at, Delete reports
// whether a record was removed.
type Store interface {
	List(ctx context.Context) ([]models.Character, error)
	Get(ctx context.Context, id string) (*models.Character, error)
	Save(ctx context.Context, c *models.Character) error
	Delete(ctx context.Context, id string) (bool, error)
}

// New selects the configured backend. The JSON document store is the default;
// "mysql" swaps in the gorm-backed store behind the same contract.
func New(cfg config.AppConfig, log *zap.SugaredLogger) (Store, error) {
	switch cfg.StoreBackend {
	case "mysql":
		return NewGormStore(cfg)
	default:
		return NewJSONStore(cfg.StorageFile, log), nil
	}
}

// touch stamps persistence timestamps. Both timestamps are set from the same
// instant on first save so updated_at equals created_at at creation.
func touch(c *models.Character) {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}
