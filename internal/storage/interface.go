package storage

import (
	"context"
	"time"

	"github.com/julianstephens/feedlog/internal/models"
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	Ping(ctx context.Context) error

	// Feedings
	InsertFeeding(ctx context.Context, f models.Feeding) error
	// GetFeeding returns an error matching errors.ErrNotFound when the id is unknown.
	GetFeeding(ctx context.Context, id string) (models.Feeding, error)
	// QueryRange returns feedings with start <= feeding_time < end ordered by
	// feeding time. A nil bound is open on that side.
	QueryRange(ctx context.Context, start, end *time.Time, order models.SortOrder) ([]models.Feeding, error)
	// DeleteFeeding reports whether a row was removed.
	DeleteFeeding(ctx context.Context, id string) (bool, error)
	// DeleteRange removes feedings with start <= feeding_time < end.
	DeleteRange(ctx context.Context, start, end *time.Time) (int64, error)
	// UpdateFeedingTime sets feeding_time and updated_at and returns the number
	// of rows changed (0 when the id is unknown).
	UpdateFeedingTime(ctx context.Context, id string, feedingTime, updatedAt time.Time) (int64, error)

	// Bulk Retrieval for Migration
	AllFeedings(ctx context.Context) ([]models.Feeding, error)

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by stores with a versioned schema.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaVersions() (current, latest int, err error)
}
