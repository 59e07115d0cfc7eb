package storage

import (
	"context"

	"github.com/poiesic/dirtycat/core"
)

// ModelRepository provides operations for persisting fitted encoder models.
// Implementations must be thread-safe and support concurrent access.
type ModelRepository interface {
	// SaveModel stores a model under its Name, overwriting any existing
	// model with the same name. Sets CreatedAt on first save and UpdatedAt
	// on every save.
	SaveModel(ctx context.Context, model *core.EncoderModel) error

	// GetModel retrieves a model by name.
	// Returns ErrNotFound if no model with that name exists.
	GetModel(ctx context.Context, name string) (*core.EncoderModel, error)

	// ListModels returns summaries of all stored models, ordered by name.
	ListModels(ctx context.Context) ([]*core.ModelInfo, error)

	// DeleteModel removes a model by name.
	// Returns ErrNotFound if no model with that name exists.
	DeleteModel(ctx context.Context, name string) error

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}
