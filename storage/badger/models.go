package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/dirtycat/core"
	"github.com/poiesic/dirtycat/storage"
)

// ModelRepository implements storage.ModelRepository for BadgerDB.
type ModelRepository struct {
	backend *Backend
}

var _ storage.ModelRepository = (*ModelRepository)(nil)

// NewModelRepository creates a new ModelRepository.
func NewModelRepository(backend *Backend) (*ModelRepository, error) {
	return &ModelRepository{
		backend: backend,
	}, nil
}

// Close releases resources. ModelRepository has no resources to release.
func (r *ModelRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ModelRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveModel stores a model under its name, overwriting any previous
// version. CreatedAt is preserved across overwrites.
func (r *ModelRepository) SaveModel(ctx context.Context, model *core.EncoderModel) error {
	if err := core.ValidateModel(model); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		// Timestamps are persisted at microsecond precision; stamp at the
		// same precision so the caller's copy matches a round-trip.
		now := time.Now().UTC().Truncate(time.Microsecond)
		key := makeModelKey(model.Name)

		old, err := readModel(tx, key)
		if err != nil {
			return err
		}
		if old != nil {
			model.CreatedAt = old.CreatedAt
		} else {
			model.CreatedAt = now
		}
		model.UpdatedAt = now

		if err := tx.Set(key, storage.MarshalModel(model)); err != nil {
			return err
		}
		infoKey := makeModelInfoKey(model.Name)
		if err := tx.Set(infoKey, storage.MarshalModelInfo(model.Info())); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetModel retrieves a model by name.
func (r *ModelRepository) GetModel(ctx context.Context, name string) (*core.EncoderModel, error) {
	var model *core.EncoderModel
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		model, err = readModel(tx, makeModelKey(name))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, storage.ErrNotFound
	}
	return model, nil
}

// ListModels returns summaries of all stored models, ordered by name.
// Ordering falls out of the key layout: BadgerDB iterates keys in
// lexicographic order.
func (r *ModelRepository) ListModels(ctx context.Context) ([]*core.ModelInfo, error) {
	var infos []*core.ModelInfo
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = modelInfoIteratorPrefix()
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				info, err := storage.UnmarshalModelInfo(val)
				if err != nil {
					return err
				}
				infos = append(infos, info)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// DeleteModel removes a model and its listing entry by name.
func (r *ModelRepository) DeleteModel(ctx context.Context, name string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeModelKey(name)
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		if err := tx.Delete(makeModelInfoKey(name)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readModel reads and deserializes a model inside a transaction.
// Returns nil without error when the key does not exist.
func readModel(tx *badger.Txn, key []byte) (*core.EncoderModel, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var model *core.EncoderModel
	err = item.Value(func(val []byte) error {
		model, err = storage.UnmarshalModel(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return model, nil
}
