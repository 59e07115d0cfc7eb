// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package dirtycat encodes dirty categorical string data: category values
// riddled with typos and inconsistent formatting. It provides an
// agglomerative encoder that clusters similar categories and a distance
// encoder that projects categories into a low-dimensional numeric space,
// both behind a fit/transform interface, plus a model store for persisting
// fitted encoders.
package dirtycat

import (
	"context"
	"log/slog"

	"github.com/poiesic/dirtycat/core"
	"github.com/poiesic/dirtycat/encoder"
	"github.com/poiesic/dirtycat/storage"
	"github.com/poiesic/dirtycat/storage/badger"
)

// Store ties the storage backend and the model repository together,
// providing persistence for fitted encoders.
type Store struct {
	backend *badger.Backend
	models  storage.ModelRepository
	logger  *slog.Logger
}

// Open opens a model store at the given directory, creating it if needed.
func Open(filePath string) (*Store, error) {
	return open(filePath, false)
}

// OpenInMemory opens an ephemeral model store, useful for tests.
func OpenInMemory() (*Store, error) {
	return open("", true)
}

func open(filePath string, inMemory bool) (*Store, error) {
	backend, err := badger.OpenBackend(filePath, inMemory)
	if err != nil {
		return nil, err
	}

	models, err := badger.NewModelRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Store{
		backend: backend,
		models:  models,
		logger:  slog.Default(),
	}, nil
}

// Close closes the repository and the backend.
func (s *Store) Close() error {
	if err := s.models.Close(); err != nil {
		s.logger.Error("error closing model repository", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Models returns the model repository.
func (s *Store) Models() storage.ModelRepository {
	return s.models
}

// Snapshotter is implemented by fitted encoders that can be persisted.
type Snapshotter interface {
	Snapshot(name string) (*core.EncoderModel, error)
}

// SaveEncoder snapshots a fitted encoder and stores it under name.
func (s *Store) SaveEncoder(ctx context.Context, name string, enc Snapshotter) error {
	model, err := enc.Snapshot(name)
	if err != nil {
		return err
	}
	return s.models.SaveModel(ctx, model)
}

// LoadAgglomerativeEncoder restores a stored agglomerative encoder.
// Options are applied on top of the stored configuration; semantic models
// need encoder.WithEmbedder to force-link unseen categories.
func (s *Store) LoadAgglomerativeEncoder(ctx context.Context, name string, opts ...encoder.Option) (*encoder.AgglomerativeEncoder, error) {
	model, err := s.models.GetModel(ctx, name)
	if err != nil {
		return nil, err
	}
	return encoder.RestoreAgglomerative(model, opts...)
}

// LoadDistanceEncoder restores a stored distance encoder.
func (s *Store) LoadDistanceEncoder(ctx context.Context, name string, opts ...encoder.Option) (*encoder.DistanceEncoder, error) {
	model, err := s.models.GetModel(ctx, name)
	if err != nil {
		return nil, err
	}
	return encoder.RestoreDistance(model, opts...)
}
