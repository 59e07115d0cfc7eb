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


// Package storage provides the persistence abstraction for fitted encoder
// models.
//
// The ModelRepository interface decouples encoder persistence from the
// storage implementation, so different backends (BadgerDB, in-memory) can
// be used interchangeably. The badger subpackage provides the BadgerDB
// implementation; its NewMemoryRepository helper backs tests.
//
// All repository implementations must be thread-safe, and every method
// accepts a context.Context for cancellation.
package storage
