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


package encoder

import "errors"

var (
	// ErrNotFitted indicates Transform was called before Fit completed.
	ErrNotFitted = errors.New("encoder is not fitted")

	// ErrNoValues indicates Fit was called with no values.
	ErrNoValues = errors.New("no values to fit")

	// ErrEmbedderRequired indicates a semantic model needs an embedder for
	// the requested operation.
	ErrEmbedderRequired = errors.New("embedder required for semantic vector source")

	// ErrMetricMismatch indicates a metric incompatible with the vector
	// source (semantic vectors support cosine only).
	ErrMetricMismatch = errors.New("metric incompatible with vector source")

	// ErrKindMismatch indicates a model restored into the wrong encoder type.
	ErrKindMismatch = errors.New("model kind mismatch")
)
