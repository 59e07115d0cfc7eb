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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidModel indicates an EncoderModel failed validation.
	ErrInvalidModel = errors.New("invalid encoder model")

	// ErrInvalidMetric indicates an unsupported distance metric.
	ErrInvalidMetric = errors.New("invalid metric")

	// ErrInvalidLinkage indicates an unsupported linkage method.
	ErrInvalidLinkage = errors.New("invalid linkage method")

	// ErrInvalidCriterion indicates an unsupported cut criterion.
	ErrInvalidCriterion = errors.New("invalid criterion")

	// ErrInvalidUnknownPolicy indicates an unsupported unknown-category policy.
	ErrInvalidUnknownPolicy = errors.New("invalid unknown-category policy")

	// ErrInvalidKind indicates an unsupported model kind.
	ErrInvalidKind = errors.New("invalid model kind")

	// ErrInvalidSource indicates an unsupported vector source.
	ErrInvalidSource = errors.New("invalid vector source")

	// ErrInvalidNGramRange indicates an n-gram range with Min < 1 or Max < Min.
	ErrInvalidNGramRange = errors.New("invalid n-gram range")

	// ErrInvalidComponents indicates a component count outside [1, categories).
	ErrInvalidComponents = errors.New("invalid component count")

	// ErrInvalidThreshold indicates a non-positive cut threshold.
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrEmptyModelName indicates the model Name field is empty.
	ErrEmptyModelName = errors.New("model name cannot be empty")
)
