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


// Package embed defines the semantic vector source for the encoders.
//
// An Embedder turns category strings into dense vectors; encoders built
// with a semantic source cluster or project categories by embedding
// distance instead of character n-gram overlap. The openai subpackage
// implements the interface against OpenAI-compatible endpoints, and the
// mock subpackage provides a deterministic in-memory implementation for
// tests.
package embed
