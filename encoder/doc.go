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


// Package encoder provides fit/transform encoders for dirty categorical
// string data.
//
// Two encoders are available:
//
//   - AgglomerativeEncoder clusters similar category strings by
//     hierarchical clustering over pairwise string distances and encodes
//     each value as its cluster label. Categories unseen during fitting are
//     either force-linked to the nearest cluster or left unassigned,
//     depending on the configured policy.
//
//   - DistanceEncoder projects each category's distance profile against the
//     fitted categories onto a small number of SVD components, producing
//     dense numeric features suitable for downstream models or plotting.
//
// Both encoders measure string distance over character n-gram sets (Dice
// by default) or, when constructed with WithEmbedder, over semantic text
// embeddings with cosine distance. Fitting operates on the unique values of
// the input; both encoders follow the fit-before-transform contract and
// return ErrNotFitted otherwise.
package encoder
