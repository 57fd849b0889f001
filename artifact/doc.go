// Copyright 2025 Sonafind Authors
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


// Package artifact persists and loads the index artifact set.
//
// An artifact directory holds four files:
//
//   - index.vec: row-ordered fixed-stride float32 vectors behind a header
//     declaring row count and dimensionality
//   - lookup.mus: MUS-serialized product records, one per vector row and in
//     the same order
//   - meta.json: build provenance (model, dimension, rows, build time)
//   - vocab.json: sorted distinct phonetic codes, informational only
//
// Row alignment between index.vec and lookup.mus is load-bearing: entry i of
// the lookup describes the product whose embedding is row i of the vector
// file. Load cross-validates the whole set and fails rather than serve a
// truncated or reordered artifact.
package artifact
