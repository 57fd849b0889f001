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


// Package search implements the online hybrid query pipeline.
//
// A query is embedded, a candidate pool is drawn from the exact vector
// index, and the pool is reranked by fusing semantic similarity with
// phonetic similarity of product names. Drawing a pool wider than the final
// result count is what lets sound-alike matches (brand misspellings in
// particular) surface even when their embeddings are semantically distant.
//
// The Monitor interface observes each pipeline stage; the Profile
// implementation records per-stage wall-clock timings without altering
// results in any way.
package search
