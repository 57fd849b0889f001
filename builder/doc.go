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


// Package builder runs the offline index construction pipeline.
//
// A build normalizes every catalog record, precomputes phonetic codes,
// embeds the canonical texts through a bounded worker pool, and assembles
// the vector index together with its row-aligned lookup and provenance
// meta. Builds are all-or-nothing: any embedding failure aborts the run
// before artifacts are written.
package builder
