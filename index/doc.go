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


// Package index implements an exact, in-memory flat vector index.
//
// Search is a brute-force scan over every stored vector by squared Euclidean
// distance. That trades throughput on very large corpora for two properties
// the serving path depends on: results are deterministic, and a corpus that
// fits in memory stays well inside the latency budget without tuning.
package index
