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


// Package phonetic encodes text into sound-alike codes and scores how
// similar two codes sound.
//
// Encoding uses the double-metaphone algorithm per token, keeping both the
// primary and the alternate reading so ambiguous pronunciations (soft vs
// hard consonants) still match. Similarity is token-set overlap rather than
// edit distance: it runs in O(tokens) for realistic product names and makes
// ties predictable.
package phonetic
