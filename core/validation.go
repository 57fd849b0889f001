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


package core

import "fmt"

// Params are the tunable knobs of a single query.
type Params struct {
	// K is the number of results to return.
	K int

	// Pool is the candidate pool size drawn from the vector index before
	// the phonetic rerank. Must be at least K; a wider pool lets phonetic
	// boosting promote sound-alike matches the semantic top-K would miss.
	Pool int

	// Boost is the weight applied to the phonetic score during fusion.
	// Zero disables phonetic boosting entirely.
	Boost float64
}

// DefaultParams returns the serving defaults: 5 results from a pool of 150
// candidates with a phonetic boost of 0.2.
func DefaultParams() Params {
	return Params{K: 5, Pool: 150, Boost: 0.2}
}

// Validate checks the parameters and reports the first violation.
//
// Rules:
//   - K must be at least 1
//   - Pool must be at least K
//   - Boost must not be negative
//
// All violations wrap ErrInvalidQuery.
func (p Params) Validate() error {
	if p.K < 1 {
		return fmt.Errorf("%w: k must be at least 1, got %d", ErrInvalidQuery, p.K)
	}
	if p.Pool < p.K {
		return fmt.Errorf("%w: pool %d is smaller than k %d", ErrInvalidQuery, p.Pool, p.K)
	}
	if p.Boost < 0 {
		return fmt.Errorf("%w: boost must not be negative, got %g", ErrInvalidQuery, p.Boost)
	}
	return nil
}
