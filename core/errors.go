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

import "errors"

// Domain errors
var (
	// ErrInvalidQuery indicates query parameters failed validation.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrDimensionMismatch indicates vectors of inconsistent dimensionality,
	// either at build time or between artifacts and a query embedding.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNoRecords indicates a build was attempted over an empty catalog.
	ErrNoRecords = errors.New("no records to index")
)
