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


// Package catalog provides the product catalog storage layer.
//
// The catalog is the system of record for raw product rows: CSV files are
// ingested into a Repository, and the builder reads the full catalog back
// out when producing a new artifact set. Storage is decoupled from the
// search pipeline behind the Repository interface, so different backends
// (BadgerDB, in-memory) can be used interchangeably.
//
// Public constructors return the Repository interface rather than concrete
// types:
//
//	repo, err := badger.NewRepository("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// Use in tests with in-memory storage:
//
//	repo, backend, err := badger.NewMemoryRepository()
//
// All repository implementations must be thread-safe. All methods accept a
// context.Context for cancellation.
package catalog
