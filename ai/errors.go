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


package ai

import "errors"

var (
	// ErrProviderUnavailable indicates the embedding service could not be
	// reached. Fatal for a build run; a caller may choose to retry a query.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrProviderTimeout indicates the embedding call exceeded its deadline.
	ErrProviderTimeout = errors.New("embedding provider timeout")

	// ErrProviderProtocol indicates the provider responded with something
	// other than the expected embedding payload.
	ErrProviderProtocol = errors.New("embedding provider protocol error")

	// ErrEmptyText indicates an attempt to embed an empty string.
	ErrEmptyText = errors.New("text must not be empty")
)
