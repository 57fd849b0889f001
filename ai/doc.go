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


// Package ai defines the embedding provider abstraction.
//
// The Embedder interface converts text into fixed-dimension vectors through
// a synchronous round-trip to an external service. Failures surface as one
// of three sentinel errors so callers can tell an unreachable provider from
// a slow one from a malformed response:
//
//   - ErrProviderUnavailable: connection refused or unreachable
//   - ErrProviderTimeout: the call exceeded its deadline
//   - ErrProviderProtocol: empty or malformed response
//
// Subpackages provide implementations:
//   - ai/openai: OpenAI-compatible APIs (including local Ollama)
//   - ai/mock: deterministic test doubles
package ai
