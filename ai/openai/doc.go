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


// Package openai implements ai.Embedder against OpenAI-compatible embedding
// APIs, which includes local Ollama deployments serving the /v1 surface.
//
// The embedder enforces the configured per-call timeout and translates
// transport failures into the ai package's provider error taxonomy. It never
// retries: resilience policy belongs to callers.
package openai
