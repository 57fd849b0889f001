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


package artifact

import "errors"

var (
	// ErrArtifactMismatch indicates the artifact set disagrees with itself:
	// row counts or ordering metadata differ between files. Loading refuses
	// to serve rather than truncate or pad.
	ErrArtifactMismatch = errors.New("artifact mismatch")

	// ErrBadFormat indicates a file is not a recognizable artifact.
	ErrBadFormat = errors.New("unrecognized artifact format")
)
