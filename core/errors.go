// Copyright 2025 Poiesic Systems
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

// Domain validation errors
var (
	// ErrInvalidChunk indicates a RetrievedChunk failed validation.
	ErrInvalidChunk = errors.New("invalid retrieved chunk")

	// ErrInvalidResult indicates a PipelineResult failed validation.
	ErrInvalidResult = errors.New("invalid pipeline result")

	// ErrEmptyQuestion indicates the query text is empty.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrEmptyChunkText indicates a chunk has no passage text.
	ErrEmptyChunkText = errors.New("chunk text cannot be empty")

	// ErrEmptySourceID indicates a chunk has no source identifier.
	ErrEmptySourceID = errors.New("chunk source id cannot be empty")

	// ErrSimilarityRange indicates a similarity score outside [0,1].
	ErrSimilarityRange = errors.New("similarity must be within [0,1]")

	// ErrScoreRange indicates a quality score outside [0,1].
	ErrScoreRange = errors.New("quality score must be within [0,1]")
)
