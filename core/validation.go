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

import "fmt"

// ValidateChunk validates a RetrievedChunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - SourceID must not be empty
//   - Similarity must be within [0,1]
//
// NOT validated:
//   - Offset (0 is a valid page/chunk offset)
func ValidateChunk(chunk *RetrievedChunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkText)
	}

	if chunk.SourceID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptySourceID)
	}

	if chunk.Similarity < 0 || chunk.Similarity > 1 {
		return fmt.Errorf("%w: %w: %f", ErrInvalidChunk, ErrSimilarityRange, chunk.Similarity)
	}

	return nil
}

// ValidateScores validates that all four metrics sit within [0,1].
func ValidateScores(scores *QualityScores) error {
	if scores == nil {
		return nil // "not evaluated" is a valid state
	}

	for _, s := range []struct {
		name  string
		value float32
	}{
		{"context_precision", scores.ContextPrecision},
		{"context_recall", scores.ContextRecall},
		{"faithfulness", scores.Faithfulness},
		{"answer_relevancy", scores.AnswerRelevancy},
	} {
		if s.value < 0 || s.value > 1 {
			return fmt.Errorf("%w: %s=%f", ErrScoreRange, s.name, s.value)
		}
	}

	return nil
}

// ValidateResult validates the terminal invariants of a PipelineResult.
//
// Validation rules:
//   - Query text must not be empty
//   - A blocked result must carry a block reason
//   - Scores, when present, must be within range
func ValidateResult(result *PipelineResult) error {
	if result == nil {
		return fmt.Errorf("%w: result is nil", ErrInvalidResult)
	}

	if result.Query.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidResult, ErrEmptyQuestion)
	}

	if result.Blocked && result.BlockReason == "" {
		return fmt.Errorf("%w: blocked result without block reason", ErrInvalidResult)
	}

	if err := ValidateScores(result.Scores); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResult, err)
	}

	return nil
}
