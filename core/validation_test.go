package core

import (
	"errors"
	"testing"
)

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *RetrievedChunk
		wantErr error
	}{
		{
			name:    "valid chunk",
			chunk:   &RetrievedChunk{Text: "passage", SourceID: "doc.pdf", Offset: 2, Similarity: 0.8},
			wantErr: nil,
		},
		{
			name:    "nil chunk",
			chunk:   nil,
			wantErr: ErrInvalidChunk,
		},
		{
			name:    "empty text",
			chunk:   &RetrievedChunk{SourceID: "doc.pdf", Similarity: 0.5},
			wantErr: ErrEmptyChunkText,
		},
		{
			name:    "empty source",
			chunk:   &RetrievedChunk{Text: "passage", Similarity: 0.5},
			wantErr: ErrEmptySourceID,
		},
		{
			name:    "similarity above one",
			chunk:   &RetrievedChunk{Text: "passage", SourceID: "doc.pdf", Similarity: 1.2},
			wantErr: ErrSimilarityRange,
		},
		{
			name:    "negative similarity",
			chunk:   &RetrievedChunk{Text: "passage", SourceID: "doc.pdf", Similarity: -0.1},
			wantErr: ErrSimilarityRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunk() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunk() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateScores(t *testing.T) {
	t.Run("nil scores are valid", func(t *testing.T) {
		if err := ValidateScores(nil); err != nil {
			t.Errorf("ValidateScores(nil) = %v, want nil", err)
		}
	})

	t.Run("in-range scores", func(t *testing.T) {
		s := &QualityScores{ContextPrecision: 0.9, ContextRecall: 0.7, Faithfulness: 1.0, AnswerRelevancy: 0}
		if err := ValidateScores(s); err != nil {
			t.Errorf("ValidateScores() = %v, want nil", err)
		}
	})

	t.Run("out-of-range score", func(t *testing.T) {
		s := &QualityScores{Faithfulness: 1.5}
		err := ValidateScores(s)
		if !errors.Is(err, ErrScoreRange) {
			t.Errorf("ValidateScores() error = %v, want %v", err, ErrScoreRange)
		}
	})
}

func TestValidateResult(t *testing.T) {
	tests := []struct {
		name    string
		result  *PipelineResult
		wantErr error
	}{
		{
			name: "valid passed result",
			result: &PipelineResult{
				Query:  Query{Text: "What is diabetes?"},
				Answer: "Diabetes is a metabolic condition.",
				Scores: &QualityScores{Faithfulness: 0.95, ContextPrecision: 0.9},
			},
			wantErr: nil,
		},
		{
			name: "valid blocked result with reason",
			result: &PipelineResult{
				Query:       Query{Text: "Do I have diabetes?"},
				Blocked:     true,
				BlockReason: "Query classified as high risk",
			},
			wantErr: nil,
		},
		{
			name:    "nil result",
			result:  nil,
			wantErr: ErrInvalidResult,
		},
		{
			name:    "empty question",
			result:  &PipelineResult{},
			wantErr: ErrEmptyQuestion,
		},
		{
			name: "blocked without reason",
			result: &PipelineResult{
				Query:   Query{Text: "question"},
				Blocked: true,
			},
			wantErr: ErrInvalidResult,
		},
		{
			name: "out-of-range scores",
			result: &PipelineResult{
				Query:  Query{Text: "question"},
				Scores: &QualityScores{AnswerRelevancy: 2},
			},
			wantErr: ErrScoreRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResult(tt.result)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateResult() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateResult() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
