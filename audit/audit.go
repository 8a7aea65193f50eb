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


package audit

import (
	"context"
	"time"

	"github.com/poiesic/medgate/core"
)

// Record is the persisted trace of one pipeline run. Every run writes
// exactly one record, blocked or not.
type Record struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id,omitempty"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`

	Blocked     bool   `json:"blocked"`
	BlockReason string `json:"block_reason,omitempty"`
	BlockStage  string `json:"block_stage,omitempty"` // "query" or "answer"

	SourceIDs []string `json:"source_ids,omitempty"`

	// Scores is nil when the run was blocked before evaluation.
	Scores *Scores `json:"scores,omitempty"`

	ResponseTimeMs int64   `json:"response_time_ms"`
	TokensUsed     int     `json:"tokens_used"`
	Cost           float64 `json:"cost"`
}

// Scores is the audit view of a run's quality metrics.
type Scores struct {
	ContextPrecision float32 `json:"context_precision"`
	ContextRecall    float32 `json:"context_recall"`
	Faithfulness     float32 `json:"faithfulness"`
	AnswerRelevancy  float32 `json:"answer_relevancy"`
	GatePassed       bool    `json:"gate_passed"`
}

// FromResult builds an audit record from a terminal pipeline result.
func FromResult(result *core.PipelineResult) Record {
	record := Record{
		RunID:          result.RunID,
		Timestamp:      result.Query.Timestamp,
		UserID:         result.Query.UserID,
		Question:       result.Query.Text,
		Answer:         result.Answer,
		Blocked:        result.Blocked,
		BlockReason:    result.BlockReason,
		ResponseTimeMs: result.ResponseTimeMs,
		TokensUsed:     result.TokensUsed,
		Cost:           result.Cost,
	}

	for _, source := range result.Sources {
		record.SourceIDs = append(record.SourceIDs, source.SourceID)
	}

	if result.Blocked {
		record.BlockStage = "answer"
		if result.Safety.Answer == nil {
			record.BlockStage = "query"
		}
	}

	if result.Scores != nil {
		record.Scores = &Scores{
			ContextPrecision: result.Scores.ContextPrecision,
			ContextRecall:    result.Scores.ContextRecall,
			Faithfulness:     result.Scores.Faithfulness,
			AnswerRelevancy:  result.Scores.AnswerRelevancy,
			GatePassed:       result.Scores.GatePassed,
		}
	}

	return record
}

// Summary aggregates a window of audit records.
type Summary struct {
	TotalQueries    int     `json:"total_queries"`
	Blocked         int     `json:"blocked"`
	BlockRate       float64 `json:"block_rate"`
	AvgResponseMs   float64 `json:"avg_response_ms"`
	TotalTokens     int     `json:"total_tokens"`
	TotalCost       float64 `json:"total_cost"`
	AvgFaithfulness float64 `json:"avg_faithfulness"`
	AvgPrecision    float64 `json:"avg_precision"`

	// GatePassRate is the share of evaluated runs that passed the quality
	// gate; blocked-before-evaluation runs are excluded.
	GatePassRate float64 `json:"gate_pass_rate"`
}

// Summarize computes aggregate statistics over a slice of records.
// Score averages cover only the runs that were evaluated.
func Summarize(records []Record) Summary {
	summary := Summary{TotalQueries: len(records)}
	if len(records) == 0 {
		return summary
	}

	var totalMs int64
	var scored, passed int
	var faithfulness, precision float64
	for _, record := range records {
		if record.Blocked {
			summary.Blocked++
		}
		totalMs += record.ResponseTimeMs
		summary.TotalTokens += record.TokensUsed
		summary.TotalCost += record.Cost
		if record.Scores != nil {
			scored++
			faithfulness += float64(record.Scores.Faithfulness)
			precision += float64(record.Scores.ContextPrecision)
			if record.Scores.GatePassed {
				passed++
			}
		}
	}

	summary.BlockRate = float64(summary.Blocked) / float64(len(records))
	summary.AvgResponseMs = float64(totalMs) / float64(len(records))
	if scored > 0 {
		summary.AvgFaithfulness = faithfulness / float64(scored)
		summary.AvgPrecision = precision / float64(scored)
		summary.GatePassRate = float64(passed) / float64(scored)
	}

	return summary
}

// Sink persists audit records. Implementations must tolerate concurrent
// Write calls.
type Sink interface {
	// Write persists one record.
	Write(ctx context.Context, record Record) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)

	// Between returns all records with from <= Timestamp < to, oldest first.
	Between(ctx context.Context, from, to time.Time) ([]Record, error)

	// Close releases the sink's resources.
	Close() error
}

// NopSink discards all records. Useful for tests and for callers that opt
// out of auditing.
type NopSink struct{}

func (NopSink) Write(context.Context, Record) error { return nil }

func (NopSink) Recent(context.Context, int) ([]Record, error) { return nil, nil }

func (NopSink) Between(context.Context, time.Time, time.Time) ([]Record, error) { return nil, nil }

func (NopSink) Close() error { return nil }
