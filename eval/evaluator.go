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


package eval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/medgate/ai"
	"github.com/poiesic/medgate/core"
)

// Evaluator scores a (question, context, answer) triple along four
// dimensions using a single batched judge call, then applies the quality
// gate. Scoring is best-effort and fail-closed: Evaluate never returns an
// error, falling back to zero scores with a failed gate instead.
type Evaluator struct {
	judge  ai.Judge
	gate   Gate
	logger *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator) error

// WithGate sets custom quality gate thresholds.
// Default is DefaultGate().
func WithGate(gate Gate) Option {
	return func(e *Evaluator) error {
		e.gate = gate
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEvaluator creates a new quality evaluator backed by the given judge.
func NewEvaluator(judge ai.Judge, opts ...Option) (*Evaluator, error) {
	if judge == nil {
		return nil, ErrJudgeRequired
	}

	e := &Evaluator{
		judge:  judge,
		gate:   DefaultGate(),
		logger: slog.Default().With("component", "evaluator"),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Gate returns the gate the evaluator applies.
func (e *Evaluator) Gate() Gate {
	return e.gate
}

// metricScores is an internal type used for JSON unmarshaling.
// It matches the structure expected from the judge.
type metricScores struct {
	ContextPrecision float32 `json:"context_precision"`
	ContextRecall    float32 `json:"context_recall"`
	Faithfulness     float32 `json:"faithfulness"`
	AnswerRelevancy  float32 `json:"answer_relevancy"`
}

// Evaluate scores the triple and applies the quality gate.
//
// On any judge failure the four scores default to 0.0, the gate defaults to
// failed, and the error message is recorded in QualityScores.Err as
// diagnostic data. Evaluate never propagates the failure to its caller.
func (e *Evaluator) Evaluate(ctx context.Context, question string, contexts []string, answer string) core.QualityScores {
	var raw metricScores
	if err := e.judge.Judge(ctx, metricsSystemPrompt, metricsUserPrompt(question, contexts, answer), &raw); err != nil {
		e.logger.Warn("evaluation failed, falling back to zero scores", "err", err)
		scores := core.QualityScores{Err: err.Error()}
		e.gate.Apply(&scores)
		// Zero scores never pass a positive threshold; force the closed
		// state anyway in case both thresholds are configured to zero.
		scores.GatePassed = false
		scores.FaithfulnessPassed = false
		scores.PrecisionPassed = false
		return scores
	}

	scores := core.QualityScores{
		ContextPrecision: clamp01(raw.ContextPrecision),
		ContextRecall:    clamp01(raw.ContextRecall),
		Faithfulness:     clamp01(raw.Faithfulness),
		AnswerRelevancy:  clamp01(raw.AnswerRelevancy),
	}
	e.gate.Apply(&scores)

	e.logger.Debug("evaluated response",
		"faithfulness", scores.Faithfulness,
		"context_precision", scores.ContextPrecision,
		"context_recall", scores.ContextRecall,
		"answer_relevancy", scores.AnswerRelevancy,
		"gate_passed", scores.GatePassed)

	return scores
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

const metricsSystemPrompt = `You are an evaluation judge for retrieval-augmented medical answers.
Score the given question, retrieved context, and answer on four metrics, each a number from 0.0 to 1.0:

- faithfulness: the fraction of claims in the answer that are supported by the retrieved context. 1.0 means every claim is grounded; hallucinated claims lower the score.
- context_precision: how much of the retrieved context is relevant to answering the question.
- context_recall: how much of the information needed to answer the question is present in the retrieved context.
- answer_relevancy: how directly the answer addresses the question, independent of grounding.

Output ONLY valid JSON. Do not include any preamble, explanation, greeting, or acknowledgment.
Start your response directly with the opening brace { and end with the closing brace }.
Your output must exactly follow this schema:

{
  "context_precision": 0.0,
  "context_recall": 0.0,
  "faithfulness": 0.0,
  "answer_relevancy": 0.0
}

Rules:
- Every value is a number between 0.0 and 1.0.
- An empty retrieved context scores 0.0 for context_precision and context_recall, and 0.0 for faithfulness unless the answer makes no claims.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.`

func metricsUserPrompt(question string, contexts []string, answer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question:\n%s\n\n", question)

	if len(contexts) == 0 {
		b.WriteString("Retrieved context:\n(none)\n\n")
	} else {
		b.WriteString("Retrieved context:\n")
		for n, c := range contexts {
			fmt.Fprintf(&b, "[%d] %s\n", n+1, c)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Answer:\n%s", answer)
	return b.String()
}
