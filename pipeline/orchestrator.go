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


package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/poiesic/medgate/ai"
	"github.com/poiesic/medgate/audit"
	"github.com/poiesic/medgate/core"
	"github.com/poiesic/medgate/eval"
	"github.com/poiesic/medgate/index"
	"github.com/poiesic/medgate/safety"
)

const (
	// DefaultTopK is the number of passages retrieved per question.
	DefaultTopK = 5

	// DefaultMaxAnswerTokens caps the generator output per question.
	DefaultMaxAnswerTokens = 1000
)

// Orchestrator runs one question through the full pipeline: query safety
// check, retrieval, generation, quality evaluation, answer safety check.
// Every run terminates in exactly one PipelineResult, which is also written
// to the audit sink.
//
// All dependencies are injected at construction; the orchestrator itself
// holds no mutable state and is safe for concurrent Run calls.
type Orchestrator struct {
	embedder   ai.Embedder
	retriever  index.Retriever
	generator  ai.Generator
	evaluator  *eval.Evaluator
	classifier *safety.Classifier
	sink       audit.Sink
	monitor    Monitor
	logger     *slog.Logger

	topK            int
	maxAnswerTokens int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithTopK sets the number of passages retrieved per question.
// Default is DefaultTopK.
func WithTopK(k int) Option {
	return func(o *Orchestrator) error {
		if k <= 0 {
			return fmt.Errorf("%w: topK %d", ErrInvalidOption, k)
		}
		o.topK = k
		return nil
	}
}

// WithMaxAnswerTokens caps the generator output per question.
// Default is DefaultMaxAnswerTokens.
func WithMaxAnswerTokens(n int) Option {
	return func(o *Orchestrator) error {
		if n <= 0 {
			return fmt.Errorf("%w: maxAnswerTokens %d", ErrInvalidOption, n)
		}
		o.maxAnswerTokens = n
		return nil
	}
}

// WithSink sets the audit sink. Default is audit.NopSink.
func WithSink(sink audit.Sink) Option {
	return func(o *Orchestrator) error {
		if sink == nil {
			sink = audit.NopSink{}
		}
		o.sink = sink
		return nil
	}
}

// WithMonitor sets the run monitor. Default is a no-op.
func WithMonitor(monitor Monitor) Option {
	return func(o *Orchestrator) error {
		if monitor == nil {
			monitor = noopMonitor{}
		}
		o.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator wires the pipeline from its five stage dependencies.
func NewOrchestrator(
	embedder ai.Embedder,
	retriever index.Retriever,
	generator ai.Generator,
	evaluator *eval.Evaluator,
	classifier *safety.Classifier,
	opts ...Option,
) (*Orchestrator, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder", ErrMissingDependency)
	}
	if retriever == nil {
		return nil, fmt.Errorf("%w: retriever", ErrMissingDependency)
	}
	if generator == nil {
		return nil, fmt.Errorf("%w: generator", ErrMissingDependency)
	}
	if evaluator == nil {
		return nil, fmt.Errorf("%w: evaluator", ErrMissingDependency)
	}
	if classifier == nil {
		return nil, fmt.Errorf("%w: classifier", ErrMissingDependency)
	}

	o := &Orchestrator{
		embedder:        embedder,
		retriever:       retriever,
		generator:       generator,
		evaluator:       evaluator,
		classifier:      classifier,
		sink:            audit.NopSink{},
		monitor:         noopMonitor{},
		logger:          slog.Default().With("component", "pipeline"),
		topK:            DefaultTopK,
		maxAnswerTokens: DefaultMaxAnswerTokens,
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// Run answers one question. The only outcome is a completed PipelineResult:
// a blocked run is a valid result, and upstream failures convert to their
// fail-closed defaults (empty context on retrieval failure, a blocked result
// on generation failure) rather than propagating. The error return covers
// only the non-empty-question precondition.
func (o *Orchestrator) Run(ctx context.Context, question, userID string) (*core.PipelineResult, error) {
	if question == "" {
		return nil, core.ErrEmptyQuestion
	}

	started := time.Now()
	result := &core.PipelineResult{
		RunID: uuid.NewString(),
		Query: core.NewQuery(question, userID),
	}
	logger := o.logger.With("run_id", result.RunID)
	logger.Info("pipeline run started", "question_len", len(question))

	// Stage 1: query safety check. Blocks before any retrieval happens.
	queryVerdict := o.classifier.ValidateQuery(ctx, question)
	result.Safety.Query = queryVerdict
	o.monitor.StageCompleted(result.RunID, StageQueryCheck, time.Since(started))

	if !queryVerdict.IsSafe {
		logger.Info("query blocked", "reason", queryVerdict.BlockReason)
		return o.finish(ctx, result, started, queryVerdict.BlockReason, queryBlockedMessage)
	}

	// Stage 2: embed and retrieve. Failures fall back to empty context; the
	// evaluator then penalizes the ungrounded answer and the gate blocks it.
	stageStart := time.Now()
	var chunks []core.RetrievedChunk
	vector, err := o.embedder.EmbedText(ctx, question)
	if err != nil {
		logger.Warn("embedding failed, continuing without context", "err", err)
	} else {
		chunks, err = o.retriever.Search(ctx, vector, o.topK)
		if err != nil {
			logger.Warn("retrieval failed, continuing without context", "err", err)
			chunks = nil
		}
	}
	chunks = core.DedupChunks(chunks)
	o.monitor.StageCompleted(result.RunID, StageRetrieve, time.Since(stageStart))
	logger.Debug("retrieved context", "chunks", len(chunks))

	for _, chunk := range chunks {
		result.Sources = append(result.Sources, core.Source{
			SourceID: chunk.SourceID,
			Offset:   chunk.Offset,
			Excerpt:  excerpt(chunk.Text),
		})
	}

	// Stage 3: generate. Without an answer there is nothing to evaluate or
	// vet, so a generation failure terminates the run fail-closed.
	stageStart = time.Now()
	completion, err := o.generator.Complete(ctx, answerPrompt(question, chunks), o.maxAnswerTokens)
	if err != nil {
		logger.Warn("generation failed, blocking", "err", err)
		reason := fmt.Sprintf("Answer generation failed: %s", err)
		result.Safety.Answer = &core.SafetyVerdict{IsSafe: false, BlockReason: reason}
		o.monitor.StageCompleted(result.RunID, StageGenerate, time.Since(stageStart))
		return o.finish(ctx, result, started, reason, generationFailedMessage)
	}
	result.TokensUsed = completion.TokensUsed
	result.Cost = completion.Cost
	o.monitor.StageCompleted(result.RunID, StageGenerate, time.Since(stageStart))

	// Stage 4: evaluate. Evaluate never fails; judge errors surface as
	// fail-closed zero scores.
	stageStart = time.Now()
	scores := o.evaluator.Evaluate(ctx, question, chunkTexts(chunks), completion.Text)
	result.Scores = &scores
	o.monitor.StageCompleted(result.RunID, StageEvaluate, time.Since(stageStart))
	logger.Debug("evaluated answer",
		"faithfulness", scores.Faithfulness,
		"context_precision", scores.ContextPrecision,
		"gate_passed", scores.GatePassed)

	// Stage 5: answer safety check. Combines content safety with the
	// quality gate.
	stageStart = time.Now()
	answerVerdict := o.classifier.ValidateResponse(ctx, question, completion.Text, result.Scores)
	result.Safety.Answer = answerVerdict
	o.monitor.StageCompleted(result.RunID, StageAnswerCheck, time.Since(stageStart))

	if !answerVerdict.IsSafe {
		logger.Info("answer blocked", "reason", answerVerdict.BlockReason)
		return o.finish(ctx, result, started, answerVerdict.BlockReason, answerBlockedMessage)
	}

	result.Answer = completion.Text + "\n\n" + safety.Disclaimer()
	return o.finish(ctx, result, started, "", "")
}

// finish stamps the timing fields, writes the audit record, and notifies
// the monitor. blockReason empty means the run succeeded.
func (o *Orchestrator) finish(ctx context.Context, result *core.PipelineResult, started time.Time, blockReason, blockMessage string) (*core.PipelineResult, error) {
	if blockReason != "" {
		result.Blocked = true
		result.BlockReason = blockReason
		result.Answer = fmt.Sprintf(blockMessage, blockReason)
	}
	result.ResponseTimeMs = time.Since(started).Milliseconds()

	// Audit failures never fail the run; the answer decision stands.
	if err := o.sink.Write(ctx, audit.FromResult(result)); err != nil {
		o.logger.Error("audit write failed", "run_id", result.RunID, "err", err)
	}

	o.monitor.RunCompleted(result)
	o.logger.Info("pipeline run finished",
		"run_id", result.RunID,
		"blocked", result.Blocked,
		"response_time_ms", result.ResponseTimeMs,
		"tokens", result.TokensUsed)

	return result, nil
}

// excerpt truncates chunk text for the source citation list, keeping the
// cut on a rune boundary.
func excerpt(text string) string {
	const maxExcerpt = 200
	if len(text) <= maxExcerpt {
		return text
	}
	cut := maxExcerpt
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

func chunkTexts(chunks []core.RetrievedChunk) []string {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	return texts
}
