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


package medgate

import (
	"context"
	"log/slog"

	"github.com/poiesic/medgate/ai"
	"github.com/poiesic/medgate/ai/openai"
	"github.com/poiesic/medgate/audit"
	auditbadger "github.com/poiesic/medgate/audit/badger"
	"github.com/poiesic/medgate/config"
	"github.com/poiesic/medgate/core"
	"github.com/poiesic/medgate/eval"
	"github.com/poiesic/medgate/index"
	"github.com/poiesic/medgate/pipeline"
	"github.com/poiesic/medgate/safety"
)

// Service wires the full answer pipeline from a loaded configuration: AI
// provider, vector index, audit sink, evaluator, classifier, orchestrator.
type Service struct {
	provider     ai.AIProvider
	idx          *index.ChromemIndex
	sink         audit.Sink
	orchestrator *pipeline.Orchestrator
	logger       *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	monitor  pipeline.Monitor
	provider ai.AIProvider
}

// WithMonitor attaches a pipeline monitor to the service.
func WithMonitor(monitor pipeline.Monitor) ServiceOption {
	return func(o *serviceOptions) {
		o.monitor = monitor
	}
}

// WithProvider substitutes the AI provider, bypassing the OpenAI-compatible
// client construction. Intended for tests.
func WithProvider(provider ai.AIProvider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// NewService builds a Service from configuration. The caller owns the
// returned service and must Close it.
func NewService(cfg *config.Config, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{}
	for _, opt := range opts {
		opt(options)
	}

	provider := options.provider
	if provider == nil {
		aiCfg := ai.NewConfig(
			ai.WithGeneratorHost(cfg.AI.GeneratorHost),
			ai.WithJudgeHost(cfg.AI.JudgeHost),
			ai.WithEmbeddingHost(cfg.AI.EmbeddingHost),
			ai.WithGeneratorModel(cfg.AI.GeneratorModel),
			ai.WithJudgeModel(cfg.AI.JudgeModel),
			ai.WithEmbeddingModel(cfg.AI.EmbeddingModel),
			ai.WithMaxAnswerTokens(cfg.AI.MaxAnswerTokens),
			ai.WithCostPerKiloToken(cfg.AI.CostPerKiloToken),
		)
		var err error
		provider, err = openai.NewProvider(aiCfg)
		if err != nil {
			return nil, err
		}
	}

	idx, err := newIndex(cfg)
	if err != nil {
		provider.Close()
		return nil, err
	}

	sink, err := newSink(cfg)
	if err != nil {
		provider.Close()
		return nil, err
	}

	gate, err := eval.NewGate(cfg.Eval.FaithfulnessThreshold, cfg.Eval.PrecisionThreshold)
	if err != nil {
		sink.Close()
		provider.Close()
		return nil, err
	}

	evaluator, err := eval.NewEvaluator(provider.Judge(), eval.WithGate(gate))
	if err != nil {
		sink.Close()
		provider.Close()
		return nil, err
	}

	classifier, err := safety.NewClassifier(provider.Judge(), safety.WithGate(gate))
	if err != nil {
		sink.Close()
		provider.Close()
		return nil, err
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithTopK(cfg.Pipeline.TopK),
		pipeline.WithMaxAnswerTokens(cfg.AI.MaxAnswerTokens),
		pipeline.WithSink(sink),
	}
	if options.monitor != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithMonitor(options.monitor))
	}

	orchestrator, err := pipeline.NewOrchestrator(
		provider.Embedder(), idx, provider.Generator(), evaluator, classifier, pipelineOpts...)
	if err != nil {
		sink.Close()
		provider.Close()
		return nil, err
	}

	return &Service{
		provider:     provider,
		idx:          idx,
		sink:         sink,
		orchestrator: orchestrator,
		logger:       slog.Default().With("component", "medgate"),
	}, nil
}

func newIndex(cfg *config.Config) (*index.ChromemIndex, error) {
	indexOpts := []index.Option{index.WithCollection(cfg.Index.Collection)}
	if cfg.Index.Path == "" {
		return index.NewMemoryIndex(indexOpts...)
	}
	return index.NewChromemIndex(cfg.Index.Path, indexOpts...)
}

func newSink(cfg *config.Config) (audit.Sink, error) {
	return auditbadger.Open(cfg.Audit.Path, cfg.Audit.InMemory)
}

// Ask runs one question through the pipeline.
func (s *Service) Ask(ctx context.Context, question, userID string) (*core.PipelineResult, error) {
	return s.orchestrator.Run(ctx, question, userID)
}

// Seed embeds the given passages and adds them to the index.
func (s *Service) Seed(ctx context.Context, passages []index.Passage) error {
	texts := make([]string, len(passages))
	for i, passage := range passages {
		texts[i] = passage.Text
	}

	vectors, err := s.provider.Embedder().EmbedTexts(ctx, texts)
	if err != nil {
		return err
	}
	for i := range passages {
		passages[i].Embedding = vectors[i]
	}

	return s.idx.Add(ctx, passages...)
}

// Index returns the vector index for direct access.
func (s *Service) Index() *index.ChromemIndex {
	return s.idx
}

// Audit returns the audit sink for direct access.
func (s *Service) Audit() audit.Sink {
	return s.sink
}

// Close releases the service's resources.
func (s *Service) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	if err := s.sink.Close(); err != nil {
		s.logger.Error("error closing audit sink", "err", err)
		return err
	}
	return nil
}
