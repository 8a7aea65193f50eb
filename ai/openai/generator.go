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


package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/medgate/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client    llms.Model
	costPerKT float64
	logger    *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.GeneratorHost),
		openai.WithToken("none"),
		openai.WithModel(config.GeneratorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client:    client,
		costPerKT: config.CostPerKiloToken,
		logger:    slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Complete generates a single completion for the prompt.
// Generation runs at a low temperature; retries on transport failure are the
// HTTP client's concern, not this layer's.
func (g *Generator) Complete(ctx context.Context, prompt string, maxTokens int) (*ai.Completion, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	response, err := g.client.GenerateContent(ctx, content,
		llms.WithTemperature(0.1),
		llms.WithMaxTokens(maxTokens),
	)
	if err != nil {
		g.logger.Error("failed to generate completion", "err", err)
		return nil, err
	}

	if len(response.Choices) < 1 {
		g.logger.Warn("no choices returned from model")
		return &ai.Completion{}, nil
	}

	choice := response.Choices[0]
	tokens := totalTokens(choice.GenerationInfo)

	completion := &ai.Completion{
		Text:       choice.Content,
		TokensUsed: tokens,
		Cost:       float64(tokens) / 1000 * g.costPerKT,
	}

	g.logger.Debug("generated completion",
		"length", len(completion.Text),
		"tokens", completion.TokensUsed)

	return completion, nil
}

// totalTokens extracts the total token count from langchaingo generation info.
// Providers report usage under varying keys; missing usage counts as zero.
func totalTokens(info map[string]any) int {
	if info == nil {
		return 0
	}
	if v, ok := asInt(info["TotalTokens"]); ok {
		return v
	}
	prompt, _ := asInt(info["PromptTokens"])
	completion, _ := asInt(info["CompletionTokens"])
	return prompt + completion
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
