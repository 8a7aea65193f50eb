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


package safety

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/medgate/ai"
	"github.com/poiesic/medgate/core"
	"github.com/poiesic/medgate/eval"
)

// RiskLevelHigh is the classification risk level that always blocks a query.
const RiskLevelHigh = "high"

// blockedQueryTypes are the query categories that require professional
// consultation rather than an automated answer.
var blockedQueryTypes = map[string]bool{
	"diagnosis":  true,
	"treatment":  true,
	"medication": true,
}

// Classifier performs the two safety checks of a pipeline run: query intent
// classification before retrieval and answer assessment after generation.
// Both checks share one judge but use disjoint prompts, and both fail
// closed: any internal error yields an unsafe verdict.
//
// Calls are independent and stateless aside from the shared judge client,
// so a Classifier is safe for concurrent use.
type Classifier struct {
	judge  ai.Judge
	gate   eval.Gate
	logger *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier) error

// WithGate sets the quality gate consulted by ValidateResponse.
// Default is eval.DefaultGate().
func WithGate(gate eval.Gate) Option {
	return func(c *Classifier) error {
		c.gate = gate
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewClassifier creates a safety classifier backed by the given judge.
func NewClassifier(judge ai.Judge, opts ...Option) (*Classifier, error) {
	if judge == nil {
		return nil, ErrJudgeRequired
	}

	c := &Classifier{
		judge:  judge,
		gate:   eval.DefaultGate(),
		logger: slog.Default().With("component", "safety-classifier"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// queryClassification is an internal type used for JSON unmarshaling.
type queryClassification struct {
	IsMedicalQuery bool   `json:"is_medical_query"`
	IsHarmful      bool   `json:"is_harmful"`
	QueryType      string `json:"query_type"`
	RiskLevel      string `json:"risk_level"`
	Reasoning      string `json:"reasoning"`
}

// responseAssessment is an internal type used for JSON unmarshaling.
type responseAssessment struct {
	IsSafe            bool     `json:"is_safe"`
	ContainsDiagnosis bool     `json:"contains_diagnosis"`
	ContainsTreatment bool     `json:"contains_treatment"`
	SafetyConcerns    []string `json:"safety_concerns"`
	Recommendations   []string `json:"recommendations"`
}

// ValidateQuery classifies the raw question and decides whether the run may
// proceed. The blocking rule is evaluated entirely here; callers only read
// IsSafe.
//
// Fail-closed: a judge or parse failure blocks the query.
func (c *Classifier) ValidateQuery(ctx context.Context, question string) *core.SafetyVerdict {
	var raw queryClassification
	if err := c.judge.Judge(ctx, queryClassifierSystemPrompt, queryClassifierUserPrompt(question), &raw); err != nil {
		c.logger.Warn("query classification failed, blocking", "err", err)
		return &core.SafetyVerdict{
			IsSafe:         false,
			ContentBlocked: true,
			BlockReason:    fmt.Sprintf("Safety classification failed: %s", err),
		}
	}

	classification := &core.QueryClassification{
		IsMedicalQuery: raw.IsMedicalQuery,
		IsHarmful:      raw.IsHarmful,
		QueryType:      strings.ToLower(raw.QueryType),
		RiskLevel:      strings.ToLower(raw.RiskLevel),
		Reasoning:      raw.Reasoning,
	}

	shouldBlock := classification.IsHarmful ||
		blockedQueryTypes[classification.QueryType] ||
		classification.RiskLevel == RiskLevelHigh

	verdict := &core.SafetyVerdict{
		IsSafe:         !shouldBlock,
		ContentBlocked: shouldBlock,
		Classification: classification,
	}
	if shouldBlock {
		verdict.BlockReason = queryBlockReason(classification)
	}

	c.logger.Debug("classified query",
		"query_type", classification.QueryType,
		"risk_level", classification.RiskLevel,
		"harmful", classification.IsHarmful,
		"safe", verdict.IsSafe)

	return verdict
}

// ValidateResponse assesses the generated answer and combines the content
// judgment with the quality gate: an unfaithful or poorly grounded answer is
// unsafe regardless of its textual content. The verdict's ContentBlocked and
// QualityBlocked flags record which side failed.
//
// Fail-closed: a judge or parse failure blocks the answer.
func (c *Classifier) ValidateResponse(ctx context.Context, question, answer string, scores *core.QualityScores) *core.SafetyVerdict {
	var raw responseAssessment
	if err := c.judge.Judge(ctx, responseCheckerSystemPrompt, responseCheckerUserPrompt(question, answer), &raw); err != nil {
		c.logger.Warn("response assessment failed, blocking", "err", err)
		return &core.SafetyVerdict{
			IsSafe:         false,
			ContentBlocked: true,
			QualityBlocked: !c.gate.Check(scores),
			BlockReason:    fmt.Sprintf("Safety validation failed: %s", err),
		}
	}

	assessment := &core.ResponseAssessment{
		IsSafe:            raw.IsSafe,
		ContainsDiagnosis: raw.ContainsDiagnosis,
		ContainsTreatment: raw.ContainsTreatment,
		SafetyConcerns:    raw.SafetyConcerns,
		Recommendations:   raw.Recommendations,
	}

	qualityPassed := c.gate.Check(scores)
	isSafe := assessment.IsSafe && qualityPassed

	// Failed-threshold messages first, then content concerns
	var reasons []string
	reasons = append(reasons, c.gate.FailureMessages(scores)...)
	if !assessment.IsSafe {
		reasons = append(reasons, assessment.SafetyConcerns...)
	}

	verdict := &core.SafetyVerdict{
		IsSafe:         isSafe,
		ContentBlocked: !assessment.IsSafe,
		QualityBlocked: !qualityPassed,
		Assessment:     assessment,
	}
	if !isSafe {
		verdict.BlockReason = strings.Join(reasons, "; ")
		if verdict.BlockReason == "" {
			verdict.BlockReason = "Response blocked for safety reasons"
		}
	}

	c.logger.Debug("assessed response",
		"content_safe", assessment.IsSafe,
		"quality_passed", qualityPassed,
		"safe", verdict.IsSafe)

	return verdict
}

// queryBlockReason assembles the human-readable block reason for a query
// verdict from its classification.
func queryBlockReason(classification *core.QueryClassification) string {
	var reasons []string

	if classification.IsHarmful {
		reasons = append(reasons, "Query identified as potentially harmful")
	}
	if blockedQueryTypes[classification.QueryType] {
		reasons = append(reasons, fmt.Sprintf(
			"Query type '%s' requires professional medical consultation", classification.QueryType))
	}
	if classification.RiskLevel == RiskLevelHigh {
		reasons = append(reasons, "Query classified as high risk")
	}
	if classification.Reasoning != "" {
		reasons = append(reasons, "Reasoning: "+classification.Reasoning)
	}

	if len(reasons) == 0 {
		return "Query blocked for safety reasons"
	}
	return strings.Join(reasons, "; ")
}

// Disclaimer returns the standard disclaimer appended to every answer that
// passes both safety checks.
func Disclaimer() string {
	return "MEDICAL DISCLAIMER: This information is for educational purposes only and " +
		"should not replace professional medical advice. Always consult with a qualified " +
		"healthcare provider for medical diagnosis, treatment, or medication decisions."
}
