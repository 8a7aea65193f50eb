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


package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/poiesic/medgate/eval"
	"github.com/poiesic/medgate/pipeline"
)

// Config is the full runtime configuration: an optional YAML file overlaid
// with MEDGATE_-prefixed environment variables. Double underscores in env
// names map to section separators (MEDGATE_AI__JUDGE_MODEL -> ai.judge_model).
type Config struct {
	AI       AIConfig       `koanf:"ai"`
	Index    IndexConfig    `koanf:"index"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Eval     EvalConfig     `koanf:"eval"`
	Audit    AuditConfig    `koanf:"audit"`
	Log      LogConfig      `koanf:"log"`
}

type AIConfig struct {
	GeneratorHost    string  `koanf:"generator_host"`
	JudgeHost        string  `koanf:"judge_host"`
	EmbeddingHost    string  `koanf:"embedding_host"`
	GeneratorModel   string  `koanf:"generator_model"`
	JudgeModel       string  `koanf:"judge_model"`
	EmbeddingModel   string  `koanf:"embedding_model"`
	MaxAnswerTokens  int     `koanf:"max_answer_tokens"`
	CostPerKiloToken float64 `koanf:"cost_per_kilo_token"`
}

type IndexConfig struct {
	Path       string `koanf:"path"` // empty means in-memory
	Collection string `koanf:"collection"`
}

type PipelineConfig struct {
	TopK int `koanf:"top_k"`
}

type EvalConfig struct {
	FaithfulnessThreshold float32 `koanf:"faithfulness_threshold"`
	PrecisionThreshold    float32 `koanf:"precision_threshold"`
}

type AuditConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error
}

// Load reads configuration from the given YAML file (optional; a missing
// file is not an error) and MEDGATE_ environment variables, applies
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		}
	}

	// Environment variables override file values
	if err := k.Load(env.Provider("MEDGATE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "MEDGATE_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	applyDefaults(k)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	defaults := map[string]any{
		"ai.generator_host":           "http://localhost:11434/v1",
		"ai.judge_host":               "http://localhost:11434/v1",
		"ai.embedding_host":           "http://localhost:11434/v1",
		"ai.generator_model":          "gpt-4o-mini",
		"ai.judge_model":              "gpt-4o-mini",
		"ai.embedding_model":          "embeddinggemma",
		"ai.max_answer_tokens":        pipeline.DefaultMaxAnswerTokens,
		"index.path":                  "",
		"index.collection":            "passages",
		"pipeline.top_k":              pipeline.DefaultTopK,
		"eval.faithfulness_threshold": eval.DefaultFaithfulnessThreshold,
		"eval.precision_threshold":    eval.DefaultPrecisionThreshold,
		"audit.path":                  "medgate-audit",
		"log.level":                   "info",
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}
}

// Validate checks the configuration for values that would fail later at
// component construction time.
func (c *Config) Validate() error {
	if c.AI.GeneratorModel == "" || c.AI.JudgeModel == "" || c.AI.EmbeddingModel == "" {
		return fmt.Errorf("%w: model names must not be empty", ErrInvalidConfig)
	}
	if c.AI.MaxAnswerTokens <= 0 {
		return fmt.Errorf("%w: max_answer_tokens %d", ErrInvalidConfig, c.AI.MaxAnswerTokens)
	}
	if c.AI.CostPerKiloToken < 0 {
		return fmt.Errorf("%w: cost_per_kilo_token %f", ErrInvalidConfig, c.AI.CostPerKiloToken)
	}
	if c.Pipeline.TopK <= 0 {
		return fmt.Errorf("%w: top_k %d", ErrInvalidConfig, c.Pipeline.TopK)
	}
	if t := c.Eval.FaithfulnessThreshold; t < 0 || t > 1 {
		return fmt.Errorf("%w: faithfulness_threshold %f", ErrInvalidConfig, t)
	}
	if t := c.Eval.PrecisionThreshold; t < 0 || t > 1 {
		return fmt.Errorf("%w: precision_threshold %f", ErrInvalidConfig, t)
	}
	if c.Index.Collection == "" {
		return fmt.Errorf("%w: index collection must not be empty", ErrInvalidConfig)
	}
	if !c.Audit.InMemory && c.Audit.Path == "" {
		return fmt.Errorf("%w: audit path must be set when not in-memory", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.Log.Level)
	}
	return nil
}
