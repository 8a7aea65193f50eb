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


// Package ai provides abstractions for the AI services used in Medgate.
//
// This package defines interfaces for the three model roles in the query
// pipeline. It follows the dependency inversion principle, allowing the
// orchestration core to depend on abstractions rather than concrete
// implementations.
//
// # Design Principles
//
// The package is designed around four key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Generator: Produces answers from assembled prompts
//   - Judge: Scores and classifies (question, context, answer) material
//   - AIProvider: Aggregates AI services for convenient initialization
//
// The Judge is deliberately distinct from the Generator even when both are
// backed by the same model identifier: judge calls run at temperature 0 in
// JSON mode, and their output is parsed defensively by callers.
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewGenerator, etc.) return
// INTERFACE types to enforce abstraction and prevent accidental coupling to
// concrete implementations. Test utility constructors (mock.NewMockJudge,
// mock.NewMockGenerator) return CONCRETE types to enable behavior injection
// via function fields and assertions via call counters.
package ai
