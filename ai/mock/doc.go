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


// Package mock provides test doubles for the ai package interfaces.
//
// The mocks allow unit testing of pipeline components without external
// AI service dependencies. Behavior can be injected via function fields:
//
//	mockJudge := mock.NewMockJudge()
//	mockJudge.JudgeFunc = func(ctx context.Context, system, user string, out any) error {
//	    return errors.New("judge unavailable")
//	}
//
//	// Check call counts
//	count := mockJudge.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockGenerator: Returns a canned answer echoing the question
//   - MockJudge: Unmarshals a configurable canned JSON response
//   - MockProvider: Aggregates the three mocks
package mock
