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
	"time"

	"github.com/poiesic/medgate/core"
)

// Pipeline stage names reported to the Monitor.
const (
	StageQueryCheck  = "query_check"
	StageRetrieve    = "retrieve"
	StageGenerate    = "generate"
	StageEvaluate    = "evaluate"
	StageAnswerCheck = "answer_check"
)

// Monitor receives per-stage timings and terminal results of pipeline runs.
// Implementations must be safe for concurrent calls; callbacks run on the
// Run goroutine, so they should return quickly.
type Monitor interface {
	StageCompleted(runID, stage string, elapsed time.Duration)
	RunCompleted(result *core.PipelineResult)
}

type noopMonitor struct{}

func (noopMonitor) StageCompleted(string, string, time.Duration) {}

func (noopMonitor) RunCompleted(*core.PipelineResult) {}
