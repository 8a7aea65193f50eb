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
	"fmt"
	"strings"

	"github.com/poiesic/medgate/core"
)

// Terminal messages shown in place of a withheld answer. The %s slot takes
// the block reason.
const (
	queryBlockedMessage = "I cannot answer this question. %s\n\n" +
		"Please consult a qualified healthcare provider for personalized medical advice."

	answerBlockedMessage = "The generated answer did not pass safety validation and has been withheld. %s\n\n" +
		"Please consult a qualified healthcare provider for personalized medical advice."

	generationFailedMessage = "An answer could not be generated for this question. %s\n\n" +
		"Please try again later or consult a qualified healthcare provider."
)

// answerPrompt builds the generation prompt from the question and its
// retrieved context. Passages are numbered so the model can cite them.
func answerPrompt(question string, chunks []core.RetrievedChunk) string {
	var b strings.Builder

	b.WriteString("You are a medical information assistant. Answer the question using ONLY the context passages below.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Base every statement on the provided context. Do not add information from outside it.\n")
	b.WriteString("- Cite the passages you use by their number, e.g. [1].\n")
	b.WriteString("- If the context does not contain enough information to answer, say so explicitly.\n")
	b.WriteString("- Provide educational information only. Never give a diagnosis, prescribe treatment, or recommend medication dosing.\n\n")

	b.WriteString("Context:\n")
	if len(chunks) == 0 {
		b.WriteString("(no relevant passages found)\n")
	}
	for i, chunk := range chunks {
		fmt.Fprintf(&b, "[%d] (%s) %s\n", i+1, chunk.SourceID, chunk.Text)
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")

	return b.String()
}
