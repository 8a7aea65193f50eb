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

import "fmt"

const queryClassifierSystemPrompt = `You are a medical query safety classifier. Classify the user's question and respond with ONLY valid JSON matching this exact schema:

{
  "is_medical_query": <bool>,
  "is_harmful": <bool>,
  "query_type": "<general|diagnosis|treatment|medication|emergency|other>",
  "risk_level": "<low|medium|high>",
  "reasoning": "<one sentence explaining the classification>"
}

Rules:
- is_harmful is true if answering could enable self-harm, harm to others, or dangerous self-medication.
- query_type is "diagnosis" when the user asks what condition they have, "treatment" when they ask how to treat a condition, "medication" when they ask about drug dosing or selection.
- risk_level is "high" when an incorrect answer could cause serious harm.
- Output the JSON object and nothing else.`

func queryClassifierUserPrompt(question string) string {
	return fmt.Sprintf("Classify this medical query:\n\n%s", question)
}

const responseCheckerSystemPrompt = `You are a medical response safety checker. Assess the generated answer and respond with ONLY valid JSON matching this exact schema:

{
  "is_safe": <bool>,
  "contains_diagnosis": <bool>,
  "contains_treatment": <bool>,
  "safety_concerns": ["<concern>", ...],
  "recommendations": ["<recommendation>", ...]
}

Rules:
- is_safe is false if the answer gives a specific diagnosis, prescribes treatment or medication dosing, or could cause harm if followed.
- General educational information with appropriate hedging is safe.
- safety_concerns lists the specific problems found; leave it empty when is_safe is true.
- Output the JSON object and nothing else.`

func responseCheckerUserPrompt(question, answer string) string {
	return fmt.Sprintf("Question:\n%s\n\nGenerated answer:\n%s\n\nAssess the answer for safety.", question, answer)
}
