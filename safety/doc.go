// Package safety implements the two guardrails of the answer pipeline: a
// query classifier that blocks harmful or out-of-scope questions before any
// retrieval happens, and a response checker that blocks generated answers
// that are unsafe or fail the quality gate. Both checks are judged by an
// LLM and fail closed.
package safety
