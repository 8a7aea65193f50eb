// Package pipeline orchestrates one question through the full answer flow:
// query safety check, retrieval, generation, quality evaluation, and answer
// safety check. Every run produces exactly one PipelineResult and one audit
// record; a blocked run is a complete result, not an error.
package pipeline
