package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities, generated from content hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Query is the unit of work for one pipeline run. Immutable once created.
type Query struct {
	Text      string
	UserID    string // optional; empty when the caller is anonymous
	Timestamp time.Time
}

// NewQuery creates a Query stamped with the current time.
func NewQuery(text, userID string) Query {
	return Query{
		Text:      text,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

// RetrievedChunk is a single passage returned by the retriever.
// Chunks are never mutated after creation; the ordered list of chunks
// (descending similarity) is the context fed downstream.
type RetrievedChunk struct {
	Text       string
	SourceID   string
	Offset     int // page or chunk offset within the source document
	Similarity float32
}

// Key returns the dedup identity of a chunk within one run.
// Two chunks with the same source and offset are the same passage.
func (c *RetrievedChunk) Key() ID {
	return IDFromContent(c.SourceID + "#" + strconv.Itoa(c.Offset))
}

// DedupChunks removes duplicate source+offset entries, keeping the first
// (highest-similarity) occurrence and preserving order.
func DedupChunks(chunks []RetrievedChunk) []RetrievedChunk {
	if len(chunks) < 2 {
		return chunks
	}
	seen := make(map[ID]bool, len(chunks))
	out := make([]RetrievedChunk, 0, len(chunks))
	for _, c := range chunks {
		key := c.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// GeneratedAnswer is the generator's output for one run, produced exactly once.
type GeneratedAnswer struct {
	Text       string
	TokensUsed int
	Cost       float64
}

// QualityScores holds the four evaluation metrics for one run, each in [0,1],
// plus the derived gate decision.
type QualityScores struct {
	ContextPrecision float32
	ContextRecall    float32
	Faithfulness     float32
	AnswerRelevancy  float32

	// GatePassed is Faithfulness >= T_f && ContextPrecision >= T_p for the
	// thresholds in effect when the scores were gated.
	GatePassed         bool
	FaithfulnessPassed bool
	PrecisionPassed    bool

	// Err carries the evaluator's failure message when scoring fell back to
	// the fail-closed zero scores. Diagnostic only, not a canonical score.
	Err string
}

// QueryClassification is the judge's verdict on a raw question.
type QueryClassification struct {
	IsMedicalQuery bool
	IsHarmful      bool
	QueryType      string // information, diagnosis, treatment, medication, ...
	RiskLevel      string // low, medium, high
	Reasoning      string
}

// ResponseAssessment is the judge's verdict on a generated answer.
type ResponseAssessment struct {
	IsSafe            bool
	ContainsDiagnosis bool
	ContainsTreatment bool
	SafetyConcerns    []string
	Recommendations   []string
}

// SafetyVerdict is the outcome of one safety check. Two exist per run:
// one for the query, one for the answer.
type SafetyVerdict struct {
	IsSafe      bool
	BlockReason string // empty when IsSafe

	// ContentBlocked and QualityBlocked distinguish why an answer verdict
	// failed: policy-flagged content versus a failed quality gate. Both may
	// be set on the same verdict.
	ContentBlocked bool
	QualityBlocked bool

	// Classification is set on query verdicts, Assessment on answer
	// verdicts. Nil when the underlying judge call failed.
	Classification *QueryClassification
	Assessment     *ResponseAssessment
}

// Source describes one cited passage in a pipeline result.
type Source struct {
	SourceID string
	Offset   int
	Excerpt  string
}

// SafetyStatus pairs the two verdicts of one run.
type SafetyStatus struct {
	Query  *SafetyVerdict
	Answer *SafetyVerdict
}

// PipelineResult is the terminal, immutable record of one pipeline run.
// Blocked and successful results carry the same field set; a block is a
// valid, complete response, not an error.
type PipelineResult struct {
	RunID  string
	Query  Query
	Answer string // the vetted answer, or the block message when Blocked

	Sources []Source

	// Scores is nil when the run was blocked before evaluation
	// ("not evaluated", distinct from all-zero fail-closed scores).
	Scores *QualityScores

	Safety SafetyStatus

	Blocked        bool
	BlockReason    string
	ResponseTimeMs int64
	TokensUsed     int
	Cost           float64
}
