package badger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/medgate/audit"
)

func newMemorySink(t *testing.T) *Sink {
	t.Helper()
	sink, err := Open("", true)
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })
	return sink
}

func makeRecord(runID string, ts time.Time) audit.Record {
	return audit.Record{
		RunID:          runID,
		Timestamp:      ts,
		Question:       "What is hypertension?",
		Answer:         "Hypertension is persistently elevated blood pressure.",
		SourceIDs:      []string{"cardiology.pdf"},
		ResponseTimeMs: 120,
		TokensUsed:     100,
		Cost:           0.002,
		Scores: &audit.Scores{
			ContextPrecision: 0.9,
			ContextRecall:    0.85,
			Faithfulness:     0.95,
			AnswerRelevancy:  0.9,
			GatePassed:       true,
		},
	}
}

func TestWriteAndRecent(t *testing.T) {
	sink := newMemorySink(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		record := makeRecord(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, sink.Write(ctx, record))
	}

	records, err := sink.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Newest first
	assert.Equal(t, "run-4", records[0].RunID)
	assert.Equal(t, "run-3", records[1].RunID)
	assert.Equal(t, "run-2", records[2].RunID)
}

func TestRecentLimitExceedsCount(t *testing.T) {
	sink := newMemorySink(t)
	ctx := context.Background()

	require.NoError(t, sink.Write(ctx, makeRecord("only", time.Now().UTC())))

	records, err := sink.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRecentEmpty(t *testing.T) {
	sink := newMemorySink(t)

	records, err := sink.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecentInvalidLimit(t *testing.T) {
	sink := newMemorySink(t)

	_, err := sink.Recent(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestWriteMissingRunID(t *testing.T) {
	sink := newMemorySink(t)

	err := sink.Write(context.Background(), audit.Record{Question: "q"})
	assert.ErrorIs(t, err, ErrMissingRunID)
}

func TestWriteRoundTrip(t *testing.T) {
	sink := newMemorySink(t)
	ctx := context.Background()

	original := makeRecord("roundtrip", time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	original.Blocked = true
	original.BlockReason = "Low faithfulness score: 0.500 < 0.90"
	original.BlockStage = "answer"
	require.NoError(t, sink.Write(ctx, original))

	records, err := sink.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, original.RunID, got.RunID)
	assert.Equal(t, original.Question, got.Question)
	assert.Equal(t, original.BlockReason, got.BlockReason)
	assert.Equal(t, original.BlockStage, got.BlockStage)
	assert.Equal(t, original.SourceIDs, got.SourceIDs)
	require.NotNil(t, got.Scores)
	assert.InDelta(t, original.Scores.Faithfulness, got.Scores.Faithfulness, 1e-6)
	assert.True(t, got.Timestamp.Equal(original.Timestamp))
}

func TestBetween(t *testing.T) {
	sink := newMemorySink(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		record := makeRecord(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, sink.Write(ctx, record))
	}

	// Window covering hours 2..6 exclusive of the upper bound
	records, err := sink.Between(ctx, base.Add(2*time.Hour), base.Add(6*time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 4)

	// Oldest first
	assert.Equal(t, "run-2", records[0].RunID)
	assert.Equal(t, "run-5", records[3].RunID)
}

func TestBetweenInvalidRange(t *testing.T) {
	sink := newMemorySink(t)
	now := time.Now().UTC()

	_, err := sink.Between(context.Background(), now, now)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = sink.Between(context.Background(), now, now.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestSummary(t *testing.T) {
	sink := newMemorySink(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	ok := makeRecord("ok", base)
	require.NoError(t, sink.Write(ctx, ok))

	blocked := makeRecord("blocked", base.Add(time.Minute))
	blocked.Blocked = true
	blocked.BlockStage = "query"
	blocked.Scores = nil
	blocked.TokensUsed = 0
	blocked.Cost = 0
	require.NoError(t, sink.Write(ctx, blocked))

	summary, err := sink.Summary(ctx, base, base.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalQueries)
	assert.Equal(t, 1, summary.Blocked)
	assert.InDelta(t, 0.5, summary.BlockRate, 1e-9)
	assert.Equal(t, 100, summary.TotalTokens)
	// Score averages cover only the evaluated run
	assert.InDelta(t, 0.95, summary.AvgFaithfulness, 1e-6)
	assert.InDelta(t, 0.9, summary.AvgPrecision, 1e-6)
}
