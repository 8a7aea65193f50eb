package index

import (
	"context"
	"testing"

	"github.com/poiesic/medgate/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embedTexts(t *testing.T, texts ...string) [][]float32 {
	t.Helper()
	vectors, err := mock.NewMockEmbedder().EmbedTexts(context.Background(), texts)
	require.NoError(t, err)
	return vectors
}

func TestNewMemoryIndex(t *testing.T) {
	idx, err := NewMemoryIndex()
	require.NoError(t, err)
	assert.NotNil(t, idx)
	assert.Equal(t, 0, idx.Count())
}

func TestAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("empty batch is a no-op", func(t *testing.T) {
		idx, err := NewMemoryIndex()
		require.NoError(t, err)
		require.NoError(t, idx.Add(ctx))
		assert.Equal(t, 0, idx.Count())
	})

	t.Run("valid passages", func(t *testing.T) {
		idx, err := NewMemoryIndex()
		require.NoError(t, err)

		vectors := embedTexts(t, "diabetes overview", "insulin basics")
		err = idx.Add(ctx,
			Passage{Text: "diabetes overview", SourceID: "handbook.pdf", Offset: 1, Embedding: vectors[0]},
			Passage{Text: "insulin basics", SourceID: "handbook.pdf", Offset: 2, Embedding: vectors[1]},
		)
		require.NoError(t, err)
		assert.Equal(t, 2, idx.Count())
	})

	t.Run("passage without text", func(t *testing.T) {
		idx, err := NewMemoryIndex()
		require.NoError(t, err)

		err = idx.Add(ctx, Passage{SourceID: "doc", Embedding: []float32{0.1}})
		assert.ErrorIs(t, err, ErrEmptyPassage)
	})

	t.Run("passage without embedding", func(t *testing.T) {
		idx, err := NewMemoryIndex()
		require.NoError(t, err)

		err = idx.Add(ctx, Passage{Text: "text", SourceID: "doc"})
		assert.ErrorIs(t, err, ErrEmptyPassage)
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("empty index returns empty list", func(t *testing.T) {
		idx, err := NewMemoryIndex()
		require.NoError(t, err)

		vector := embedTexts(t, "anything")[0]
		chunks, err := idx.Search(ctx, vector, 5)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("empty vector rejected", func(t *testing.T) {
		idx, err := NewMemoryIndex()
		require.NoError(t, err)

		_, err = idx.Search(ctx, nil, 5)
		assert.ErrorIs(t, err, ErrEmptyVector)
	})

	t.Run("invalid top-k rejected", func(t *testing.T) {
		idx, err := NewMemoryIndex()
		require.NoError(t, err)

		_, err = idx.Search(ctx, []float32{0.1}, 0)
		assert.ErrorIs(t, err, ErrInvalidTopK)
	})

	t.Run("returns indexed passages with metadata", func(t *testing.T) {
		idx, err := NewMemoryIndex()
		require.NoError(t, err)

		texts := []string{
			"Diabetes is a chronic metabolic condition.",
			"Insulin regulates blood glucose levels.",
			"Hypertension is persistently elevated blood pressure.",
		}
		vectors := embedTexts(t, texts...)
		for n, text := range texts {
			require.NoError(t, idx.Add(ctx, Passage{
				Text:      text,
				SourceID:  "handbook.pdf",
				Offset:    n,
				Embedding: vectors[n],
			}))
		}

		query := embedTexts(t, "Diabetes is a chronic metabolic condition.")[0]
		chunks, err := idx.Search(ctx, query, 2)
		require.NoError(t, err)
		require.Len(t, chunks, 2)

		// Exact vector match ranks first with maximal similarity
		assert.Equal(t, texts[0], chunks[0].Text)
		assert.Equal(t, "handbook.pdf", chunks[0].SourceID)
		assert.Equal(t, 0, chunks[0].Offset)
		assert.InDelta(t, 1.0, float64(chunks[0].Similarity), 0.01)

		// Descending similarity order
		assert.GreaterOrEqual(t, chunks[0].Similarity, chunks[1].Similarity)
	})

	t.Run("k larger than index narrows result", func(t *testing.T) {
		idx, err := NewMemoryIndex()
		require.NoError(t, err)

		vector := embedTexts(t, "single passage")[0]
		require.NoError(t, idx.Add(ctx, Passage{
			Text:      "single passage",
			SourceID:  "doc",
			Embedding: vector,
		}))

		chunks, err := idx.Search(ctx, vector, 10)
		require.NoError(t, err)
		assert.Len(t, chunks, 1)
	})
}
