package index

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/poiesic/medgate/core"
)

const (
	defaultCollection = "passages"

	metaSourceID = "source_id"
	metaOffset   = "offset"
)

// ChromemIndex implements Retriever on top of an embedded chromem-go
// vector collection. The collection can be persistent or in-memory;
// the in-memory form is used by tests.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	logger     *slog.Logger
}

// Option configures a ChromemIndex.
type Option func(*options)

type options struct {
	collectionName string
	logger         *slog.Logger
}

// WithCollection sets the collection name. Default is "passages".
func WithCollection(name string) Option {
	return func(o *options) {
		if name != "" {
			o.collectionName = name
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewChromemIndex opens (or creates) a persistent index at path.
func NewChromemIndex(path string, opts ...Option) (*ChromemIndex, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open index at %s: %w", path, err)
	}
	return newIndex(db, opts...)
}

// NewMemoryIndex creates an in-memory index, primarily for tests.
func NewMemoryIndex(opts ...Option) (*ChromemIndex, error) {
	return newIndex(chromem.NewDB(), opts...)
}

func newIndex(db *chromem.DB, opts ...Option) (*ChromemIndex, error) {
	o := &options{
		collectionName: defaultCollection,
		logger:         slog.Default().With("component", "chromem-index"),
	}
	for _, opt := range opts {
		opt(o)
	}

	collection, err := db.GetOrCreateCollection(o.collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", o.collectionName, err)
	}

	return &ChromemIndex{
		db:         db,
		collection: collection,
		logger:     o.logger,
	}, nil
}

// Add indexes pre-chunked passages with their precomputed embeddings.
func (i *ChromemIndex) Add(ctx context.Context, passages ...Passage) error {
	if len(passages) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(passages))
	for _, p := range passages {
		if p.Text == "" || len(p.Embedding) == 0 {
			return ErrEmptyPassage
		}

		chunk := core.RetrievedChunk{Text: p.Text, SourceID: p.SourceID, Offset: p.Offset}
		docs = append(docs, chromem.Document{
			ID:      strconv.FormatUint(uint64(chunk.Key()), 16),
			Content: p.Text,
			Metadata: map[string]string{
				metaSourceID: p.SourceID,
				metaOffset:   strconv.Itoa(p.Offset),
			},
			Embedding: p.Embedding,
		})
	}

	if err := i.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add passages: %w", err)
	}

	i.logger.Debug("indexed passages", "count", len(docs))
	return nil
}

// Count returns the number of indexed passages.
func (i *ChromemIndex) Count() int {
	return i.collection.Count()
}

// Search returns up to k passages ordered by descending similarity.
// An empty index, or a k larger than the index, narrows the result rather
// than failing.
func (i *ChromemIndex) Search(ctx context.Context, vector []float32, k int) ([]core.RetrievedChunk, error) {
	if len(vector) == 0 {
		return nil, ErrEmptyVector
	}
	if k < 1 {
		return nil, ErrInvalidTopK
	}

	// chromem rejects queries for more results than documents
	count := i.collection.Count()
	if count == 0 {
		return []core.RetrievedChunk{}, nil
	}
	if k > count {
		k = count
	}

	results, err := i.collection.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("similarity query failed: %w", err)
	}

	chunks := make([]core.RetrievedChunk, 0, len(results))
	for _, r := range results {
		offset, _ := strconv.Atoi(r.Metadata[metaOffset])
		chunks = append(chunks, core.RetrievedChunk{
			Text:       r.Content,
			SourceID:   r.Metadata[metaSourceID],
			Offset:     offset,
			Similarity: r.Similarity,
		})
	}

	i.logger.Debug("retrieved passages", "requested", k, "returned", len(chunks))
	return chunks, nil
}
