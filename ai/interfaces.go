package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces natural-language answers from a fully assembled prompt.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Complete generates a single completion for the prompt, capped at
	// maxTokens output tokens. The completion carries token usage and cost
	// accounting alongside the answer text.
	// Returns an error if generation fails; callers decide the fallback.
	Complete(ctx context.Context, prompt string, maxTokens int) (*Completion, error)
}

// Judge is the secondary model used to score and classify, distinct from the
// answer-generating model. Implementations must tolerate malformed output
// from the underlying model: the response is parsed defensively and the
// parse retry policy is bounded and observable inside the implementation,
// never hidden in callers.
// Implementations must be thread-safe for concurrent use.
type Judge interface {
	// Judge sends a system and user prompt to the judge model and
	// unmarshals the structured JSON response into out. Implementations
	// run at temperature 0 in JSON mode so that identical inputs yield
	// identical verdicts.
	// Returns an error if the model is unreachable or the response cannot
	// be parsed after the implementation's bounded retries.
	Judge(ctx context.Context, system, user string, out any) error
}

// Completion is one generator output with its usage accounting.
type Completion struct {
	Text       string
	TokensUsed int
	Cost       float64
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages the Embedder, Generator, and Judge instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the answer generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Judge returns the scoring/classification service.
	// The returned Judge is safe for concurrent use.
	Judge() Judge

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
