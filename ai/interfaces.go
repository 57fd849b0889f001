package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
//
// Embedders do not cache and do not retry: callers that need resilience
// against transient provider failures layer retry or caching on top.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error from the provider taxonomy if generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. Batching is an optimization, not a semantic difference: the
	// returned slice contains embeddings in the same order as the input
	// texts, and a failure identifies the offending item where possible.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
