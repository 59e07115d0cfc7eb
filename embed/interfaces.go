package embed

import "context"

// Embedder generates vector embeddings for category strings.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple strings in a batch.
	// The returned slice contains embeddings in the same order as the inputs.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Dense converts a batch of float32 embeddings into the float64 vectors
// used by the distance computations.
func Dense(embeddings [][]float32) [][]float64 {
	out := make([][]float64, len(embeddings))
	for i, e := range embeddings {
		out[i] = make([]float64, len(e))
		for j, v := range e {
			out[i][j] = float64(v)
		}
	}
	return out
}
