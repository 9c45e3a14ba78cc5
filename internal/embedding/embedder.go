package embedding

import "context"

// Embedder maps a batch of texts to fixed-dimension vectors. Implementations
// must be deterministic for a fixed model identifier and must return one
// vector per input text, in input order.
type Embedder interface {
	// Embed converts texts to vectors in a single batched call.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the fixed vector dimensionality.
	Dimension() int

	// Model identifies the embedding model; indexes built with one model
	// must not be queried with another.
	Model() string
}
