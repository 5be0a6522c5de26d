package embeddings

import "context"

// Embedder turns texts into vectors for the knowledge base.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the length of the produced vectors.
	Dimensions() int

	// Name identifies the embedding model.
	Name() string
}
