package retrieval

import (
	"context"
	"errors"
	"fmt"

	"github.com/ziadkadry99/physio-intake/internal/vectordb"
)

// ErrSearch wraps every failure reported by a SearchIndex.
var ErrSearch = errors.New("search failed")

// Hit is one knowledge-base match.
type Hit struct {
	Content  string
	Type     vectordb.DocumentType
	Category string
	Score    float32
}

// SearchIndex answers semantic queries with at most limit hits, most
// relevant first.
type SearchIndex interface {
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
}

// VectorIndex exposes a vectordb.VectorStore as a SearchIndex.
type VectorIndex struct {
	store  vectordb.VectorStore
	filter *vectordb.SearchFilter
}

// NewVectorIndex searches the whole store.
func NewVectorIndex(store vectordb.VectorStore) *VectorIndex {
	return &VectorIndex{store: store}
}

// WithType returns an index restricted to one document type.
func (v *VectorIndex) WithType(t vectordb.DocumentType) *VectorIndex {
	return &VectorIndex{store: v.store, filter: &vectordb.SearchFilter{Type: &t}}
}

func (v *VectorIndex) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	results, err := v.store.Search(ctx, query, limit, v.filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearch, err)
	}
	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{
			Content:  r.Document.Content,
			Type:     r.Document.Metadata.Type,
			Category: r.Document.Metadata.Category,
			Score:    r.Similarity,
		}
	}
	return hits, nil
}
