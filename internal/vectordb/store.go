package vectordb

import "context"

// VectorStore stores knowledge-base documents and searches them by meaning.
type VectorStore interface {
	// AddDocuments adds or replaces documents by ID.
	AddDocuments(ctx context.Context, docs []Document) error

	// Search returns at most limit documents, most similar first.
	Search(ctx context.Context, query string, limit int, filter *SearchFilter) ([]SearchResult, error)

	// DeleteByCategory removes every document of the given type and category.
	DeleteByCategory(ctx context.Context, docType DocumentType, category string) error

	// Persist saves the store's data to the given directory.
	Persist(ctx context.Context, dir string) error

	// Load restores the store's data from the given directory.
	Load(ctx context.Context, dir string) error

	// Count returns the total number of documents in the store.
	Count() int
}
