package vectordb

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/physio-intake/internal/embeddings"
)

const (
	collectionName = "physio_knowledge"
	exportFile     = "chromem.gob.gz"
)

// ChromemStore implements VectorStore using chromem-go.
type ChromemStore struct {
	db        *chromem.DB
	embedFunc chromem.EmbeddingFunc

	mu         sync.RWMutex
	collection *chromem.Collection
}

// NewChromemStore creates a new in-memory ChromemStore.
func NewChromemStore(embedder embeddings.Embedder) (*ChromemStore, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{
		db:         db,
		embedFunc:  ef,
		collection: col,
	}, nil
}

func (s *ChromemStore) col() *chromem.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection
}

func (s *ChromemStore) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	chromDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromDocs[i] = chromem.Document{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: metadataToMap(doc.Metadata),
		}
	}

	if err := s.col().AddDocuments(ctx, chromDocs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("chromem add documents: %w", err)
	}
	return nil
}

func (s *ChromemStore) Search(ctx context.Context, query string, limit int, filter *SearchFilter) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	col := s.col()
	// chromem-go requires nResults <= collection size.
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	limit = min(limit, count)

	results, err := col.Query(ctx, query, limit, buildWhereClause(filter), nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{
			Document: Document{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: mapToMetadata(r.Metadata),
			},
			Similarity: r.Similarity,
		}
	}
	return out, nil
}

func (s *ChromemStore) DeleteByCategory(ctx context.Context, docType DocumentType, category string) error {
	where := map[string]string{"type": string(docType), "category": category}
	if err := s.col().Delete(ctx, where, nil); err != nil {
		return fmt.Errorf("chromem delete: %w", err)
	}
	return nil
}

func (s *ChromemStore) Persist(_ context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating knowledge dir: %w", err)
	}
	if err := s.db.ExportToFile(filepath.Join(dir, exportFile), true, ""); err != nil {
		return fmt.Errorf("export to file: %w", err)
	}
	return nil
}

// Load replaces the store's contents with a previous Persist. A missing
// export returns an error wrapping fs.ErrNotExist.
func (s *ChromemStore) Load(_ context.Context, dir string) error {
	path := filepath.Join(dir, exportFile)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("knowledge export %s: %w", path, fs.ErrNotExist)
	}
	if err := s.db.ImportFromFile(path, ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	col := s.db.GetCollection(collectionName, s.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}

	s.mu.Lock()
	s.collection = col
	s.mu.Unlock()
	return nil
}

func (s *ChromemStore) Count() int {
	return s.col().Count()
}

func metadataToMap(m DocumentMetadata) map[string]string {
	return map[string]string{
		"type":         string(m.Type),
		"category":     m.Category,
		"source":       m.Source,
		"content_hash": m.ContentHash,
		"added_at":     m.AddedAt.Format(time.RFC3339),
	}
}

func mapToMetadata(m map[string]string) DocumentMetadata {
	addedAt, _ := time.Parse(time.RFC3339, m["added_at"])
	docType := DocumentType(m["type"])
	if docType == "" {
		docType = DocTypeUnspecified
	}
	return DocumentMetadata{
		Type:        docType,
		Category:    m["category"],
		Source:      m["source"],
		ContentHash: m["content_hash"],
		AddedAt:     addedAt,
	}
}

func buildWhereClause(filter *SearchFilter) map[string]string {
	if filter == nil {
		return nil
	}

	where := make(map[string]string)
	if filter.Type != nil {
		where["type"] = string(*filter.Type)
	}
	if filter.Category != nil {
		where["category"] = *filter.Category
	}
	if len(where) == 0 {
		return nil
	}
	return where
}
