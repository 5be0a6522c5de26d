// Package ingest loads assessment and exercise material into the knowledge
// base from files, uploads and raw text.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ziadkadry99/physio-intake/internal/observability"
	"github.com/ziadkadry99/physio-intake/internal/vectordb"
)

var (
	// ErrInvalidType is returned for document types other than assessment
	// and exercise.
	ErrInvalidType  = errors.New("type must be 'assessment' or 'exercise'")
	ErrEmptyContent = errors.New("content is empty")
)

// DefaultTextCategory is used for text uploads without a category.
const DefaultTextCategory = "general"

// Result describes one ingestion.
type Result struct {
	Count    int                   `json:"count"`
	Type     vectordb.DocumentType `json:"type"`
	Category string                `json:"category"`
}

// Ingester adds documents to a vector store and persists the store after
// each change. It is safe for concurrent use.
type Ingester struct {
	store      vectordb.VectorStore
	persistDir string
	logger     *slog.Logger
	metrics    *observability.Metrics

	mu sync.Mutex
}

// Option configures an Ingester.
type Option func(*Ingester)

func WithLogger(l *slog.Logger) Option {
	return func(in *Ingester) { in.logger = l }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(in *Ingester) { in.metrics = m }
}

// NewIngester creates an Ingester. An empty persistDir keeps the store in
// memory only.
func NewIngester(store vectordb.VectorStore, persistDir string, opts ...Option) *Ingester {
	in := &Ingester{store: store, persistDir: persistDir, logger: slog.Default()}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// DefaultFileCategory names the category for a file ingested without one.
func DefaultFileCategory(docType vectordb.DocumentType, name string) string {
	return string(docType) + "_" + filepath.Base(name)
}

// IngestFile decodes, parses and stores the records of one file.
func (in *Ingester) IngestFile(ctx context.Context, name string, raw []byte, docType, category string) (*Result, error) {
	t, err := parseType(docType)
	if err != nil {
		return nil, err
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultFileCategory(t, name)
	}

	text, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(name), err)
	}
	recs, err := Parse(name, text)
	if err != nil {
		return nil, err
	}

	docs := make([]vectordb.Document, 0, len(recs))
	for _, r := range recs {
		source := filepath.Base(name)
		if r.Source != "" {
			source = r.Source
		}
		docs = append(docs, vectordb.NewDocument(r.Content, t, category, source))
	}
	if err := in.add(ctx, t, docs); err != nil {
		return nil, err
	}

	in.logger.Info("file ingested", "file", filepath.Base(name), "type", t, "category", category, "documents", len(docs))
	return &Result{Count: len(docs), Type: t, Category: category}, nil
}

// IngestText stores a single text entry.
func (in *Ingester) IngestText(ctx context.Context, content, docType, category string) (*Result, error) {
	t, err := parseType(docType)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultTextCategory
	}

	doc := vectordb.NewDocument(content, t, category, "text")
	if err := in.add(ctx, t, []vectordb.Document{doc}); err != nil {
		return nil, err
	}
	return &Result{Count: 1, Type: t, Category: category}, nil
}

// ReplaceCategory removes every document of the given type and category.
func (in *Ingester) ReplaceCategory(ctx context.Context, docType, category string) error {
	t, err := parseType(docType)
	if err != nil {
		return err
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if err := in.store.DeleteByCategory(ctx, t, category); err != nil {
		return fmt.Errorf("removing %s/%s: %w", t, category, err)
	}
	return in.persistLocked(ctx)
}

// Count returns the number of documents in the knowledge base.
func (in *Ingester) Count() int { return in.store.Count() }

func (in *Ingester) add(ctx context.Context, t vectordb.DocumentType, docs []vectordb.Document) error {
	if len(docs) == 0 {
		return nil
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if err := in.store.AddDocuments(ctx, docs); err != nil {
		return fmt.Errorf("adding documents: %w", err)
	}
	if err := in.persistLocked(ctx); err != nil {
		return err
	}
	in.metrics.ObserveIngest(string(t), len(docs))
	return nil
}

func (in *Ingester) persistLocked(ctx context.Context) error {
	if in.persistDir == "" {
		return nil
	}
	if err := in.store.Persist(ctx, in.persistDir); err != nil {
		return fmt.Errorf("persisting knowledge base: %w", err)
	}
	return nil
}

func parseType(s string) (vectordb.DocumentType, error) {
	t, err := vectordb.ParseDocumentType(s)
	if err != nil {
		return "", fmt.Errorf("%w: got %q", ErrInvalidType, s)
	}
	return t, nil
}
