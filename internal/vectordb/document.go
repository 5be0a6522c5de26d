package vectordb

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// DocumentType classifies knowledge-base entries.
type DocumentType string

const (
	DocTypeAssessment  DocumentType = "assessment"
	DocTypeExercise    DocumentType = "exercise"
	DocTypeUnspecified DocumentType = "unspecified"
)

// ParseDocumentType accepts the ingestable types, assessment and exercise.
func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(strings.ToLower(strings.TrimSpace(s))) {
	case DocTypeAssessment:
		return DocTypeAssessment, nil
	case DocTypeExercise:
		return DocTypeExercise, nil
	default:
		return "", fmt.Errorf("invalid document type %q: must be assessment or exercise", s)
	}
}

// Document is one knowledge-base entry.
type Document struct {
	ID       string
	Content  string
	Metadata DocumentMetadata
}

// DocumentMetadata holds structured information about a document.
type DocumentMetadata struct {
	Type        DocumentType
	Category    string
	Source      string
	ContentHash string
	AddedAt     time.Time
}

// NewDocument builds a document whose ID is derived from its type, category
// and content, so re-ingesting the same entry replaces it.
func NewDocument(content string, docType DocumentType, category, source string) Document {
	sum := sha256.Sum256([]byte(string(docType) + "\x00" + category + "\x00" + content))
	hash := hex.EncodeToString(sum[:])
	return Document{
		ID:      hash[:32],
		Content: content,
		Metadata: DocumentMetadata{
			Type:        docType,
			Category:    category,
			Source:      source,
			ContentHash: hash,
			AddedAt:     time.Now().UTC(),
		},
	}
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document   Document
	Similarity float32
}

// SearchFilter narrows search results by metadata fields.
type SearchFilter struct {
	Type     *DocumentType
	Category *string
}
