package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/physio-intake/internal/conversation"
	"github.com/ziadkadry99/physio-intake/internal/intake"
	"github.com/ziadkadry99/physio-intake/internal/retrieval"
	"github.com/ziadkadry99/physio-intake/internal/vectordb"
)

// mockStore implements vectordb.VectorStore for testing.
type mockStore struct {
	docs      []vectordb.Document
	err       error
	lastLimit int
}

func (m *mockStore) AddDocuments(_ context.Context, docs []vectordb.Document) error {
	m.docs = append(m.docs, docs...)
	return nil
}

func (m *mockStore) Search(_ context.Context, _ string, limit int, filter *vectordb.SearchFilter) ([]vectordb.SearchResult, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	var results []vectordb.SearchResult
	for _, doc := range m.docs {
		if filter != nil && filter.Type != nil && doc.Metadata.Type != *filter.Type {
			continue
		}
		if filter != nil && filter.Category != nil && doc.Metadata.Category != *filter.Category {
			continue
		}
		results = append(results, vectordb.SearchResult{Document: doc, Similarity: 0.9})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

func (m *mockStore) DeleteByCategory(context.Context, vectordb.DocumentType, string) error { return nil }
func (m *mockStore) Persist(context.Context, string) error                                 { return nil }
func (m *mockStore) Load(context.Context, string) error                                    { return nil }
func (m *mockStore) Count() int                                                            { return len(m.docs) }

type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "Reference material:") {
		return "grounded answer", nil
	}
	return "general answer", nil
}

func seededStore() *mockStore {
	return &mockStore{docs: []vectordb.Document{
		vectordb.NewDocument("Assess lumbar flexion range.", vectordb.DocTypeAssessment, "spine", "spine.json"),
		vectordb.NewDocument("Cat-camel mobility drill, 10 reps.", vectordb.DocTypeExercise, "spine", "drills.csv"),
		vectordb.NewDocument("Calf raises for Achilles loading.", vectordb.DocTypeExercise, "ankle", "drills.csv"),
	}}
}

func extractText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestToolDefinitions(t *testing.T) {
	for _, tool := range []mcp.Tool{searchKnowledgeTool, askQuestionTool} {
		if tool.Name == "" || tool.Description == "" {
			t.Errorf("tool %q is missing a name or description", tool.Name)
		}
	}
	if searchKnowledgeTool.Name != "search_knowledge" || askQuestionTool.Name != "ask_question" {
		t.Errorf("unexpected tool names %q, %q", searchKnowledgeTool.Name, askQuestionTool.Name)
	}
}

func TestNewServer(t *testing.T) {
	store := seededStore()
	srv := NewServer(store, nil)
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.store != store {
		t.Error("store not set correctly")
	}
}

func TestHandleSearchKnowledge(t *testing.T) {
	ctx := context.Background()

	t.Run("basic search", func(t *testing.T) {
		srv := NewServer(seededStore(), nil)
		result, err := srv.handleSearchKnowledge(ctx, call(map[string]any{"query": "back pain"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %s", extractText(result))
		}
		if !strings.Contains(extractText(result), "Found 3 result(s)") {
			t.Errorf("unexpected output:\n%s", extractText(result))
		}
	})

	t.Run("type and category filter", func(t *testing.T) {
		srv := NewServer(seededStore(), nil)
		result, _ := srv.handleSearchKnowledge(ctx, call(map[string]any{
			"query":       "mobility",
			"type_filter": "exercise",
			"category":    "spine",
		}))
		text := extractText(result)
		if !strings.Contains(text, "Found 1 result(s)") || !strings.Contains(text, "Cat-camel") {
			t.Errorf("unexpected output:\n%s", text)
		}
	})

	t.Run("invalid type filter", func(t *testing.T) {
		srv := NewServer(seededStore(), nil)
		result, _ := srv.handleSearchKnowledge(ctx, call(map[string]any{"query": "x", "type_filter": "diet"}))
		if !result.IsError {
			t.Error("expected error for unknown type")
		}
	})

	t.Run("default limit", func(t *testing.T) {
		store := seededStore()
		srv := NewServer(store, nil)
		srv.handleSearchKnowledge(ctx, call(map[string]any{"query": "x", "limit": -1}))
		if store.lastLimit != defaultSearchLimit {
			t.Errorf("limit = %d, want %d", store.lastLimit, defaultSearchLimit)
		}
	})

	t.Run("missing query", func(t *testing.T) {
		srv := NewServer(seededStore(), nil)
		result, err := srv.handleSearchKnowledge(ctx, call(map[string]any{}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing query")
		}
	})

	t.Run("empty store", func(t *testing.T) {
		srv := NewServer(&mockStore{}, nil)
		result, _ := srv.handleSearchKnowledge(ctx, call(map[string]any{"query": "anything"}))
		if result.IsError {
			t.Error("empty results should not be an error")
		}
		if !strings.Contains(extractText(result), "No results found") {
			t.Errorf("unexpected output: %s", extractText(result))
		}
	})

	t.Run("store failure", func(t *testing.T) {
		srv := NewServer(&mockStore{err: errors.New("index offline")}, nil)
		result, _ := srv.handleSearchKnowledge(ctx, call(map[string]any{"query": "anything"}))
		if !result.IsError || !strings.Contains(extractText(result), "index offline") {
			t.Errorf("expected search failure, got %s", extractText(result))
		}
	})
}

func TestHandleAskQuestion(t *testing.T) {
	ctx := context.Background()

	newServer := func(store *mockStore) *Server {
		retriever := retrieval.New(retrieval.NewVectorIndex(store))
		engine := intake.NewEngine(conversation.NewMemoryStore(), echoGenerator{}, retriever)
		return NewServer(store, engine)
	}

	t.Run("grounded answer", func(t *testing.T) {
		result, err := newServer(seededStore()).handleAskQuestion(ctx, call(map[string]any{"question": "why does my back hurt?"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError || extractText(result) != "grounded answer" {
			t.Errorf("unexpected result: %s", extractText(result))
		}
	})

	t.Run("no reference material", func(t *testing.T) {
		result, _ := newServer(&mockStore{}).handleAskQuestion(ctx, call(map[string]any{"question": "why does my back hurt?"}))
		text := extractText(result)
		if !strings.HasPrefix(text, "general answer") || !strings.Contains(text, "No matching reference material") {
			t.Errorf("unexpected result: %s", text)
		}
	})

	t.Run("missing question", func(t *testing.T) {
		result, _ := newServer(seededStore()).handleAskQuestion(ctx, call(map[string]any{"question": "  "}))
		if !result.IsError {
			t.Error("expected error for blank question")
		}
	})
}
