package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/physio-intake/internal/vectordb"
)

const defaultSearchLimit = 5

func (s *Server) handleSearchKnowledge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", defaultSearchLimit)
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var filter *vectordb.SearchFilter
	if typeStr := request.GetString("type_filter", ""); typeStr != "" {
		docType, err := vectordb.ParseDocumentType(typeStr)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filter = &vectordb.SearchFilter{Type: &docType}
	}
	if category := request.GetString("category", ""); category != "" {
		if filter == nil {
			filter = &vectordb.SearchFilter{}
		}
		filter.Category = &category
	}

	results, err := s.store.Search(ctx, query, limit, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No results found. The knowledge base may be empty; run `physio-intake ingest` to load documents."), nil
	}

	return mcp.NewToolResultText(vectordb.FormatResults(results)), nil
}

func (s *Server) handleAskQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil || strings.TrimSpace(question) == "" {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	ans, err := s.engine.Ask(ctx, question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("answering failed: %v", err)), nil
	}

	text := ans.Answer
	if !ans.ContextFound {
		text += "\n\n(No matching reference material was found in the knowledge base.)"
	}
	return mcp.NewToolResultText(text), nil
}
