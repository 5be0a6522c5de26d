package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/physio-intake/internal/intake"
	"github.com/ziadkadry99/physio-intake/internal/vectordb"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server exposes the knowledge base and quick-question answering as MCP tools.
type Server struct {
	store  vectordb.VectorStore
	engine *intake.Engine
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server. A nil engine leaves ask_question
// unregistered.
func NewServer(store vectordb.VectorStore, engine *intake.Engine) *Server {
	s := &Server{
		store:  store,
		engine: engine,
	}

	s.mcp = server.NewMCPServer(
		"physio-intake",
		Version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(searchKnowledgeTool, s.handleSearchKnowledge)
	if engine != nil {
		s.mcp.AddTool(askQuestionTool, s.handleAskQuestion)
	}

	return s
}

// Serve starts the MCP server on stdio. Stdout carries protocol messages,
// so logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
