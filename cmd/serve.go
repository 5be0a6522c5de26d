package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/physio-intake/internal/conversation"
	"github.com/ziadkadry99/physio-intake/internal/intake"
	mcpserver "github.com/ziadkadry99/physio-intake/internal/mcp"
)

var serveNoAsk bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing knowledge-base search and quick physiotherapy questions to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(false)
		ctx := context.Background()

		knowledge, err := openKnowledge(ctx, cfg, logger)
		if err != nil {
			return err
		}

		var engine *intake.Engine
		if !serveNoAsk {
			// ask_question never reads or writes conversations.
			if engine, err = newEngine(cfg, conversation.NewMemoryStore(), knowledge, logger, nil); err != nil {
				return err
			}
		}

		mcpserver.Version = Version
		logger.Info("MCP server started on stdio", "documents", knowledge.Count(), "ask_question", engine != nil)

		return mcpserver.NewServer(knowledge, engine).Serve()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoAsk, "search-only", false, "expose only search_knowledge (no LLM provider needed)")
	rootCmd.AddCommand(serveCmd)
}
