package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/physio-intake/internal/conversation"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a quick physiotherapy question",
	Long:  `Answers a standalone question grounded in the knowledge base. No conversation is created.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(false)

		knowledge, err := openKnowledge(ctx, cfg, logger)
		if err != nil {
			return err
		}
		engine, err := newEngine(cfg, conversation.NewMemoryStore(), knowledge, logger, nil)
		if err != nil {
			return err
		}

		ans, err := engine.Ask(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(ans.Answer)
		if !ans.ContextFound {
			fmt.Println("\n(No matching reference material was found in the knowledge base.)")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
