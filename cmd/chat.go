package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/physio-intake/internal/conversation"
	"github.com/ziadkadry99/physio-intake/internal/intake"
)

var chatUser string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run an intake conversation in the terminal",
	Long: `Starts (or resumes) an intake conversation for --user using the configured
conversation store, and prints the clinical summary when the intake is complete.
Press Ctrl+C to leave; the conversation can be resumed later.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatUser, "user", "cli-user", "owner ID for the conversation")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
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
	conversations, err := openConversations(ctx, cfg)
	if err != nil {
		return err
	}
	defer conversations.Close()

	engine, err := newEngine(cfg, conversations, knowledge, logger, nil)
	if err != nil {
		return err
	}

	start, err := engine.StartConversation(ctx, chatUser)
	if err != nil {
		return err
	}
	name := engine.AssistantName()
	fmt.Printf("%s: %s\n", name, start.Message)
	if start.Resumed {
		if last := lastAssistantMessage(ctx, engine, chatUser); last != "" {
			fmt.Printf("%s: %s\n", name, last)
		}
	}

	prompt := promptui.Prompt{
		Label: "You",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("please type a reply")
			}
			return nil
		},
	}

	for {
		reply, err := prompt.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			fmt.Println("\nConversation saved. Run `physio-intake chat` again to continue.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading reply: %w", err)
		}

		res, err := engine.ProcessTurn(ctx, chatUser, reply)
		if err != nil {
			if errors.Is(err, intake.ErrGeneration) {
				fmt.Printf("%s is unavailable right now (%v). Your reply was not saved; please try again.\n", name, err)
				continue
			}
			return err
		}

		if res.IsSummary {
			fmt.Printf("\n%s\n", res.Response)
			return nil
		}
		fmt.Printf("%s: %s\n", name, res.Response)
	}
}

func lastAssistantMessage(ctx context.Context, engine *intake.Engine, ownerID string) string {
	active, err := engine.Active(ctx, ownerID)
	if err != nil || active == nil {
		return ""
	}
	for i := len(active.Messages) - 1; i >= 0; i-- {
		if active.Messages[i].Role == conversation.RoleAssistant {
			return active.Messages[i].Content
		}
	}
	return ""
}
