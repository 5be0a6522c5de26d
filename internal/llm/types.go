package llm

import "context"

// Provider is a chat-completion backend. Implementations must be safe for
// concurrent use; the intake engine and the ask endpoint share one.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name is used in logs and as the metrics label.
	Name() string
}

// Role is the author of a provider message. It is distinct from
// conversation roles: intake prompts are always sent as one user message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is one provider call. An empty Model selects the
// provider's configured model; zero MaxTokens leaves the limit to the
// provider.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// CompletionResponse carries the reply text and usage. Token counts are
// zero when the provider does not report them.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}
