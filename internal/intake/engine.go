// Package intake runs physiotherapy intake conversations: it asks the
// checklist questions one turn at a time and, once the model signals that
// the intake is complete, produces a grounded clinical summary.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ziadkadry99/physio-intake/internal/conversation"
	"github.com/ziadkadry99/physio-intake/internal/observability"
	"github.com/ziadkadry99/physio-intake/internal/report"
	"github.com/ziadkadry99/physio-intake/internal/retrieval"
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Engine drives intake conversations. It holds no per-conversation state;
// every turn reads, computes and writes back through the store.
type Engine struct {
	store     conversation.Store
	gen       Generator
	retriever *retrieval.Retriever
	detect    CompletionDetector
	name      string
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithAssistantName sets the persona name used in prompts and the greeting.
func WithAssistantName(name string) Option {
	return func(e *Engine) {
		if name = strings.TrimSpace(name); name != "" {
			e.name = name
		}
	}
}

// WithCompletionDetector replaces MarkerDetector.
func WithCompletionDetector(d CompletionDetector) Option {
	return func(e *Engine) {
		if d != nil {
			e.detect = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates an Engine.
func NewEngine(store conversation.Store, gen Generator, retriever *retrieval.Retriever, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		gen:       gen,
		retriever: retriever,
		detect:    MarkerDetector,
		name:      DefaultAssistantName,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartResult is the outcome of StartConversation.
type StartResult struct {
	Message        string `json:"greeting"`
	Resumed        bool   `json:"resumed"`
	ConversationID string `json:"conversation_id"`
}

// TurnResult is the outcome of ProcessTurn. When IsSummary is true the
// conversation is complete and Response holds the summary.
type TurnResult struct {
	Response  string `json:"response"`
	IsSummary bool   `json:"is_summary"`
}

// Answer is the outcome of Ask.
type Answer struct {
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	ContextFound  bool   `json:"context_found"`
	ContextLength int    `json:"context_length"`
}

// StartConversation opens a conversation for ownerID, or reports that one
// is already in progress.
func (e *Engine) StartConversation(ctx context.Context, ownerID string) (*StartResult, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrMissingOwner
	}

	active, err := e.store.FindActive(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("loading active conversation: %w", err)
	}
	if active != nil {
		e.metrics.ObserveStart(true)
		return &StartResult{Message: ResumeNotice, Resumed: true, ConversationID: active.ID}, nil
	}

	text := greeting(e.name)
	c := &conversation.Conversation{
		OwnerID:  ownerID,
		Messages: []conversation.Message{conversation.NewMessage(conversation.RoleAssistant, text)},
	}
	if err := e.store.Create(ctx, c); err != nil {
		if !errors.Is(err, conversation.ErrActiveExists) {
			return nil, fmt.Errorf("creating conversation: %w", err)
		}
		// Lost a race with a concurrent start; the winner's conversation stands.
		res := &StartResult{Message: ResumeNotice, Resumed: true}
		if winner, err := e.store.FindActive(ctx, ownerID); err == nil && winner != nil {
			res.ConversationID = winner.ID
		}
		e.metrics.ObserveStart(true)
		return res, nil
	}

	e.metrics.ObserveStart(false)
	e.logger.Info("conversation started", "owner", ownerID, "conversation", c.ID)
	return &StartResult{Message: text, ConversationID: c.ID}, nil
}

// ProcessTurn records one user message and the assistant's reply. When the
// reply signals completion the conversation is finalized with a summary
// instead. Nothing is persisted unless the whole turn succeeds, and the
// new state is written in a single update.
func (e *Engine) ProcessTurn(ctx context.Context, ownerID, text string) (*TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	current, err := e.store.FindActive(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("loading active conversation: %w", err)
	}
	if current == nil {
		return nil, ErrNoActiveConversation
	}

	next := current.Clone()
	next.Append(conversation.NewMessage(conversation.RoleUser, text))

	reply, err := e.generate(ctx, intakePrompt(e.name, conversation.Transcript(next.Messages)))
	if err != nil {
		e.metrics.ObserveTurn("error")
		return nil, err
	}

	result := &TurnResult{Response: reply}
	if e.detect(reply) {
		if n := len(next.UserMessages()); n < advisoryMinUserTurns {
			e.logger.Warn("completion claimed before advisory threshold",
				"conversation", next.ID, "user_turns", n, "threshold", advisoryMinUserTurns)
		}
		summary, err := e.finalize(ctx, next)
		if err != nil {
			e.metrics.ObserveTurn("error")
			return nil, err
		}
		next.Append(conversation.NewMessage(conversation.RoleAssistant, summary))
		next.IsCompleted = true
		next.Summary = summary
		result = &TurnResult{Response: summary, IsSummary: true}
	} else {
		next.Append(conversation.NewMessage(conversation.RoleAssistant, reply))
	}

	if err := e.store.UpdateActive(ctx, ownerID, next); err != nil {
		e.metrics.ObserveTurn("error")
		if errors.Is(err, conversation.ErrConflict) || errors.Is(err, conversation.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrConcurrentTurn, err)
		}
		return nil, fmt.Errorf("saving conversation: %w", err)
	}

	if result.IsSummary {
		e.metrics.ObserveTurn("summary")
		e.logger.Info("conversation completed", "owner", ownerID, "conversation", next.ID,
			"messages", len(next.Messages))
	} else {
		e.metrics.ObserveTurn("question")
	}
	return result, nil
}

// finalize produces the summary for a conversation whose intake is done.
func (e *Engine) finalize(ctx context.Context, c *conversation.Conversation) (string, error) {
	grounding := e.retriever.Retrieve(ctx, c.Messages)
	if grounding.Queries > 0 && grounding.Failed == grounding.Queries {
		e.logger.Warn("every knowledge query failed, summarising without reference material",
			"conversation", c.ID, "queries", grounding.Queries)
	}

	prompt := summaryPrompt(e.name, conversation.Transcript(c.Messages), grounding.Text)
	summary, err := e.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(summary) == "" {
		return "", fmt.Errorf("%w: empty summary", ErrGeneration)
	}

	if missing := report.MissingSections(summary); len(missing) > 0 {
		e.logger.Warn("summary is missing sections", "conversation", c.ID, "missing", missing)
	}
	if !strings.Contains(summary, SafetyReferral) {
		e.logger.Warn("summary is missing the referral sentence", "conversation", c.ID)
	}
	return summary, nil
}

// Ask answers a standalone question grounded on the knowledge base. It
// never reads or writes conversations.
func (e *Engine) Ask(ctx context.Context, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyMessage
	}

	grounding := e.retriever.RetrieveQuery(ctx, question)
	answer, err := e.generate(ctx, askPrompt(e.name, question, grounding.Text))
	if err != nil {
		return nil, err
	}
	return &Answer{
		Question:      question,
		Answer:        answer,
		ContextFound:  strings.TrimSpace(grounding.Text) != "",
		ContextLength: utf8.RuneCountInString(grounding.Text),
	}, nil
}

// Active returns the owner's conversation in progress, or nil.
func (e *Engine) Active(ctx context.Context, ownerID string) (*conversation.Conversation, error) {
	return e.store.FindActive(ctx, ownerID)
}

// History returns every conversation of the owner, newest first.
func (e *Engine) History(ctx context.Context, ownerID string) ([]conversation.Conversation, error) {
	return e.store.History(ctx, ownerID)
}

// Stats counts active and completed conversations.
func (e *Engine) Stats(ctx context.Context) (conversation.Stats, error) {
	return e.store.Stats(ctx)
}

// AssistantName returns the persona name.
func (e *Engine) AssistantName() string { return e.name }

func (e *Engine) generate(ctx context.Context, prompt string) (string, error) {
	out, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return out, nil
}
