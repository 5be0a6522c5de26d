package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrEmptyCompletion is returned when a provider answers with no text.
var ErrEmptyCompletion = errors.New("empty completion")

// TextGenerator sends one prompt as a single user message and returns the
// model's text. Callers own prompt construction.
type TextGenerator struct {
	provider    Provider
	temperature float64
	timeout     time.Duration
	logger      *slog.Logger
	observe     func(provider string, elapsed time.Duration, err error)
}

// GeneratorOption configures a TextGenerator.
type GeneratorOption func(*TextGenerator)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) GeneratorOption {
	return func(g *TextGenerator) { g.temperature = t }
}

// WithTimeout bounds each call. Zero means no bound beyond the caller's context.
func WithTimeout(d time.Duration) GeneratorOption {
	return func(g *TextGenerator) { g.timeout = d }
}

// WithLogger sets the logger used for per-call usage lines.
func WithLogger(l *slog.Logger) GeneratorOption {
	return func(g *TextGenerator) { g.logger = l }
}

// WithObserver registers a callback invoked after every call.
func WithObserver(fn func(provider string, elapsed time.Duration, err error)) GeneratorOption {
	return func(g *TextGenerator) { g.observe = fn }
}

// NewTextGenerator wraps a provider.
func NewTextGenerator(p Provider, opts ...GeneratorOption) *TextGenerator {
	g := &TextGenerator{provider: p, temperature: 0.4, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the completion text for prompt.
func (g *TextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.provider.Complete(ctx, CompletionRequest{
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		Temperature: g.temperature,
	})
	if err == nil && strings.TrimSpace(resp.Content) == "" {
		err = fmt.Errorf("%w (finish reason %q)", ErrEmptyCompletion, resp.FinishReason)
	}
	elapsed := time.Since(start)
	if g.observe != nil {
		g.observe(g.provider.Name(), elapsed, err)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", g.provider.Name(), err)
	}

	in, out := resp.InputTokens, resp.OutputTokens
	if in == 0 {
		in = EstimateTokens(prompt)
	}
	if out == 0 {
		out = EstimateTokens(resp.Content)
	}
	g.logger.Debug("generation complete",
		"provider", g.provider.Name(),
		"model", resp.Model,
		"input_tokens", in,
		"output_tokens", out,
		"cost_usd", EstimateCost(resp.Model, in, out),
		"elapsed", elapsed,
	)
	return resp.Content, nil
}
