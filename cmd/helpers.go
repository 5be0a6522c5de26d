package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/ziadkadry99/physio-intake/internal/config"
	"github.com/ziadkadry99/physio-intake/internal/conversation"
	"github.com/ziadkadry99/physio-intake/internal/embeddings"
	"github.com/ziadkadry99/physio-intake/internal/intake"
	"github.com/ziadkadry99/physio-intake/internal/llm"
	"github.com/ziadkadry99/physio-intake/internal/observability"
	"github.com/ziadkadry99/physio-intake/internal/retrieval"
	"github.com/ziadkadry99/physio-intake/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `physio-intake init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger writes to stderr so stdout stays free for command output and
// the MCP protocol.
func newLogger(jsonFormat bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if jsonFormat {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// createEmbedderFromConfig falls back to the generation provider and the
// quality preset when no embedding settings are given.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}
	model := cfg.EmbeddingModel
	if model == "" {
		model = config.GetPreset(provider, cfg.Quality).EmbeddingModel
	}
	return embeddings.NewEmbedder(string(provider), model)
}

func createGeneratorFromConfig(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*llm.TextGenerator, error) {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	provider = llm.NewRateLimitedProvider(provider, cfg.RateLimitRPM)

	return llm.NewTextGenerator(provider,
		llm.WithTemperature(cfg.Temperature),
		llm.WithTimeout(time.Duration(cfg.GenerationTimeout)*time.Second),
		llm.WithLogger(logger),
		llm.WithObserver(metrics.ObserveGeneration),
	), nil
}

// openKnowledge creates the vector store and loads any previous export.
// A missing export leaves the store empty.
func openKnowledge(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*vectordb.ChromemStore, error) {
	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	store, err := vectordb.NewChromemStore(embedder)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	dir := cfg.KnowledgeDir()
	if err := store.Load(ctx, dir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading knowledge base from %s: %w", dir, err)
		}
		logger.Warn("knowledge base is empty; run `physio-intake ingest` to load documents", "dir", dir)
	}
	return store, nil
}

func openConversations(ctx context.Context, cfg *config.Config) (conversation.Store, error) {
	dsn := cfg.Database.URL
	if cfg.Database.Driver == config.DriverSQLite {
		dsn = cfg.SQLitePath()
	}
	store, err := conversation.NewStore(ctx, string(cfg.Database.Driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening conversation store: %w", err)
	}
	return store, nil
}

func newRetriever(cfg *config.Config, knowledge vectordb.VectorStore, logger *slog.Logger, metrics *observability.Metrics) *retrieval.Retriever {
	return retrieval.New(retrieval.NewVectorIndex(knowledge),
		retrieval.WithLimit(cfg.Retrieval.Limit),
		retrieval.WithConcurrency(cfg.Retrieval.Concurrency),
		retrieval.WithLogger(logger),
		retrieval.WithMetrics(metrics),
	)
}

// newEngine wires the generator and retriever into a dialogue engine over
// the given conversation store.
func newEngine(cfg *config.Config, store conversation.Store, knowledge vectordb.VectorStore, logger *slog.Logger, metrics *observability.Metrics) (*intake.Engine, error) {
	gen, err := createGeneratorFromConfig(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}
	return intake.NewEngine(store, gen, newRetriever(cfg, knowledge, logger, metrics),
		intake.WithAssistantName(cfg.Intake.AssistantName),
		intake.WithLogger(logger),
		intake.WithMetrics(metrics),
	), nil
}
