package config

// QualityTier selects the generation and embedding models for a provider.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderGoogle ProviderType = "google"
	ProviderOllama ProviderType = "ollama"
)

// DatabaseDriver identifies the conversation store backend.
type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
	DriverMemory   DatabaseDriver = "memory"
)

// Config is the top-level configuration, corresponding to .physio-intake.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	Quality           QualityTier  `yaml:"quality" koanf:"quality"`
	DataDir           string       `yaml:"data_dir" koanf:"data_dir"`
	Temperature       float64      `yaml:"temperature" koanf:"temperature"`
	RateLimitRPM      int          `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
	GenerationTimeout int          `yaml:"generation_timeout_seconds" koanf:"generation_timeout_seconds"`

	Database  DatabaseConfig  `yaml:"database" koanf:"database"`
	Retrieval RetrievalConfig `yaml:"retrieval" koanf:"retrieval"`
	Intake    IntakeConfig    `yaml:"intake" koanf:"intake"`
	Server    ServerConfig    `yaml:"server" koanf:"server"`
}

// DatabaseConfig selects where conversations are stored. An empty URL with
// the sqlite driver means <data_dir>/conversations.db.
type DatabaseConfig struct {
	Driver DatabaseDriver `yaml:"driver" koanf:"driver"`
	URL    string         `yaml:"url" koanf:"url"`
}

// RetrievalConfig tunes knowledge-base lookups.
type RetrievalConfig struct {
	Limit       int `yaml:"limit" koanf:"limit"`
	Concurrency int `yaml:"concurrency" koanf:"concurrency"`
}

// IntakeConfig holds dialogue settings.
type IntakeConfig struct {
	AssistantName string `yaml:"assistant_name" koanf:"assistant_name"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
