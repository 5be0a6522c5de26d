package config

// QualityPreset describes the models to use for a given quality tier.
type QualityPreset struct {
	Model          string
	EmbeddingModel string
}

var qualityPresets = map[ProviderType]map[QualityTier]QualityPreset{
	ProviderGoogle: {
		QualityLite:   {Model: "gemini-2.0-flash-lite", EmbeddingModel: "text-embedding-004"},
		QualityNormal: {Model: "gemini-2.0-flash", EmbeddingModel: "text-embedding-004"},
		QualityMax:    {Model: "gemini-2.5-pro", EmbeddingModel: "text-embedding-004"},
	},
	ProviderOpenAI: {
		QualityLite:   {Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
		QualityNormal: {Model: "gpt-4o", EmbeddingModel: "text-embedding-3-small"},
		QualityMax:    {Model: "gpt-4.1", EmbeddingModel: "text-embedding-3-large"},
	},
	ProviderOllama: {
		QualityLite:   {Model: "llama3.2", EmbeddingModel: "nomic-embed-text"},
		QualityNormal: {Model: "llama3.1", EmbeddingModel: "nomic-embed-text"},
		QualityMax:    {Model: "llama3.1:70b", EmbeddingModel: "nomic-embed-text"},
	},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderGoogle,
		Model:             "gemini-2.0-flash",
		EmbeddingProvider: ProviderGoogle,
		EmbeddingModel:    "text-embedding-004",
		Quality:           QualityNormal,
		DataDir:           "data",
		Temperature:       0.4,
		GenerationTimeout: 60,
		Database: DatabaseConfig{
			Driver: DriverSQLite,
		},
		Retrieval: RetrievalConfig{
			Limit:       10,
			Concurrency: 4,
		},
		Intake: IntakeConfig{
			AssistantName: "Hassy",
		},
		Server: ServerConfig{
			Port:            8002,
			AllowAllOrigins: true,
		},
	}
}

// GetPreset returns the quality preset for the given provider and tier.
// Returns the normal Google preset if the combination is not found.
func GetPreset(provider ProviderType, tier QualityTier) QualityPreset {
	if tiers, ok := qualityPresets[provider]; ok {
		if preset, ok := tiers[tier]; ok {
			return preset
		}
	}
	return qualityPresets[ProviderGoogle][QualityNormal]
}
