package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// DefaultPath is the config file used when --config is not given.
const DefaultPath = ".physio-intake.yml"

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Let's configure the physiotherapy intake assistant.")
	fmt.Println()

	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"google", "openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)

	qualityPrompt := promptui.Select{
		Label: "Select quality tier",
		Items: []string{
			"lite   - fastest responses",
			"normal - balanced",
			"max    - most capable model",
		},
	}
	qualityIdx, _, err := qualityPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("quality selection: %w", err)
	}
	tiers := []QualityTier{QualityLite, QualityNormal, QualityMax}
	quality := tiers[qualityIdx]
	preset := GetPreset(provider, quality)

	dataPrompt := promptui.Prompt{
		Label:   "Data directory (knowledge base and conversations)",
		Default: "data",
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	driverPrompt := promptui.Select{
		Label: "Conversation store",
		Items: []string{"sqlite", "postgres"},
	}
	_, driverStr, err := driverPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("store selection: %w", err)
	}

	var dbURL string
	if DatabaseDriver(driverStr) == DriverPostgres {
		urlPrompt := promptui.Prompt{
			Label: "Postgres connection URL",
			Validate: func(s string) error {
				if !strings.HasPrefix(s, "postgres://") && !strings.HasPrefix(s, "postgresql://") {
					return fmt.Errorf("must start with postgres://")
				}
				return nil
			},
		}
		dbURL, err = urlPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("database url: %w", err)
		}
	}

	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: "8002",
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("invalid port")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	port, _ := strconv.Atoi(portStr)

	cfg := DefaultConfig()
	cfg.Provider = provider
	cfg.Model = preset.Model
	cfg.EmbeddingProvider = embeddingProviderFor(provider)
	cfg.EmbeddingModel = preset.EmbeddingModel
	cfg.Quality = quality
	cfg.DataDir = dataDir
	cfg.Database = DatabaseConfig{Driver: DatabaseDriver(driverStr), URL: dbURL}
	cfg.Server.Port = port

	if envVar := APIKeyEnvVar(provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment (or .env) before starting the server.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// embeddingProviderFor returns the embedding provider paired with an LLM
// provider. Every supported provider serves its own embeddings.
func embeddingProviderFor(p ProviderType) ProviderType {
	return p
}
