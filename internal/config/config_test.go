package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderGoogle {
		t.Errorf("expected default provider %q, got %q", ProviderGoogle, cfg.Provider)
	}
	if cfg.Retrieval.Limit != 10 {
		t.Errorf("expected retrieval limit 10, got %d", cfg.Retrieval.Limit)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("expected sqlite driver, got %q", cfg.Database.Driver)
	}
	if cfg.Server.Port != 8002 {
		t.Errorf("expected port 8002, got %d", cfg.Server.Port)
	}
	if cfg.Intake.AssistantName != "Hassy" {
		t.Errorf("expected assistant name Hassy, got %q", cfg.Intake.AssistantName)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	original := DefaultConfig()
	original.Provider = ProviderOpenAI
	original.Model = "gpt-4o"
	original.Quality = QualityMax
	original.DataDir = "var/intake"
	original.Database = DatabaseConfig{Driver: DriverPostgres, URL: "postgres://localhost/intake"}
	original.Retrieval.Concurrency = 2
	original.Temperature = 0.7

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.Quality != original.Quality {
		t.Errorf("quality: got %q, want %q", loaded.Quality, original.Quality)
	}
	if loaded.DataDir != original.DataDir {
		t.Errorf("data_dir: got %q, want %q", loaded.DataDir, original.DataDir)
	}
	if loaded.Database != original.Database {
		t.Errorf("database: got %+v, want %+v", loaded.Database, original.Database)
	}
	if loaded.Retrieval.Concurrency != 2 {
		t.Errorf("retrieval.concurrency: got %d, want 2", loaded.Retrieval.Concurrency)
	}
	if loaded.Temperature != 0.7 {
		t.Errorf("temperature: got %f, want 0.7", loaded.Temperature)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.yml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderGoogle {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yml")
	if err := DefaultConfig().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("PHYSIO_PROVIDER", "ollama")
	t.Setenv("PHYSIO_DATABASE__DRIVER", "memory")
	t.Setenv("PHYSIO_RETRIEVAL__LIMIT", "3")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderOllama {
		t.Errorf("provider override failed: got %q", loaded.Provider)
	}
	if loaded.Database.Driver != DriverMemory {
		t.Errorf("nested driver override failed: got %q", loaded.Database.Driver)
	}
	if loaded.Retrieval.Limit != 3 {
		t.Errorf("nested limit override failed: got %d", loaded.Retrieval.Limit)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"invalid provider", func(c *Config) { c.Provider = "invalid" }},
		{"empty provider", func(c *Config) { c.Provider = "" }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"invalid quality", func(c *Config) { c.Quality = "ultra" }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"temperature too high", func(c *Config) { c.Temperature = 3 }},
		{"negative rate limit", func(c *Config) { c.RateLimitRPM = -1 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"postgres without url", func(c *Config) { c.Database.Driver = DriverPostgres }},
		{"zero retrieval limit", func(c *Config) { c.Retrieval.Limit = 0 }},
		{"zero concurrency", func(c *Config) { c.Retrieval.Concurrency = 0 }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig should be valid, got: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset(ProviderOpenAI, QualityLite)
	if p.Model != "gpt-4o-mini" {
		t.Errorf("expected gpt-4o-mini, got %q", p.Model)
	}

	p = GetPreset("unknown", QualityLite)
	if p.Model != "gemini-2.0-flash" {
		t.Errorf("expected fallback to gemini-2.0-flash, got %q", p.Model)
	}
}

func TestSQLitePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "state"
	if got := cfg.SQLitePath(); got != filepath.Join("state", "conversations.db") {
		t.Errorf("SQLitePath = %q", got)
	}
	cfg.Database.URL = "/tmp/x.db"
	if got := cfg.SQLitePath(); got != "/tmp/x.db" {
		t.Errorf("SQLitePath with url = %q", got)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderGoogle, "GOOGLE_API_KEY"},
		{ProviderOllama, ""},
	}
	for _, tt := range tests {
		if got := APIKeyEnvVar(tt.provider); got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}
