package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	// OllamaURL is the base address of the completion service.
	OllamaURL string `yaml:"ollama_url"`

	// Model is the default model used when the snapshot has none selected.
	Model string `yaml:"model"`

	// Temperature is passed to the completion service options.
	Temperature float64 `yaml:"temperature"`

	// MaxTokens bounds generated responses (num_predict in Ollama terms).
	MaxTokens int `yaml:"max_tokens"`

	// SectionBudget is the per-section character budget when building
	// section-fill context.
	SectionBudget int `yaml:"section_budget"`

	// ExportsDir is where exports land when no destination is given.
	// Derived from the base directory, not read from the file.
	ExportsDir string `yaml:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		OllamaURL:     "http://localhost:11434",
		Model:         "llama3.1",
		Temperature:   0.7,
		MaxTokens:     2048,
		SectionBudget: 500,
	}
}

// Load loads configuration from baseDir/config.yaml, then applies .env and
// environment variable overrides. A missing file yields the defaults.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.gddstudio.
func Load(baseDir string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Join(baseDir, "config.yaml"))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// .env is optional; environment variables win over the file.
	_ = godotenv.Load()
	applyEnv(cfg)
	cfg.ExportsDir = filepath.Join(baseDir, "exports")

	return cfg, nil
}

// applyEnv overrides config values from GDDSTUDIO_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("GDDSTUDIO_OLLAMA_URL"); v != "" {
		cfg.OllamaURL = v
	}
	if v := os.Getenv("GDDSTUDIO_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("GDDSTUDIO_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = f
		}
	}
	if v := os.Getenv("GDDSTUDIO_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = n
		}
	}
}

// BaseDir returns the data directory, honoring GDDSTUDIO_HOME.
func BaseDir() (string, error) {
	if dir := os.Getenv("GDDSTUDIO_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gddstudio"), nil
}
