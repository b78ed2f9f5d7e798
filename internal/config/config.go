// Package config loads the model configuration from a TOML file and
// secrets from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/docsage/docsage-cli/internal/core/domain"
)

// Well-known locations and environment keys.
const (
	DirName  = ".docsage"
	FileName = "config.toml"

	// TokenEnvVar names the environment variable holding the
	// embedding API token. It may also live in a .env file next to
	// the config file or in the working directory.
	TokenEnvVar = "HF_TOKEN"
)

// Default model settings, used when the config file is absent.
const (
	DefaultEmbeddingModel = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultLLMModel       = "llama3.2"
	DefaultLLMBaseURL     = "http://localhost:11434"
	DefaultTemperature    = 0.1
	DefaultNumCtx         = 8192
)

// EmbeddingConfig selects the sentence embedding model.
type EmbeddingConfig struct {
	Model       string `toml:"model"`
	Accelerator string `toml:"accelerator,omitempty"`
}

// LLMConfig selects the generation model and its runtime parameters.
type LLMConfig struct {
	Model       string  `toml:"model"`
	BaseURL     string  `toml:"base_url"`
	Temperature float64 `toml:"temperature"`
	NumCtx      int     `toml:"num_ctx"`
	NumGPU      int     `toml:"num_gpu,omitempty"`
}

// Config is the full model configuration.
type Config struct {
	Embedding EmbeddingConfig `toml:"embedding_model"`
	LLM       LLMConfig       `toml:"llm_config"`

	// Token comes from the environment, never from the TOML file.
	Token string `toml:"-"`

	// ConfigDir is the directory the config was loaded from.
	ConfigDir string `toml:"-"`
}

// Default returns a configuration populated with default model
// settings. The token is left empty.
func Default() Config {
	return Config{
		Embedding: EmbeddingConfig{
			Model: DefaultEmbeddingModel,
		},
		LLM: LLMConfig{
			Model:       DefaultLLMModel,
			BaseURL:     DefaultLLMBaseURL,
			Temperature: DefaultTemperature,
			NumCtx:      DefaultNumCtx,
		},
	}
}

// Dir returns the configuration directory, ~/.docsage by default.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: resolve home directory: %w", domain.ErrConfig, err)
	}
	return filepath.Join(home, DirName), nil
}

// Load reads the configuration from configDir. An empty configDir means
// the default directory. A missing config file yields the defaults; a
// present but malformed file is an error. The embedding token is read
// from the environment, with .env files consulted as a fallback.
func Load(configDir string) (Config, error) {
	cfg := Default()

	if configDir == "" {
		dir, err := Dir()
		if err != nil {
			return Config{}, err
		}
		configDir = dir
	}

	path := filepath.Join(configDir, FileName)
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults apply.
	case err != nil:
		return Config{}, fmt.Errorf("%w: read %s: %w", domain.ErrConfig, path, err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %w", domain.ErrConfig, path, err)
		}
	}

	cfg.Token = resolveToken(configDir)
	cfg.ConfigDir = configDir

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Save writes the configuration (minus the token) to configDir,
// creating the directory if needed.
func Save(cfg Config, configDir string) error {
	if configDir == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		configDir = dir
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("%w: create %s: %w", domain.ErrConfig, configDir, err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("%w: encode config: %w", domain.ErrConfig, err)
	}

	path := filepath.Join(configDir, FileName)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrConfig, path, err)
	}

	return nil
}

// resolveToken finds the embedding API token. Precedence: process
// environment, then .env in the config directory, then .env in the
// working directory.
func resolveToken(configDir string) string {
	if token := os.Getenv(TokenEnvVar); token != "" {
		return token
	}

	for _, envFile := range []string{filepath.Join(configDir, ".env"), ".env"} {
		vars, err := godotenv.Read(envFile)
		if err != nil {
			continue
		}
		if token := vars[TokenEnvVar]; token != "" {
			return token
		}
	}

	return ""
}

func (c Config) validate() error {
	if c.Embedding.Model == "" {
		return fmt.Errorf("%w: embedding_model.model must not be empty", domain.ErrConfig)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("%w: llm_config.model must not be empty", domain.ErrConfig)
	}
	if c.LLM.BaseURL == "" {
		return fmt.Errorf("%w: llm_config.base_url must not be empty", domain.ErrConfig)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("%w: llm_config.temperature must be between 0 and 2", domain.ErrConfig)
	}
	if c.LLM.NumCtx < 0 {
		return fmt.Errorf("%w: llm_config.num_ctx must not be negative", domain.ErrConfig)
	}
	return nil
}
