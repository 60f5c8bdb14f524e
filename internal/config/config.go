package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the GigSight server.
type Config struct {
	Server  ServerConfig
	Dataset DatasetConfig
	Redis   RedisConfig
	AI      AIConfig
}

type ServerConfig struct {
	Port           int
	Env            string
	RequestsPerMin int
}

type DatasetConfig struct {
	Path string
}

type RedisConfig struct {
	URL string
}

type AIConfig struct {
	Provider        string
	ClassifyTimeout time.Duration
	OpenAI          OpenAIConfig
	Ollama          OllamaConfig
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

var validProviders = map[string]bool{
	"openai": true,
	"ollama": true,
}

// Load reads configuration from environment variables and returns a validated
// Config. Returns an error with a descriptive message if any required value
// is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           envInt("GIGSIGHT_PORT", 8080),
			Env:            envString("GIGSIGHT_ENV", "development"),
			RequestsPerMin: envInt("RATE_LIMIT_PER_MIN", 60),
		},
		Dataset: DatasetConfig{
			Path: os.Getenv("DATASET_PATH"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		AI: aiFromEnv(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadAI reads only the classifier configuration, for callers that do not
// need the full server config (the CLI).
func LoadAI() (AIConfig, error) {
	cfg := aiFromEnv()
	if err := validateAI(cfg); err != nil {
		return AIConfig{}, err
	}
	return cfg, nil
}

func aiFromEnv() AIConfig {
	return AIConfig{
		Provider:        os.Getenv("AI_PROVIDER"),
		ClassifyTimeout: envDurationSecs("AI_CLASSIFY_TIMEOUT_SECS", 30*time.Second),
		OpenAI: OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   envString("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
		},
		Ollama: OllamaConfig{
			BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
			Model:   envString("OLLAMA_MODEL", "llama3"),
		},
	}
}

func (c *Config) validate() error {
	if c.Dataset.Path == "" {
		return fmt.Errorf("DATASET_PATH is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	return validateAI(c.AI)
}

func validateAI(cfg AIConfig) error {
	if cfg.Provider == "" {
		return fmt.Errorf("AI_PROVIDER is required")
	}
	if !validProviders[cfg.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of openai, ollama; got %q", cfg.Provider)
	}

	if cfg.Provider == "openai" && cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}
	if cfg.Provider == "ollama" {
		if !strings.HasPrefix(cfg.Ollama.BaseURL, "http://") && !strings.HasPrefix(cfg.Ollama.BaseURL, "https://") {
			return fmt.Errorf("OLLAMA_BASE_URL must start with http:// or https://, got %q", cfg.Ollama.BaseURL)
		}
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
