package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Storage  StorageConfig  `mapstructure:"storage"`
	History  HistoryConfig  `mapstructure:"history"`
	Log      LogConfig      `mapstructure:"log"`
}

type ProviderConfig struct {
	Name string `mapstructure:"name"`
}

type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type HistoryConfig struct {
	Key      string `mapstructure:"key"`
	Capacity int    `mapstructure:"capacity"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

const (
	ProviderGemini  = "gemini"
	ProviderOpenAI  = "openai"
	ProviderOffline = "offline"

	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sentimentlens"
	}
	return filepath.Join(home, ".sentimentlens")
}

// LoadConfig reads defaults, the optional file at path and the environment,
// in increasing order of precedence. An empty path skips the file; a path
// that does not exist is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("provider.name", ProviderGemini)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-3-flash-preview")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.max_tokens", 1024)
	v.SetDefault("openai.temperature", 0.2)
	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.path", defaultStoragePath())
	v.SetDefault("history.key", "sentiment_history")
	v.SetDefault("history.capacity", 10)
	v.SetDefault("log.level", "info")

	// SENTIMENTLENS_STORAGE_BACKEND overrides storage.backend, and so on.
	v.SetEnvPrefix("sentimentlens")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Unprefixed credentials, API_KEY being the shared fallback.
	if apiKey := os.Getenv("API_KEY"); apiKey != "" {
		if config.Gemini.APIKey == "" {
			config.Gemini.APIKey = apiKey
		}
		if config.OpenAI.APIKey == "" {
			config.OpenAI.APIKey = apiKey
		}
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	c.Provider.Name = strings.ToLower(strings.TrimSpace(c.Provider.Name))
	switch c.Provider.Name {
	case ProviderGemini, ProviderOpenAI, ProviderOffline:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider.Name)
	}

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.History.Capacity <= 0 {
		return fmt.Errorf("history.capacity must be positive, got %d", c.History.Capacity)
	}
	return nil
}
