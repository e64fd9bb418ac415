package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        App        `mapstructure:"app"`
	AI         AI         `mapstructure:"ai"`
	Search     Search     `mapstructure:"search"`
	Generation Generation `mapstructure:"generation"`
	Jobs       Jobs       `mapstructure:"jobs"`
	Logging    Logging    `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	LogLevel   string `mapstructure:"log_level"`
	OutputDir  string `mapstructure:"output_dir"`
	ConfigFile string `mapstructure:"config_file"`
}

// AI holds LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
	Limits LimitsConfig `mapstructure:"limits"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
}

// LimitsConfig holds rate-limiting and retry configuration shared by every
// LLM call in the process.
type LimitsConfig struct {
	MinRequestInterval time.Duration `mapstructure:"min_request_interval"` // Minimum spacing between LLM requests
	MaxRetries         int           `mapstructure:"max_retries"`          // Retries per model on rate-limit errors
	RetryDelay         time.Duration `mapstructure:"retry_delay"`          // Default backoff when no retry-after hint
	FallbackModels     []string      `mapstructure:"fallback_models"`      // Ordered fallback candidates
	ResetWindow        time.Duration `mapstructure:"reset_window"`         // Error-tracker rolling window
}

// Search holds research provider configuration
type Search struct {
	Provider   string             `mapstructure:"provider"`
	MaxResults int                `mapstructure:"max_results"`
	Timeout    time.Duration      `mapstructure:"timeout"`
	Google     GoogleSearchConfig `mapstructure:"google"`
	Fetch      FetchConfig        `mapstructure:"fetch"`
}

// GoogleSearchConfig holds Google Custom Search configuration
type GoogleSearchConfig struct {
	APIKey   string `mapstructure:"api_key"`
	SearchID string `mapstructure:"search_id"`
}

// FetchConfig holds page-fetch configuration for the research fetcher
type FetchConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	RequestsPerSec float64       `mapstructure:"requests_per_sec"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// Generation holds the write-score-rewrite loop configuration
type Generation struct {
	MaxIterations     int    `mapstructure:"max_iterations"`      // Write-score-rewrite budget
	MinScoreThreshold int    `mapstructure:"min_score_threshold"` // Stop early at or above this total (0-100)
	Style             string `mapstructure:"style"`               // Writing style hint for the first draft
	ContextChunks     int    `mapstructure:"context_chunks"`      // Top-k chunks retrieved per request
}

// Jobs holds worker configuration
type Jobs struct {
	Workers int `mapstructure:"workers"` // Concurrent generation requests
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var globalConfig *Config

// Load loads the configuration from .env, an optional config file, and
// environment variables, in ascending precedence.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".blogforge")
		viper.SetConfigType("yaml")
	}

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached configuration. Intended for tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.output_dir", "drafts")

	// AI defaults
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash-preview-05-20")
	viper.SetDefault("ai.gemini.temperature", 0.7)
	viper.SetDefault("ai.gemini.max_tokens", 8192)

	// Rate-limit and retry defaults
	viper.SetDefault("ai.limits.min_request_interval", "5s")
	viper.SetDefault("ai.limits.max_retries", 3)
	viper.SetDefault("ai.limits.retry_delay", "20s")
	viper.SetDefault("ai.limits.fallback_models", []string{})
	viper.SetDefault("ai.limits.reset_window", "10m")

	// Search defaults
	viper.SetDefault("search.provider", "google")
	viper.SetDefault("search.max_results", 5)
	viper.SetDefault("search.timeout", "15s")
	viper.SetDefault("search.fetch.timeout", "30s")
	viper.SetDefault("search.fetch.requests_per_sec", 2.0)
	viper.SetDefault("search.fetch.max_body_bytes", 2*1024*1024)
	viper.SetDefault("search.fetch.user_agent", "Blogforge/1.0")

	// Generation defaults
	viper.SetDefault("generation.max_iterations", 2)
	viper.SetDefault("generation.min_score_threshold", 80)
	viper.SetDefault("generation.style", "professional")
	viper.SetDefault("generation.context_chunks", 6)

	// Jobs defaults
	viper.SetDefault("jobs.workers", 2)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// validateConfig checks configuration values that would otherwise fail deep
// inside a generation run.
func validateConfig(config *Config) error {
	if config.Generation.MaxIterations < 1 {
		return fmt.Errorf("generation.max_iterations must be at least 1, got %d", config.Generation.MaxIterations)
	}
	if config.Generation.MinScoreThreshold < 0 || config.Generation.MinScoreThreshold > 100 {
		return fmt.Errorf("generation.min_score_threshold must be in 0-100, got %d", config.Generation.MinScoreThreshold)
	}
	if config.AI.Limits.MaxRetries < 1 {
		return fmt.Errorf("ai.limits.max_retries must be at least 1, got %d", config.AI.Limits.MaxRetries)
	}
	if config.AI.Limits.MinRequestInterval < 0 {
		return fmt.Errorf("ai.limits.min_request_interval must not be negative")
	}
	if config.Jobs.Workers < 1 {
		return fmt.Errorf("jobs.workers must be at least 1, got %d", config.Jobs.Workers)
	}
	return nil
}
