// Package common provides shared utilities for peerscope
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Supported LLM providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds all configuration for peerscope
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Clients     ClientsConfig `toml:"clients"`
	LLM         LLMConfig     `toml:"llm"`
	Peers       PeersConfig   `toml:"peers"`
	Reports     ReportsConfig `toml:"reports"`
	Prompts     PromptsConfig `toml:"prompts"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD  EODHDConfig  `toml:"eodhd"`
	Gemini GeminiConfig `toml:"gemini"`
	OpenAI OpenAIConfig `toml:"openai"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"` // optional, for compatible endpoints
}

// LLMConfig selects the provider used for peer discovery and recommendations
type LLMConfig struct {
	Provider        string  `toml:"provider"` // "gemini" or "openai"
	Temperature     float64 `toml:"temperature"`
	MaxOutputTokens int     `toml:"max_output_tokens"`
}

// PeersConfig controls peer discovery and filtering
type PeersConfig struct {
	MaxPeers   int `toml:"max_peers"`  // cap applied after validation
	Candidates int `toml:"candidates"` // how many peers the LLM is asked for
}

// ReportsConfig controls where generated analysis reports are written
type ReportsConfig struct {
	Dir  string `toml:"dir"`
	Save bool   `toml:"save"`
}

// PromptsConfig points at an optional YAML prompt override file
type PromptsConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
			OpenAI: OpenAIConfig{
				Model: "gpt-4o-mini",
			},
		},
		LLM: LLMConfig{
			Provider:        ProviderGemini,
			Temperature:     0,
			MaxOutputTokens: 5 * 1024,
		},
		Peers: PeersConfig{
			MaxPeers:   5,
			Candidates: 10,
		},
		Reports: ReportsConfig{
			Dir:  "reports",
			Save: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			Outputs:    []string{"console"},
			FilePath:   "./logs/peerscope.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// A .env file in the working directory is loaded first when present.
func LoadConfig(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	config := NewDefaultConfig()

	// Later files override earlier
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	validateLLMProvider(config)
	validatePeers(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PEERSCOPE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("PEERSCOPE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("PEERSCOPE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("PEERSCOPE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if provider := os.Getenv("PEERSCOPE_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}

	if dir := os.Getenv("PEERSCOPE_REPORTS_DIR"); dir != "" {
		config.Reports.Dir = dir
	}

	if key := firstEnv("EODHD_API_KEY", "PEERSCOPE_EODHD_API_KEY"); key != "" {
		config.Clients.EODHD.APIKey = key
	}

	if key := firstEnv("GEMINI_API_KEY", "PEERSCOPE_GEMINI_API_KEY", "GOOGLE_API_KEY"); key != "" {
		config.Clients.Gemini.APIKey = key
	}

	if key := firstEnv("OPENAI_API_KEY", "PEERSCOPE_OPENAI_API_KEY"); key != "" {
		config.Clients.OpenAI.APIKey = key
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// validateLLMProvider normalises the provider name, defaulting to gemini.
func validateLLMProvider(config *Config) {
	p := strings.ToLower(strings.TrimSpace(config.LLM.Provider))
	if p != ProviderGemini && p != ProviderOpenAI {
		p = ProviderGemini
	}
	config.LLM.Provider = p
}

func validatePeers(config *Config) {
	if config.Peers.MaxPeers <= 0 {
		config.Peers.MaxPeers = 5
	}
	if config.Peers.Candidates < config.Peers.MaxPeers {
		config.Peers.Candidates = 2 * config.Peers.MaxPeers
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolvePath makes a relative path absolute against baseDir
func ResolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// LLMAPIKey returns the API key configured for the selected provider
func (c *Config) LLMAPIKey() string {
	if c.LLM.Provider == ProviderOpenAI {
		return c.Clients.OpenAI.APIKey
	}
	return c.Clients.Gemini.APIKey
}

// ValidateRequired returns the names of required settings that are missing
func (c *Config) ValidateRequired() []string {
	var missing []string
	if c.Clients.EODHD.APIKey == "" {
		missing = append(missing, "clients.eodhd.api_key")
	}
	if c.LLMAPIKey() == "" {
		missing = append(missing, fmt.Sprintf("clients.%s.api_key", c.LLM.Provider))
	}
	return missing
}
