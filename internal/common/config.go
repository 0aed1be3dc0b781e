// Package common provides shared utilities for MapleBook
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// SupportedProvinces lists the provinces the tax engine has rate tables for.
var SupportedProvinces = []string{"ON", "BC", "AB", "QC"}

// Config holds all configuration for MapleBook
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Logging     LoggingConfig `toml:"logging"`
	Tax         TaxConfig     `toml:"tax"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	Path string `toml:"path"` // BadgerHold data directory
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	SnapTrade SnapTradeConfig `toml:"snaptrade"`
	Gemini    GeminiConfig    `toml:"gemini"`
}

// SnapTradeConfig holds brokerage API configuration
type SnapTradeConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *SnapTradeConfig) GetTimeout() time.Duration {
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

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// TaxConfig holds the default tax settings applied when storage has none.
// Province must be one of SupportedProvinces; PersonalMarginalRate is the
// combined federal+provincial marginal rate as a fraction (e.g. 0.5353).
type TaxConfig struct {
	Province             string  `toml:"province"`
	PersonalMarginalRate float64 `toml:"personal_marginal_rate"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8220,
		},
		Storage: StorageConfig{
			Path: "data/maplebook",
		},
		Clients: ClientsConfig{
			SnapTrade: SnapTradeConfig{
				BaseURL:   "https://api.snaptrade.com/api/v1",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Tax: TaxConfig{
			Province:             "ON",
			PersonalMarginalRate: 0.5353,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

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

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("MAPLEBOOK_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("MAPLEBOOK_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("MAPLEBOOK_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("MAPLEBOOK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("MAPLEBOOK_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if key := os.Getenv("MAPLEBOOK_SNAPTRADE_KEY"); key != "" {
		config.Clients.SnapTrade.APIKey = key
	}

	if key := os.Getenv("MAPLEBOOK_GEMINI_KEY"); key != "" {
		config.Clients.Gemini.APIKey = key
	}

	if prov := os.Getenv("MAPLEBOOK_PROVINCE"); prov != "" {
		config.Tax.Province = strings.ToUpper(prov)
	}
}

// Validate checks configuration that would otherwise produce silently wrong
// tax figures. A bad province or marginal rate is a boundary error and must
// fail loudly here rather than inside the engine.
func (c *Config) Validate() error {
	valid := false
	for _, p := range SupportedProvinces {
		if c.Tax.Province == p {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unsupported province %q (supported: %s)",
			c.Tax.Province, strings.Join(SupportedProvinces, ", "))
	}

	if c.Tax.PersonalMarginalRate < 0 || c.Tax.PersonalMarginalRate > 1 {
		return fmt.Errorf("personal_marginal_rate must be a fraction between 0 and 1, got %v",
			c.Tax.PersonalMarginalRate)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
