package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the affinity API configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Extraction  ExtractionConfig  `yaml:"extraction"`
	Matching    MatchingConfig    `yaml:"matching"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Institution InstitutionConfig `yaml:"institution"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ExtractionConfig holds language-model interest extraction settings.
// An empty api_key disables extraction; interactions are then matched
// from the transcript alone.
type ExtractionConfig struct {
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	Provider string `yaml:"provider"`
}

// MatchingConfig holds fuzzy matching thresholds. Zero values mean
// "use the engine default".
type MatchingConfig struct {
	AcceptanceThreshold float64 `yaml:"acceptance_threshold"`
	Generosity          float64 `yaml:"generosity"`
	CategoryThreshold   float64 `yaml:"category_threshold"`
	CategoryGenerosity  float64 `yaml:"category_generosity"`
	MaxResults          int     `yaml:"max_results"`
	BestScoreWins       bool    `yaml:"best_score_wins"`
}

// CatalogConfig holds tag catalog storage and refresh settings.
type CatalogConfig struct {
	KeyPrefix          string `yaml:"key_prefix"`
	RefreshIntervalSec int    `yaml:"refresh_interval_sec"`
}

// InstitutionConfig identifies the institution whose name is stripped
// from interest phrases during normalization.
type InstitutionConfig struct {
	Name         string `yaml:"name"`
	Abbreviation string `yaml:"abbreviation"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Extraction.Provider == "" {
		c.Extraction.Provider = "openai"
	}
	if c.Extraction.Model == "" {
		c.Extraction.Model = "gpt-4o-mini"
	}
	if c.Catalog.KeyPrefix == "" {
		c.Catalog.KeyPrefix = "affinity:"
	}
	if c.Catalog.RefreshIntervalSec <= 0 {
		c.Catalog.RefreshIntervalSec = 300
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Matching.AcceptanceThreshold < 0 || c.Matching.AcceptanceThreshold >= 1 {
		return fmt.Errorf("matching.acceptance_threshold must be in [0, 1), got %g",
			c.Matching.AcceptanceThreshold)
	}
	if c.Matching.Generosity < 0 || c.Matching.Generosity > 1 {
		return fmt.Errorf("matching.generosity must be in [0, 1], got %g", c.Matching.Generosity)
	}
	if c.Matching.CategoryGenerosity < 0 || c.Matching.CategoryGenerosity > 1 {
		return fmt.Errorf("matching.category_generosity must be in [0, 1], got %g",
			c.Matching.CategoryGenerosity)
	}
	if c.Matching.MaxResults < 0 {
		return fmt.Errorf("matching.max_results must not be negative, got %d", c.Matching.MaxResults)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
