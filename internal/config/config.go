package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Run modes.
const (
	ModeServe    = "serve"
	ModeEvaluate = "evaluate"
)

// Config holds the headrag configuration.
type Config struct {
	Mode     string         `yaml:"mode"` // serve (default) | evaluate
	HTTP     HTTPConfig     `yaml:"http"`
	Logging  LoggingConfig  `yaml:"logging"`
	Document DocumentConfig `yaml:"document"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Chunking ChunkingConfig `yaml:"chunking"`
	Index    IndexConfig    `yaml:"index"`
	Search   SearchConfig   `yaml:"search"`
	LLM      LLMConfig      `yaml:"llm"`
	Retry    RetryConfig    `yaml:"retry"`
	Budget   BudgetConfig   `yaml:"budget"`
	Cache    CacheConfig    `yaml:"cache"`
	Auth     AuthConfig     `yaml:"auth"`
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

// DocumentConfig points at the document to index (.pdf or UTF-8 text).
type DocumentConfig struct {
	Path string `yaml:"path"`
}

// DatasetConfig points at the reference question/answer set.
type DatasetConfig struct {
	Path string `yaml:"path"`
}

// ChunkingConfig holds windowing parameters, in runes.
type ChunkingConfig struct {
	WindowSize int `yaml:"window_size"`
	Overlap    int `yaml:"overlap"`
}

// IndexConfig holds index build settings.
type IndexConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// SearchConfig holds ranking and evaluation limits.
type SearchConfig struct {
	DefaultTopK           int `yaml:"default_top_k"`
	MaxTopK               int `yaml:"max_top_k"`
	EvaluationConcurrency int `yaml:"evaluation_concurrency"`
}

// LLMConfig holds embedding and completion provider settings.
type LLMConfig struct {
	Provider            string `yaml:"provider"`
	APIKey              string `yaml:"api_key"`
	BaseURL             string `yaml:"base_url"`
	EmbeddingModel      string `yaml:"embedding_model"`
	EmbeddingDimensions int    `yaml:"embedding_dimensions"` // 0 = model default
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
	CompletionModel     string `yaml:"completion_model"`
	CompletionMaxTokens int    `yaml:"completion_max_tokens"` // 0 = provider default
}

// RetryConfig holds provider retry settings.
type RetryConfig struct {
	MaxAttempts       int `yaml:"max_attempts"`
	InitialIntervalMs int `yaml:"initial_interval_ms"`
	MaxIntervalMs     int `yaml:"max_interval_ms"`
}

// BudgetConfig holds token budget settings shared by embedding and completion.
type BudgetConfig struct {
	DailyTokens   int64  `yaml:"daily_tokens"`   // 0 = unlimited
	MonthlyTokens int64  `yaml:"monthly_tokens"` // 0 = unlimited
	Action        string `yaml:"action"`         // "reject" | "warn" (default)
}

// CacheConfig holds the optional embedding cache connection.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"` // 0 = no expiry
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML, substitutes env variables, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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

// LoadDotEnv loads a .env file from the working directory if one exists.
// Variables already present in the environment are not overridden.
func LoadDotEnv() {
	_ = godotenv.Load()
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
	if c.Mode == "" {
		c.Mode = ModeServe
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Chunking.WindowSize <= 0 {
		c.Chunking.WindowSize = 1000
	}
	if c.Index.Concurrency <= 0 {
		c.Index.Concurrency = 8
	}
	if c.Search.DefaultTopK <= 0 {
		c.Search.DefaultTopK = 5
	}
	if c.Search.MaxTopK <= 0 {
		c.Search.MaxTopK = 100
	}
	if c.Search.EvaluationConcurrency <= 0 {
		c.Search.EvaluationConcurrency = 4
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.EmbeddingModel == "" {
		c.LLM.EmbeddingModel = "text-embedding-3-small"
	}
	if c.LLM.CompletionModel == "" {
		c.LLM.CompletionModel = "gpt-4o-mini"
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 4
	}
	if c.Retry.InitialIntervalMs <= 0 {
		c.Retry.InitialIntervalMs = 500
	}
	if c.Retry.MaxIntervalMs <= 0 {
		c.Retry.MaxIntervalMs = 8000
	}
	if c.Budget.Action == "" {
		c.Budget.Action = "warn"
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeServe:
		if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
			return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
		}
	case ModeEvaluate:
		if c.Dataset.Path == "" {
			return fmt.Errorf("dataset.path is required in %s mode", ModeEvaluate)
		}
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeServe, ModeEvaluate, c.Mode)
	}
	if c.Document.Path == "" {
		return fmt.Errorf("document.path is required")
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.WindowSize {
		return fmt.Errorf(
			"chunking.overlap must be in [0, window_size), got overlap=%d window_size=%d",
			c.Chunking.Overlap, c.Chunking.WindowSize,
		)
	}
	if c.Search.DefaultTopK > c.Search.MaxTopK {
		return fmt.Errorf(
			"search.default_top_k (%d) must not exceed search.max_top_k (%d)",
			c.Search.DefaultTopK, c.Search.MaxTopK,
		)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if c.LLM.EmbeddingDimensions < 0 {
		return fmt.Errorf("llm.embedding_dimensions must be >= 0, got %d", c.LLM.EmbeddingDimensions)
	}
	switch c.Budget.Action {
	case "warn", "reject":
		// ok
	default:
		return fmt.Errorf("budget.action must be \"warn\" or \"reject\", got %q", c.Budget.Action)
	}
	if c.Budget.DailyTokens < 0 || c.Budget.MonthlyTokens < 0 {
		return fmt.Errorf("budget limits must be >= 0")
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache.enabled is true")
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
