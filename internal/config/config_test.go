package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Document: DocumentConfig{Path: "doc.txt"},
		Chunking: ChunkingConfig{WindowSize: 10, Overlap: 4},
		LLM:      LLMConfig{APIKey: "test-key"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidBudgetAction(t *testing.T) {
	cfg := validConfig()
	cfg.Budget.Action = "invalid_action"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid budget action")
	}

	expected := `budget.action must be "warn" or "reject", got "invalid_action"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidBudgetActions(t *testing.T) {
	for _, action := range []string{"warn", "reject"} {
		t.Run("action="+action, func(t *testing.T) {
			cfg := validConfig()
			cfg.Budget.Action = action

			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"invalid port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"unknown mode", func(c *Config) { c.Mode = "batch" }, "mode must be"},
		{"evaluate without dataset", func(c *Config) { c.Mode = ModeEvaluate }, "dataset.path"},
		{"missing document", func(c *Config) { c.Document.Path = "" }, "document.path"},
		{"overlap equals window", func(c *Config) { c.Chunking.Overlap = 10 }, "chunking.overlap"},
		{"negative overlap", func(c *Config) { c.Chunking.Overlap = -1 }, "chunking.overlap"},
		{"default above max", func(c *Config) { c.Search.DefaultTopK = 200 }, "default_top_k"},
		{"missing api key", func(c *Config) { c.LLM.APIKey = "" }, "llm.api_key"},
		{"negative dimensions", func(c *Config) { c.LLM.EmbeddingDimensions = -1 }, "embedding_dimensions"},
		{"negative budget", func(c *Config) { c.Budget.DailyTokens = -1 }, "budget limits"},
		{"cache without addrs", func(c *Config) { c.Cache.Enabled = true }, "cache.addrs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestValidate_EvaluateModeSkipsPort(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = ModeEvaluate
	cfg.HTTP.Port = 0
	cfg.Dataset.Path = "cases.yaml"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Mode != ModeServe {
		t.Errorf("expected Mode=%q, got %q", ModeServe, cfg.Mode)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Chunking.WindowSize != 1000 || cfg.Chunking.Overlap != 0 {
		t.Errorf("expected chunking 1000/0, got %d/%d", cfg.Chunking.WindowSize, cfg.Chunking.Overlap)
	}
	if cfg.Index.Concurrency != 8 {
		t.Errorf("expected Concurrency=8, got %d", cfg.Index.Concurrency)
	}
	if cfg.Search.DefaultTopK != 5 || cfg.Search.MaxTopK != 100 {
		t.Errorf("expected top_k 5/100, got %d/%d", cfg.Search.DefaultTopK, cfg.Search.MaxTopK)
	}
	if cfg.Retry.MaxAttempts != 4 || cfg.Retry.InitialIntervalMs != 500 || cfg.Retry.MaxIntervalMs != 8000 {
		t.Errorf("unexpected retry defaults: %+v", cfg.Retry)
	}
	if cfg.Budget.Action != "warn" {
		t.Errorf("expected budget action warn, got %q", cfg.Budget.Action)
	}
	if cfg.Cache.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Cache.ReadinessTimeout)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		Mode:     ModeEvaluate,
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 90, ShutdownSec: 5},
		Chunking: ChunkingConfig{WindowSize: 512, Overlap: 64},
		Search:   SearchConfig{DefaultTopK: 3, MaxTopK: 10},
		LLM:      LLMConfig{EmbeddingModel: "bge-m3", CompletionModel: "llama"},
	}
	cfg.ApplyDefaults()

	if cfg.Mode != ModeEvaluate {
		t.Errorf("expected Mode=%q, got %q", ModeEvaluate, cfg.Mode)
	}
	if cfg.HTTP.WriteTimeoutSec != 90 {
		t.Errorf("expected WriteTimeoutSec=90, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Chunking.WindowSize != 512 || cfg.Chunking.Overlap != 64 {
		t.Errorf("chunking overridden: %+v", cfg.Chunking)
	}
	if cfg.Search.DefaultTopK != 3 || cfg.Search.MaxTopK != 10 {
		t.Errorf("search overridden: %+v", cfg.Search)
	}
	if cfg.LLM.EmbeddingModel != "bge-m3" || cfg.LLM.CompletionModel != "llama" {
		t.Errorf("models overridden: %+v", cfg.LLM)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("HEADRAG_TEST_KEY", "sk-from-env")

	data := []byte(`
http:
  port: ${HEADRAG_TEST_PORT:-9090}
document:
  path: doc.pdf
chunking:
  window_size: 10
  overlap: 4
llm:
  api_key: ${HEADRAG_TEST_KEY}
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected default port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.LLM.APIKey != "sk-from-env" {
		t.Errorf("expected api key from env, got %q", cfg.LLM.APIKey)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected YAML error")
	}
	if _, err := Parse([]byte("http:\n  port: 8080\n")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("HEADRAG_DOTENV_A=from-file\nHEADRAG_DOTENV_B=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("HEADRAG_DOTENV_A", "from-env")
	t.Setenv("HEADRAG_DOTENV_B", "")
	os.Unsetenv("HEADRAG_DOTENV_B")

	LoadDotEnv()

	if got := os.Getenv("HEADRAG_DOTENV_A"); got != "from-env" {
		t.Errorf("HEADRAG_DOTENV_A = %q, want from-env", got)
	}
	if got := os.Getenv("HEADRAG_DOTENV_B"); got != "from-file" {
		t.Errorf("HEADRAG_DOTENV_B = %q, want from-file", got)
	}
}
