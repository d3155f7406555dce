package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Quiz.MaxQuestions != 10 || cfg.Quiz.MaxDuration != 480 || cfg.LLM.Provider == "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
server:
  port: "9090"
redis:
  addr: localhost:6379
quiz:
  default_questions: 4
llm:
  provider: mock
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("QUIZ_LLM_PROVIDER", "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" || cfg.Quiz.DefaultQuestions != 4 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Quiz.MaxQuestions != 10 || cfg.LLM.Timeout != "45s" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.LLM.Provider != "mock" {
		t.Fatalf("expected mock provider, got %q", cfg.LLM.Provider)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unterminated"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		"OPENAI_API_KEY":    "sk-test",
		"ASSISTANT_ID":      "asst_1",
		"QUIZ_LLM_PROVIDER": "anthropic",
	}
	cfg := Default()
	applyEnv(&cfg, func(k string) string { return env[k] })
	if cfg.LLM.OpenAIAPIKey != "sk-test" || cfg.LLM.AssistantID != "asst_1" || cfg.LLM.Provider != "anthropic" {
		t.Fatalf("env overrides not applied: %+v", cfg.LLM)
	}
	if cfg.LLM.GeminiAPIKey != "" {
		t.Fatalf("unset env must not clear values")
	}
}

func TestValidateBounds(t *testing.T) {
	cases := map[string]func(*Config){
		"too many questions": func(c *Config) { c.Quiz.MaxQuestions = 11 },
		"zero questions":     func(c *Config) { c.Quiz.MinQuestions = 0 },
		"too long":           func(c *Config) { c.Quiz.MaxDuration = 481 },
		"default too big":    func(c *Config) { c.Quiz.DefaultQuestions = 12 },
		"negative rounds":    func(c *Config) { c.Quiz.RegenerationRounds = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for bad input, got %v", got)
	}
}
