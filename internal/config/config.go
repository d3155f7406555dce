package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		// TTL is the grace a session liveness key outlives its deadline.
		TTL string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Results struct {
		TTL string `yaml:"ttl"`
	} `yaml:"results"`
	Quiz QuizConfig `yaml:"quiz"`
	LLM  LLMConfig  `yaml:"llm"`
	Log  struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

type QuizConfig struct {
	DefaultQuestions   int     `yaml:"default_questions"`
	MinQuestions       int     `yaml:"min_questions"`
	MaxQuestions       int     `yaml:"max_questions"`
	DefaultDuration    int     `yaml:"default_duration_minutes"`
	MinDuration        int     `yaml:"min_duration_minutes"`
	MaxDuration        int     `yaml:"max_duration_minutes"`
	RegenerationRounds int     `yaml:"regeneration_rounds"`
	TextThreshold      int     `yaml:"text_threshold"`
	OverlapThreshold   float64 `yaml:"overlap_threshold"`
}

type LLMConfig struct {
	Provider        string `yaml:"provider"`
	Model           string `yaml:"model"`
	BaseURL         string `yaml:"base_url"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	AssistantID     string `yaml:"assistant_id"`
	PollInterval    string `yaml:"poll_interval"`
	Timeout         string `yaml:"timeout"`
	MaxAttempts     int    `yaml:"max_attempts"`
}

// Hard bounds on what a quiz may ask for.
const (
	MinQuestions = 1
	MaxQuestions = 10
	MinDuration  = 1
	MaxDuration  = 480
)

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Redis.TTL = "1m"
	cfg.Results.TTL = "24h"
	cfg.Quiz = QuizConfig{
		DefaultQuestions:   6,
		MinQuestions:       MinQuestions,
		MaxQuestions:       MaxQuestions,
		DefaultDuration:    5,
		MinDuration:        MinDuration,
		MaxDuration:        MaxDuration,
		RegenerationRounds: 3,
		TextThreshold:      85,
		OverlapThreshold:   0.4,
	}
	cfg.LLM = LLMConfig{
		Provider:     "assistant",
		PollInterval: "700ms",
		Timeout:      "45s",
		MaxAttempts:  3,
	}
	cfg.Log.Level = "info"
	return cfg
}

// Load reads YAML config from path over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg, os.Getenv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.LLM.OpenAIAPIKey, "OPENAI_API_KEY")
	set(&cfg.LLM.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	set(&cfg.LLM.GeminiAPIKey, "GEMINI_API_KEY")
	set(&cfg.LLM.AssistantID, "ASSISTANT_ID")
	set(&cfg.LLM.Provider, "QUIZ_LLM_PROVIDER")
	set(&cfg.Redis.Addr, "REDIS_ADDR")
	set(&cfg.Postgres.URL, "DATABASE_URL")
}

// Validate checks the quiz bounds.
func (c Config) Validate() error {
	q := c.Quiz
	if q.MinQuestions < MinQuestions || q.MaxQuestions > MaxQuestions || q.MinQuestions > q.MaxQuestions {
		return fmt.Errorf("quiz question bounds must lie within [%d, %d]", MinQuestions, MaxQuestions)
	}
	if q.MinDuration < MinDuration || q.MaxDuration > MaxDuration || q.MinDuration > q.MaxDuration {
		return fmt.Errorf("quiz duration bounds must lie within [%d, %d] minutes", MinDuration, MaxDuration)
	}
	if q.DefaultQuestions < q.MinQuestions || q.DefaultQuestions > q.MaxQuestions {
		return fmt.Errorf("default question count %d is out of bounds", q.DefaultQuestions)
	}
	if q.DefaultDuration < q.MinDuration || q.DefaultDuration > q.MaxDuration {
		return fmt.Errorf("default duration %d is out of bounds", q.DefaultDuration)
	}
	if q.RegenerationRounds < 0 {
		return fmt.Errorf("regeneration rounds must not be negative")
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
