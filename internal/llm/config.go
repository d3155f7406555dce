package llm

import (
	"fmt"
	"time"
)

// Config selects and configures the question source.
type Config struct {
	// Provider is one of "openai", "assistant", "anthropic", "gemini", "mock".
	Provider string

	OpenAI    OpenAIConfig
	Assistant AssistantConfig
	Anthropic AnthropicConfig
	Gemini    GeminiConfig
	Retry     RetryConfig

	// Timeout bounds one Complete call including retries.
	Timeout time.Duration
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// AssistantConfig targets an OpenAI assistant with file search over the
// reference document.
type AssistantConfig struct {
	APIKey       string
	AssistantID  string
	PollInterval time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

// RetryConfig configures backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the assistant provider with standard timings.
func DefaultConfig() Config {
	return Config{
		Provider:  "assistant",
		OpenAI:    OpenAIConfig{Model: "gpt-4o-mini"},
		Assistant: AssistantConfig{PollInterval: 700 * time.Millisecond},
		Anthropic: AnthropicConfig{Model: "claude-haiku"},
		Gemini:    GeminiConfig{Model: "gemini-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 45 * time.Second,
	}
}

// Validate checks that the selected provider has its credentials.
func (c Config) Validate() error {
	switch c.Provider {
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case "assistant":
		if c.Assistant.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the assistant provider")
		}
		if c.Assistant.AssistantID == "" {
			return fmt.Errorf("ASSISTANT_ID is required for the assistant provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown question source provider: %q", c.Provider)
	}
	return nil
}

// resolveModel maps a friendly name to a provider model ID; unknown names pass through.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
