package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// NewProvider builds the configured provider wrapped as
// caller -> timeout -> retry -> logging -> base.
func NewProvider(ctx context.Context, cfg Config, logger *zap.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error
	switch cfg.Provider {
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "assistant":
		base, err = NewAssistantProvider(cfg.Assistant)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		return NewDemoProvider(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithTimeout(WithRetry(WithLogging(base, logger), cfg.Retry), cfg.Timeout), nil
}

// TimeoutProvider bounds each Complete call.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps p; a non-positive timeout disables the bound.
func WithTimeout(p Provider, timeout time.Duration) *TimeoutProvider {
	return &TimeoutProvider{inner: p, timeout: timeout}
}

func (t *TimeoutProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	if t.timeout <= 0 {
		return t.inner.Complete(ctx, req)
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Complete(ctx, req)
}

func (t *TimeoutProvider) ModelID() string { return t.inner.ModelID() }
