// Package llm talks to the language model that writes quiz questions.
package llm

import "context"

// Provider sends a single text prompt and returns the model's text reply.
type Provider interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier the provider is configured for.
	ModelID() string
}

// Request is one prompt.
type Request struct {
	// System sets the model's role. Ignored by the assistant provider, whose
	// instructions live server side.
	System string
	Prompt string

	MaxTokens   int
	Temperature float64
}

// Response is the model's reply with citation markers removed.
type Response struct {
	Text       string
	Model      string
	Usage      Usage
	StopReason string // "end", "max_tokens"
}

// Usage reports token consumption.
type Usage struct {
	InputTokens  int
	OutputTokens int
}
