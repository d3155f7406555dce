package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// AssistantProvider runs each prompt on a fresh thread of an OpenAI
// assistant and polls the run until it settles.
type AssistantProvider struct {
	client       *openai.Client
	assistantID  string
	pollInterval time.Duration
}

func NewAssistantProvider(cfg AssistantConfig) (*AssistantProvider, error) {
	if cfg.APIKey == "" || cfg.AssistantID == "" {
		return nil, fmt.Errorf("openai API key and assistant id are required")
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 700 * time.Millisecond
	}
	return &AssistantProvider{
		client:       openai.NewClient(cfg.APIKey),
		assistantID:  cfg.AssistantID,
		pollInterval: interval,
	}, nil
}

func (p *AssistantProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	run, err := p.client.CreateThreadAndRun(ctx, openai.CreateThreadAndRunRequest{
		RunRequest: openai.RunRequest{AssistantID: p.assistantID},
		Thread: openai.ThreadRequest{
			Messages: []openai.ThreadMessage{
				{Role: openai.ThreadMessageRoleUser, Content: req.Prompt},
			},
		},
	})
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()
	for !runSettled(run.Status) {
		select {
		case <-ctx.Done():
			return nil, &ErrProviderUnavailable{Err: fmt.Errorf("assistant did not respond in time (status: %s): %w", run.Status, ctx.Err())}
		case <-ticker.C:
		}
		run, err = p.client.RetrieveRun(ctx, run.ThreadID, run.ID)
		if err != nil {
			return nil, mapOpenAIError(err)
		}
	}
	if run.Status != openai.RunStatusCompleted {
		return nil, &ErrProviderUnavailable{Err: fmt.Errorf("assistant run ended with status %s", run.Status)}
	}

	msgs, err := p.client.ListMessage(ctx, run.ThreadID, nil, nil, nil, nil, &run.ID)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	for _, msg := range msgs.Messages {
		if msg.Role != string(openai.ThreadMessageRoleAssistant) {
			continue
		}
		var chunks []string
		for _, c := range msg.Content {
			if c.Type == "text" && c.Text != nil {
				chunks = append(chunks, StripCitations(c.Text.Value))
			}
		}
		if len(chunks) > 0 {
			return &Response{
				Text:  strings.Join(chunks, "\n"),
				Model: run.Model,
				Usage: Usage{
					InputTokens:  run.Usage.PromptTokens,
					OutputTokens: run.Usage.CompletionTokens,
				},
				StopReason: "end",
			}, nil
		}
	}
	return nil, &ErrInvalidResponse{Err: fmt.Errorf("no response from assistant")}
}

func (p *AssistantProvider) ModelID() string { return "assistant:" + p.assistantID }

func runSettled(status openai.RunStatus) bool {
	switch status {
	case openai.RunStatusCompleted, openai.RunStatusFailed, openai.RunStatusCancelled, openai.RunStatusExpired:
		return true
	}
	return false
}
