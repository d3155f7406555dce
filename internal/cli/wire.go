package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"darkstar-quiz-service/internal/app"
	"darkstar-quiz-service/internal/config"
	"darkstar-quiz-service/internal/diversity"
	"darkstar-quiz-service/internal/generator"
	"darkstar-quiz-service/internal/llm"
	"go.uber.org/zap"
)

func newLogger(level string) (*zap.Logger, error) {
	if strings.EqualFold(level, "debug") {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func llmConfig(cfg config.Config) llm.Config {
	c := llm.DefaultConfig()
	l := cfg.LLM
	if l.Provider != "" {
		c.Provider = l.Provider
	}
	c.OpenAI.APIKey = l.OpenAIAPIKey
	c.OpenAI.BaseURL = l.BaseURL
	c.Assistant.APIKey = l.OpenAIAPIKey
	c.Assistant.AssistantID = l.AssistantID
	c.Assistant.PollInterval = config.TTLDuration(l.PollInterval, c.Assistant.PollInterval)
	c.Anthropic.APIKey = l.AnthropicAPIKey
	c.Gemini.APIKey = l.GeminiAPIKey
	if l.Model != "" {
		c.OpenAI.Model = l.Model
		c.Anthropic.Model = l.Model
		c.Gemini.Model = l.Model
	}
	if l.MaxAttempts > 0 {
		c.Retry.MaxAttempts = l.MaxAttempts
	}
	c.Timeout = config.TTLDuration(l.Timeout, c.Timeout)
	return c
}

func generatorConfig(q config.QuizConfig) generator.Config {
	c := generator.DefaultConfig()
	c.MaxRegenerationRounds = q.RegenerationRounds
	c.Detector = diversity.Detector{
		TextThreshold:    q.TextThreshold,
		OverlapThreshold: q.OverlapThreshold,
		KeywordCount:     diversity.DefaultKeywordCount,
	}
	return c
}

func limits(q config.QuizConfig) app.Limits {
	return app.Limits{
		MinQuestions: q.MinQuestions,
		MaxQuestions: q.MaxQuestions,
		MinDuration:  q.MinDuration,
		MaxDuration:  q.MaxDuration,
	}
}

// newGenerator builds the question source and the diversity-enforcing
// generator on top of it.
func newGenerator(ctx context.Context, cfg config.Config, logger *zap.Logger) (llm.Provider, *generator.Generator, error) {
	source, err := llm.NewProvider(ctx, llmConfig(cfg), logger.Named("llm"))
	if err != nil {
		return nil, nil, fmt.Errorf("question source: %w", err)
	}
	gen, err := generator.New(source, generatorConfig(cfg.Quiz), logger.Named("generator"))
	if err != nil {
		return nil, nil, err
	}
	return source, gen, nil
}

func resultsTTL(cfg config.Config) time.Duration {
	return config.TTLDuration(cfg.Results.TTL, 24*time.Hour)
}
