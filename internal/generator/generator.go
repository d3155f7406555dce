// Package generator asks the question source for quizzes whose questions
// cover distinct topics.
package generator

import (
	"context"
	"fmt"
	"unicode/utf8"

	"darkstar-quiz-service/internal/diversity"
	"darkstar-quiz-service/internal/domain"
	"darkstar-quiz-service/internal/llm"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"
)

// Config controls generation.
type Config struct {
	// MaxRegenerationRounds caps the extra requests made after the first one.
	MaxRegenerationRounds int
	// ExtraPerRound is requested on top of the shortfall in each regeneration round.
	ExtraPerRound int

	Detector    diversity.Detector
	MaxTokens   int
	Temperature float64
}

func DefaultConfig() Config {
	return Config{
		MaxRegenerationRounds: 3,
		ExtraPerRound:         2,
		Detector:              diversity.DefaultDetector(),
		MaxTokens:             4096,
		Temperature:           0.7,
	}
}

// Result is a generated quiz. Partial is set when fewer unique questions than
// requested could be produced.
type Result struct {
	Questions []domain.Question
	Topics    []string
	Requested int
	Partial   bool
	Calls     int
}

// Generator produces diverse quizzes from an llm.Provider.
type Generator struct {
	source llm.Provider
	config Config
	logger *zap.Logger
	schema *jsonschema.Schema
}

func New(source llm.Provider, cfg Config, logger *zap.Logger) (*Generator, error) {
	schema, err := compileItemSchema()
	if err != nil {
		return nil, fmt.Errorf("compile item schema: %w", err)
	}
	return &Generator{source: source, config: cfg, logger: logger, schema: schema}, nil
}

// Generate returns up to count questions on topicHint. It fails only when the
// first reply is unusable or no unique question was produced at all.
func (g *Generator) Generate(ctx context.Context, topicHint string, count int) (*Result, error) {
	const op = "generate quiz"
	if count < 1 {
		return nil, domain.E(domain.KindValidation, op, domain.ErrInvalidQuestionCount)
	}
	ctx = llm.WithPurpose(ctx, "quiz-gen")
	log := g.logger.With(zap.String("topic_hint", topicHint), zap.Int("requested", count))

	result := &Result{Requested: count}

	reply, err := g.ask(ctx, buildInitialPrompt(topicHint, count))
	result.Calls++
	if err != nil {
		log.Warn("initial generation request failed", zap.Error(err))
		return nil, generationFailed(op, err)
	}
	batch, dropped, err := parseReply(g.schema, reply)
	if err != nil {
		log.Warn("initial reply is not a JSON array", zap.Error(err), zap.String("reply", truncate(reply, 500)))
		return nil, generationFailed(op, err)
	}

	set := diversity.NewSet(g.config.Detector)
	for _, q := range batch {
		set.Add(q)
	}
	log.Info("initial batch deduplicated",
		zap.Int("valid", len(batch)),
		zap.Int("invalid", dropped),
		zap.Int("unique", set.Len()))

	for round := 1; round <= g.config.MaxRegenerationRounds && set.Len() < count; round++ {
		needed := count - set.Len()
		prompt := buildRegenerationPrompt(topicHint, needed+g.config.ExtraPerRound, set.Topics())

		reply, err := g.ask(ctx, prompt)
		result.Calls++
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Warn("regeneration request failed", zap.Int("round", round), zap.Error(err))
			continue
		}
		batch, _, err := parseReply(g.schema, reply)
		if err != nil {
			log.Warn("regeneration reply is not a JSON array", zap.Int("round", round), zap.Error(err))
			continue
		}

		added := 0
		for _, q := range batch {
			if set.Len() >= count {
				break
			}
			if set.Add(q) {
				added++
			}
		}
		log.Info("regeneration round finished",
			zap.Int("round", round),
			zap.Int("received", len(batch)),
			zap.Int("added", added),
			zap.Int("unique", set.Len()))
	}

	if set.Len() == 0 {
		return nil, generationFailed(op, fmt.Errorf("no valid unique questions"))
	}

	questions, topics := set.Questions(), set.Topics()
	if len(questions) > count {
		questions, topics = questions[:count], topics[:count]
	}
	result.Questions = questions
	result.Topics = topics
	result.Partial = len(questions) < count
	if result.Partial {
		log.Warn("returning partial quiz", zap.Int("unique", len(questions)), zap.Int("calls", result.Calls))
	}
	return result, nil
}

func (g *Generator) ask(ctx context.Context, prompt string) (string, error) {
	resp, err := g.source.Complete(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      prompt,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return "", err
	}
	return llm.StripCitations(resp.Text), nil
}

func generationFailed(op string, cause error) error {
	return domain.E(domain.KindGeneration, op, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, cause))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
