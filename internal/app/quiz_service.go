package app

import (
	"context"
	"fmt"
	"time"

	"darkstar-quiz-service/internal/domain"
	"darkstar-quiz-service/internal/generator"
	"darkstar-quiz-service/internal/llm"
	"go.uber.org/zap"
)

// QuizGenerator produces a diverse quiz.
type QuizGenerator interface {
	Generate(ctx context.Context, topicHint string, count int) (*generator.Result, error)
}

// ResultsReader looks up the last finished report of a channel.
type ResultsReader interface {
	LastResults(ctx context.Context, channelID string) (domain.ResultsReport, error)
}

// Limits bounds what a caller may request.
type Limits struct {
	MinQuestions int
	MaxQuestions int
	MinDuration  int // minutes
	MaxDuration  int // minutes
}

func DefaultLimits() Limits {
	return Limits{MinQuestions: 1, MaxQuestions: 10, MinDuration: 1, MaxDuration: 480}
}

// StartRequest opens a quiz in a channel.
type StartRequest struct {
	ChannelID       string
	TopicHint       string
	QuestionCount   int
	DurationMinutes int
	InitiatorID     string
}

const (
	askSuffix = "\n\n(Answer using ONLY information from the attached documentation. Include page numbers when possible. If the answer isn't in the documentation, say so clearly.)"
	// maxAnswerLength keeps answers within a chat message.
	maxAnswerLength = 1900
)

// QuizService contains the inbound quiz use cases.
type QuizService struct {
	generator QuizGenerator
	engine    *Engine
	shuffler  *Shuffler
	results   ResultsReader
	source    llm.Provider
	limits    Limits
	minute    time.Duration
	logger    *zap.Logger
}

// ServiceOption customizes a QuizService.
type ServiceOption func(*QuizService)

// WithShuffler replaces the random shuffler.
func WithShuffler(s *Shuffler) ServiceOption {
	return func(q *QuizService) { q.shuffler = s }
}

// WithResultsReader enables LastResults.
func WithResultsReader(r ResultsReader) ServiceOption {
	return func(q *QuizService) { q.results = r }
}

// WithAskSource enables Ask.
func WithAskSource(p llm.Provider) ServiceOption {
	return func(q *QuizService) { q.source = p }
}

// WithLimits replaces DefaultLimits.
func WithLimits(l Limits) ServiceOption {
	return func(q *QuizService) { q.limits = l }
}

// WithMinute scales session durations; tests use milliseconds.
func WithMinute(d time.Duration) ServiceOption {
	return func(q *QuizService) { q.minute = d }
}

func NewQuizService(gen QuizGenerator, engine *Engine, logger *zap.Logger, opts ...ServiceOption) *QuizService {
	s := &QuizService{
		generator: gen,
		engine:    engine,
		shuffler:  NewShuffler(),
		limits:    DefaultLimits(),
		minute:    time.Minute,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSession validates the request, generates and shuffles the questions
// and opens the session. A reduced quiz is reported through Partial.
func (s *QuizService) StartSession(ctx context.Context, req StartRequest) (domain.SessionSummary, error) {
	const op = "start session"
	if req.QuestionCount < s.limits.MinQuestions || req.QuestionCount > s.limits.MaxQuestions {
		return domain.SessionSummary{}, domain.E(domain.KindValidation, op,
			fmt.Errorf("%w: must be between %d and %d", domain.ErrInvalidQuestionCount, s.limits.MinQuestions, s.limits.MaxQuestions))
	}
	if req.DurationMinutes < s.limits.MinDuration || req.DurationMinutes > s.limits.MaxDuration {
		return domain.SessionSummary{}, domain.E(domain.KindValidation, op,
			fmt.Errorf("%w: must be between %d and %d minutes", domain.ErrInvalidDuration, s.limits.MinDuration, s.limits.MaxDuration))
	}
	// Checked up front so a busy channel does not cost a generation.
	if s.engine.Active(ctx, req.ChannelID) {
		return domain.SessionSummary{}, domain.E(domain.KindConflict, op, domain.ErrAlreadyRunning)
	}

	result, err := s.generator.Generate(ctx, req.TopicHint, req.QuestionCount)
	if err != nil {
		return domain.SessionSummary{}, err
	}

	questions := s.shuffler.ShuffleAll(result.Questions)
	duration := time.Duration(req.DurationMinutes) * s.minute
	summary, err := s.engine.Start(ctx, req.ChannelID, questions, duration, req.InitiatorID)
	if err != nil {
		return domain.SessionSummary{}, err
	}
	summary.Topic = req.TopicHint
	summary.Requested = req.QuestionCount
	summary.Partial = result.Partial
	summary.DurationMinutes = req.DurationMinutes
	return summary, nil
}

func (s *QuizService) SubmitAnswer(ctx context.Context, channelID string, sub domain.AnswerSubmission) (domain.AnswerReceipt, error) {
	return s.engine.SubmitAnswer(ctx, channelID, sub)
}

// EndSession ends the channel's quiz. ok is false when nothing was running.
func (s *QuizService) EndSession(ctx context.Context, channelID string) (*domain.ResultsReport, bool) {
	return s.engine.End(ctx, channelID)
}

func (s *QuizService) GetProgress(ctx context.Context, channelID, participantID string) (domain.ProgressReport, error) {
	return s.engine.Progress(ctx, channelID, participantID)
}

// LastResults returns the most recent finished report for a channel.
func (s *QuizService) LastResults(ctx context.Context, channelID string) (domain.ResultsReport, error) {
	if s.results == nil {
		return domain.ResultsReport{}, domain.E(domain.KindNotFound, "last results", domain.ErrNoResults)
	}
	return s.results.LastResults(ctx, channelID)
}

// Ask forwards a free-form question to the documentation source.
func (s *QuizService) Ask(ctx context.Context, question string) (string, error) {
	const op = "ask"
	if s.source == nil {
		return "", domain.E(domain.KindInternal, op, fmt.Errorf("no question source configured"))
	}
	resp, err := s.source.Complete(llm.WithPurpose(ctx, "ask"), llm.Request{Prompt: question + askSuffix})
	if err != nil {
		s.logger.Warn("ask failed", zap.Error(err))
		return "", domain.E(domain.KindGeneration, op, err)
	}
	return truncateAnswer(llm.StripCitations(resp.Text), maxAnswerLength), nil
}

func truncateAnswer(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// Shutdown stops pending deadline watchers.
func (s *QuizService) Shutdown() {
	s.engine.Shutdown()
}
