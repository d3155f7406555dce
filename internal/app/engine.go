package app

import (
	"context"
	"time"

	"darkstar-quiz-service/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionRepository holds the live session of each channel. Create must fail
// with domain.ErrAlreadyRunning when the channel is taken, and Remove must be
// an atomic lookup-and-delete so only one caller ever receives a session.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, channelID string) (*Session, bool)
	// Remove deletes the channel's session if its id matches sessionID; an
	// empty sessionID matches any session.
	Remove(ctx context.Context, channelID, sessionID string) (*Session, bool)
}

// ResultsSink receives every finished report, including those produced by
// the deadline watcher with no caller waiting.
type ResultsSink interface {
	Publish(ctx context.Context, report domain.ResultsReport) error
}

// ResultsSinkFunc adapts a function to ResultsSink.
type ResultsSinkFunc func(ctx context.Context, report domain.ResultsReport) error

func (f ResultsSinkFunc) Publish(ctx context.Context, report domain.ResultsReport) error {
	return f(ctx, report)
}

// Engine runs timed quiz sessions, at most one per channel.
type Engine struct {
	sessions    SessionRepository
	scheduler   Scheduler
	sinks       []ResultsSink
	now         func() time.Time
	newID       func() string
	logger      *zap.Logger
	sinkTimeout time.Duration
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithClock replaces time.Now; used by tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithScheduler replaces the default timer scheduler.
func WithScheduler(s Scheduler) EngineOption {
	return func(e *Engine) { e.scheduler = s }
}

// WithResultsSinks registers sinks for finished reports.
func WithResultsSinks(sinks ...ResultsSink) EngineOption {
	return func(e *Engine) { e.sinks = append(e.sinks, sinks...) }
}

// WithIDGenerator replaces the uuid session id generator.
func WithIDGenerator(newID func() string) EngineOption {
	return func(e *Engine) { e.newID = newID }
}

func NewEngine(store SessionRepository, logger *zap.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		sessions:    store,
		scheduler:   NewTimerScheduler(),
		now:         time.Now,
		newID:       uuid.NewString,
		logger:      logger,
		sinkTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Active reports whether channelID currently hosts a session.
func (e *Engine) Active(ctx context.Context, channelID string) bool {
	_, ok := e.sessions.Get(ctx, channelID)
	return ok
}

// Start opens a session and arms its deadline watcher.
func (e *Engine) Start(ctx context.Context, channelID string, questions []domain.Question, duration time.Duration, initiatorID string) (domain.SessionSummary, error) {
	const op = "start session"
	if len(questions) == 0 {
		return domain.SessionSummary{}, domain.E(domain.KindValidation, op, domain.ErrInvalidQuestionCount)
	}
	if duration <= 0 {
		return domain.SessionSummary{}, domain.E(domain.KindValidation, op, domain.ErrInvalidDuration)
	}

	now := e.now()
	session := newSession(e.newID(), channelID, initiatorID, questions, now, now.Add(duration))
	if err := e.sessions.Create(ctx, session); err != nil {
		return domain.SessionSummary{}, domain.E(domain.KindOf(err), op, err)
	}

	sessionID := session.ID()
	e.scheduler.Schedule(timerKey(channelID, sessionID), duration, func() {
		e.finish(context.Background(), channelID, sessionID, domain.EndDeadline)
	})

	e.logger.Info("quiz session started",
		zap.String("channel_id", channelID),
		zap.String("session_id", sessionID),
		zap.Int("questions", len(questions)),
		zap.Duration("duration", duration),
		zap.String("initiator_id", initiatorID))

	return domain.SessionSummary{
		SessionID:       sessionID,
		ChannelID:       channelID,
		Questions:       session.Questions(),
		Requested:       len(questions),
		DurationMinutes: int(duration / time.Minute),
		Deadline:        session.Deadline(),
		InitiatorID:     initiatorID,
	}, nil
}

// SubmitAnswer records or overwrites one answer. Nothing is stored when an
// error is returned.
func (e *Engine) SubmitAnswer(ctx context.Context, channelID string, sub domain.AnswerSubmission) (domain.AnswerReceipt, error) {
	const op = "submit answer"
	session, ok := e.sessions.Get(ctx, channelID)
	if !ok {
		return domain.AnswerReceipt{}, domain.E(domain.KindNotFound, op, domain.ErrNoActiveSession)
	}
	if sub.SessionID != "" && sub.SessionID != session.ID() {
		return domain.AnswerReceipt{}, domain.E(domain.KindExpired, op, domain.ErrStaleSession)
	}
	now := e.now()
	if !now.Before(session.Deadline()) {
		return domain.AnswerReceipt{}, domain.E(domain.KindExpired, op, domain.ErrSessionEnded)
	}
	if sub.QuestionIndex < 0 || sub.QuestionIndex >= session.QuestionCount() {
		return domain.AnswerReceipt{}, domain.E(domain.KindExpired, op, domain.ErrInvalidQuestionIndex)
	}
	letter := domain.NormalizeLetter(sub.Letter)
	if !domain.ValidLetter(letter) {
		return domain.AnswerReceipt{}, domain.E(domain.KindValidation, op, domain.ErrInvalidChoice)
	}

	answered, err := session.record(sub.ParticipantID, sub.QuestionIndex, letter)
	if err != nil {
		return domain.AnswerReceipt{}, domain.E(domain.KindExpired, op, err)
	}
	return domain.AnswerReceipt{
		QuestionNumber: sub.QuestionIndex + 1,
		Letter:         letter,
		Answered:       answered,
		Total:          session.QuestionCount(),
		Remaining:      remaining(session.Deadline(), now),
	}, nil
}

// Progress reports what participantID has answered so far.
func (e *Engine) Progress(ctx context.Context, channelID, participantID string) (domain.ProgressReport, error) {
	session, ok := e.sessions.Get(ctx, channelID)
	if !ok {
		return domain.ProgressReport{}, domain.E(domain.KindNotFound, "get progress", domain.ErrNoActiveSession)
	}
	indices := session.answered(participantID)
	numbers := make([]int, len(indices))
	for i, idx := range indices {
		numbers[i] = idx + 1
	}
	return domain.ProgressReport{
		Answered:        len(numbers),
		Total:           session.QuestionCount(),
		AnsweredNumbers: numbers,
		Remaining:       remaining(session.Deadline(), e.now()),
	}, nil
}

// End finishes the channel's session and returns its report. The second
// return is false when no session was running.
func (e *Engine) End(ctx context.Context, channelID string) (*domain.ResultsReport, bool) {
	return e.finish(ctx, channelID, "", domain.EndManual)
}

func (e *Engine) finish(ctx context.Context, channelID, sessionID string, reason domain.EndReason) (*domain.ResultsReport, bool) {
	session, ok := e.sessions.Remove(ctx, channelID, sessionID)
	if !ok {
		return nil, false
	}
	answers, order, ok := session.close()
	if !ok {
		return nil, false
	}
	if reason == domain.EndManual {
		e.scheduler.Cancel(timerKey(channelID, session.ID()))
	}

	report := buildReport(session, answers, order, reason, e.now())
	e.logger.Info("quiz session ended",
		zap.String("channel_id", channelID),
		zap.String("session_id", session.ID()),
		zap.String("reason", string(reason)),
		zap.Int("participants", len(report.Leaderboard)))

	e.publish(report)
	return &report, true
}

func (e *Engine) publish(report domain.ResultsReport) {
	if len(e.sinks) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.sinkTimeout)
	defer cancel()
	for _, sink := range e.sinks {
		if err := sink.Publish(ctx, report); err != nil {
			e.logger.Warn("publish quiz results failed",
				zap.String("channel_id", report.ChannelID),
				zap.String("session_id", report.SessionID),
				zap.Error(err))
		}
	}
}

// Shutdown stops pending deadline watchers. Running sessions are left as is.
func (e *Engine) Shutdown() {
	if ts, ok := e.scheduler.(*TimerScheduler); ok {
		ts.Stop()
	}
}

func timerKey(channelID, sessionID string) string {
	return channelID + "/" + sessionID
}

func remaining(deadline, now time.Time) time.Duration {
	d := deadline.Sub(now)
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Second)
}
