package app

import (
	"sort"
	"sync"
	"time"

	"darkstar-quiz-service/internal/domain"
)

// Session is the live state of one channel's quiz. Answers are keyed by
// participant and question index; only the latest answer per pair counts.
type Session struct {
	id          string
	channelID   string
	initiatorID string
	questions   []domain.Question
	startedAt   time.Time
	deadline    time.Time

	mu      sync.RWMutex
	closed  bool
	answers map[string]map[int]string
	order   []string // participants in order of their first answer
}

// NewSession is exported for infrastructure layers and tests that need to
// seed sessions directly.
func NewSession(id, channelID, initiatorID string, questions []domain.Question, startedAt, deadline time.Time) *Session {
	return newSession(id, channelID, initiatorID, questions, startedAt, deadline)
}

func newSession(id, channelID, initiatorID string, questions []domain.Question, startedAt, deadline time.Time) *Session {
	frozen := make([]domain.Question, len(questions))
	copy(frozen, questions)
	return &Session{
		id:          id,
		channelID:   channelID,
		initiatorID: initiatorID,
		questions:   frozen,
		startedAt:   startedAt,
		deadline:    deadline,
		answers:     make(map[string]map[int]string),
	}
}

func (s *Session) ID() string { return s.id }
func (s *Session) ChannelID() string { return s.channelID }
func (s *Session) InitiatorID() string { return s.initiatorID }
func (s *Session) StartedAt() time.Time { return s.startedAt }
func (s *Session) Deadline() time.Time { return s.deadline }
func (s *Session) QuestionCount() int { return len(s.questions) }

// Questions returns a copy of the frozen question list.
func (s *Session) Questions() []domain.Question {
	out := make([]domain.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// record stores letter as participantID's answer to question idx and returns
// how many questions that participant has answered.
func (s *Session) record(participantID string, idx int, letter string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, domain.ErrSessionEnded
	}
	byQuestion, ok := s.answers[participantID]
	if !ok {
		byQuestion = make(map[int]string)
		s.answers[participantID] = byQuestion
		s.order = append(s.order, participantID)
	}
	byQuestion[idx] = letter
	return len(byQuestion), nil
}

// answered returns the sorted zero-based indices participantID has answered.
func (s *Session) answered(participantID string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byQuestion := s.answers[participantID]
	out := make([]int, 0, len(byQuestion))
	for idx := range byQuestion {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// close freezes the session and returns a snapshot of its answers. Only the
// first call returns ok.
func (s *Session) close() (answers map[string]map[int]string, order []string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, nil, false
	}
	s.closed = true
	return s.answers, s.order, true
}
