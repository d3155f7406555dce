package memory

import (
	"context"
	"sync"

	"darkstar-quiz-service/internal/app"
	"darkstar-quiz-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Create(_ context.Context, session *app.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ChannelID()]; ok {
		return domain.ErrAlreadyRunning
	}
	s.sessions[session.ChannelID()] = session
	return nil
}

func (s *SessionStore) Get(_ context.Context, channelID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[channelID]
	return session, ok
}

func (s *SessionStore) Remove(_ context.Context, channelID, sessionID string) (*app.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[channelID]
	if !ok {
		return nil, false
	}
	if sessionID != "" && session.ID() != sessionID {
		return nil, false
	}
	delete(s.sessions, channelID)
	return session, true
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
