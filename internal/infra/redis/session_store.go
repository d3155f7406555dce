package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"darkstar-quiz-service/internal/app"
	"darkstar-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes a liveness key only while it still names the session.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions stay in a local map; Redis holds a per-channel liveness key so two
// instances sharing Redis cannot run a quiz in the same channel at once.
type SessionStore struct {
	client *redis.Client
	grace  time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*app.Session
}

// NewSessionStore creates a store whose liveness keys outlive the session
// deadline by grace.
func NewSessionStore(client *redis.Client, grace time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		grace:    grace,
		now:      time.Now,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Create(ctx context.Context, session *app.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	channelID := session.ChannelID()
	if _, ok := s.sessions[channelID]; ok {
		return domain.ErrAlreadyRunning
	}
	ttl := session.Deadline().Sub(s.now()) + s.grace
	if ttl <= 0 {
		ttl = s.grace
	}
	acquired, err := s.client.SetNX(ctx, s.key(channelID), session.ID(), ttl).Result()
	if err != nil {
		return fmt.Errorf("mark session live: %w", err)
	}
	if !acquired {
		return domain.ErrAlreadyRunning
	}
	s.sessions[channelID] = session
	return nil
}

func (s *SessionStore) Get(_ context.Context, channelID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[channelID]
	return session, ok
}

func (s *SessionStore) Remove(ctx context.Context, channelID, sessionID string) (*app.Session, bool) {
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
	// best-effort; the key expires on its own
	_ = releaseScript.Run(ctx, s.client, []string{s.key(channelID)}, session.ID()).Err()
	return session, true
}

func (s *SessionStore) key(channelID string) string {
	return "quiz:session:" + channelID
}
