package app

import (
	"sync"
	"time"
)

// Scheduler runs deferred callbacks keyed by name. Cancel stops a pending
// callback; a callback that already started is not interrupted.
type Scheduler interface {
	Schedule(key string, after time.Duration, fn func())
	Cancel(key string) bool
}

// TimerScheduler implements Scheduler with one time.Timer per key.
type TimerScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{timers: make(map[string]*time.Timer)}
}

// Schedule replaces any callback already pending under key.
func (s *TimerScheduler) Schedule(key string, after time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[key]; ok {
		old.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(after, func() {
		s.mu.Lock()
		if s.timers[key] == timer {
			delete(s.timers, key)
		}
		s.mu.Unlock()
		fn()
	})
	s.timers[key] = timer
}

func (s *TimerScheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.timers[key]
	if !ok {
		return false
	}
	delete(s.timers, key)
	return timer.Stop()
}

// Pending returns the number of callbacks that have not fired.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending callback.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
}
