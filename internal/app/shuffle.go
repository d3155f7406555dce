package app

import (
	"math/rand"
	"sync"
	"time"

	"darkstar-quiz-service/internal/domain"
)

// Shuffler permutes question options uniformly at random.
type Shuffler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewShuffler() *Shuffler {
	return NewShufflerWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewShufflerWithSource is used by tests for reproducible permutations.
func NewShufflerWithSource(src rand.Source) *Shuffler {
	return &Shuffler{rnd: rand.New(src)}
}

// Shuffle returns q with its options permuted. The correct option is followed
// by position, so duplicate option texts keep the right answer.
func (s *Shuffler) Shuffle(q domain.Question) domain.Question {
	correct := q.CorrectIndex()

	s.mu.Lock()
	perm := s.rnd.Perm(len(q.Options))
	s.mu.Unlock()

	out := q
	out.Options = make([]string, len(q.Options))
	for newPos, oldPos := range perm {
		out.Options[newPos] = q.Options[oldPos]
		if oldPos == correct && newPos < len(domain.Letters) {
			out.Answer = domain.Letters[newPos]
		}
	}
	return out
}

// ShuffleAll shuffles every question independently.
func (s *Shuffler) ShuffleAll(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		out[i] = s.Shuffle(q)
	}
	return out
}
