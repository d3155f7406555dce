package diversity

import (
	"strings"

	"darkstar-quiz-service/internal/domain"
)

// Set accumulates mutually dissimilar questions in acceptance order.
type Set struct {
	detector Detector
	accepted []features
}

// NewSet returns an empty Set using detector.
func NewSet(detector Detector) *Set {
	return &Set{detector: detector}
}

// Add accepts q if it is not similar to any question already in the set.
func (s *Set) Add(q domain.Question) bool {
	candidate := features{
		question: q,
		topic:    ExtractTopic(q),
		keywords: ExtractKeywords(q.Text, s.detector.KeywordCount),
	}
	for _, existing := range s.accepted {
		if s.detector.similar(existing, candidate) {
			return false
		}
	}
	s.accepted = append(s.accepted, candidate)
	return true
}

// Len returns the number of accepted questions.
func (s *Set) Len() int { return len(s.accepted) }

// Questions returns the accepted questions in acceptance order.
func (s *Set) Questions() []domain.Question {
	out := make([]domain.Question, len(s.accepted))
	for i, f := range s.accepted {
		out[i] = f.question
	}
	return out
}

// Topics returns the topic tag of each accepted question, aligned with Questions.
func (s *Set) Topics() []string {
	out := make([]string, len(s.accepted))
	for i, f := range s.accepted {
		out[i] = f.topic
	}
	return out
}

// Deduplicate keeps the first question of every group of similar questions.
func (d Detector) Deduplicate(questions []domain.Question) ([]domain.Question, []string) {
	set := NewSet(d)
	for _, q := range questions {
		set.Add(q)
	}
	return set.Questions(), set.Topics()
}

// Deduplicate runs the default detector over questions.
func Deduplicate(questions []domain.Question) ([]domain.Question, []string) {
	return DefaultDetector().Deduplicate(questions)
}

func lower(s string) string { return strings.ToLower(s) }
