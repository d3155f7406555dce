package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned when a channel already hosts a live session.
	ErrAlreadyRunning = errors.New("a quiz is already running in this channel")
	// ErrNoActiveSession is returned when no session exists for the channel.
	ErrNoActiveSession = errors.New("no quiz is running in this channel")
	// ErrSessionEnded is returned for answers arriving at or after the deadline.
	ErrSessionEnded = errors.New("quiz has ended")
	// ErrStaleSession indicates an answer aimed at a session that is no longer active.
	ErrStaleSession = errors.New("answer refers to a previous quiz")
	// ErrInvalidQuestionIndex indicates the question index is out of range.
	ErrInvalidQuestionIndex = errors.New("invalid question number")
	// ErrInvalidChoice indicates the chosen letter is not A, B, C or D.
	ErrInvalidChoice = errors.New("choice must be A, B, C, or D")
	// ErrInvalidQuestionCount indicates the requested question count is out of bounds.
	ErrInvalidQuestionCount = errors.New("invalid question count")
	// ErrInvalidDuration indicates the requested duration is out of bounds.
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrGenerationFailed indicates the question source produced nothing usable.
	ErrGenerationFailed = errors.New("could not generate a quiz")
	// ErrNoResults indicates no finished quiz is recorded for the channel.
	ErrNoResults = errors.New("no quiz results for this channel")
)

// Kind classifies errors for callers.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindExpired    Kind = "expired"
	KindGeneration Kind = "generation"
	KindInternal   Kind = "internal"
)

// Error attaches a Kind and operation to an underlying error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err with a kind and op.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of err, deriving it from known sentinels when err is unwrapped.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	switch {
	case errors.Is(err, ErrInvalidChoice), errors.Is(err, ErrInvalidQuestionCount), errors.Is(err, ErrInvalidDuration):
		return KindValidation
	case errors.Is(err, ErrAlreadyRunning):
		return KindConflict
	case errors.Is(err, ErrNoActiveSession), errors.Is(err, ErrNoResults):
		return KindNotFound
	case errors.Is(err, ErrSessionEnded), errors.Is(err, ErrStaleSession), errors.Is(err, ErrInvalidQuestionIndex):
		return KindExpired
	case errors.Is(err, ErrGenerationFailed):
		return KindGeneration
	}
	return KindInternal
}
