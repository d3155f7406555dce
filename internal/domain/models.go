package domain

import "time"

// Letters are the answer labels in option order.
var Letters = [4]string{"A", "B", "C", "D"}

// OptionCount is the fixed number of options per question.
const OptionCount = 4

// Question models a four-option multiple choice question.
type Question struct {
	Text        string   `json:"q"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"` // one of A, B, C, D
	Explanation string   `json:"explain"`
	Topic       string   `json:"topic,omitempty"`
	Page        string   `json:"page,omitempty"`
}

// LetterIndex returns the option index for an answer letter, or -1.
func LetterIndex(letter string) int {
	for i, l := range Letters {
		if l == letter {
			return i
		}
	}
	return -1
}

// CorrectIndex returns the index of the correct option, or -1 when Answer is malformed.
func (q Question) CorrectIndex() int {
	return LetterIndex(NormalizeLetter(q.Answer))
}

// CorrectOption returns the text of the correct option.
func (q Question) CorrectOption() string {
	idx := q.CorrectIndex()
	if idx < 0 || idx >= len(q.Options) {
		return ""
	}
	return q.Options[idx]
}

// SessionSummary is returned to the caller after a session starts.
type SessionSummary struct {
	SessionID       string     `json:"sessionId"`
	ChannelID       string     `json:"channelId"`
	Topic           string     `json:"topic,omitempty"`
	Questions       []Question `json:"questions"`
	Requested       int        `json:"requested"`
	Partial         bool       `json:"partial"`
	DurationMinutes int        `json:"durationMinutes"`
	Deadline        time.Time  `json:"deadline"`
	InitiatorID     string     `json:"initiatorId"`
}

// AnswerSubmission is one participant choice for one question.
type AnswerSubmission struct {
	SessionID     string // optional; rejects answers aimed at a previous session
	ParticipantID string
	QuestionIndex int // zero-based
	Letter        string
}

// AnswerReceipt acknowledges a recorded answer.
type AnswerReceipt struct {
	QuestionNumber int           `json:"questionNumber"`
	Letter         string        `json:"letter"`
	Answered       int           `json:"answered"`
	Total          int           `json:"total"`
	Remaining      time.Duration `json:"remaining"`
}

// ProgressReport is the read-only view of one participant's progress.
type ProgressReport struct {
	Answered        int           `json:"answered"`
	Total           int           `json:"total"`
	AnsweredNumbers []int         `json:"answeredNumbers"` // 1-based, ascending
	Remaining       time.Duration `json:"remaining"`       // whole seconds, never negative
}

// LeaderboardEntry is one participant's final score.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	ParticipantID string `json:"participantId"`
	Score         int    `json:"score"`
	Total         int    `json:"total"`
	Percentage    int    `json:"percentage"`
}

// QuestionResult partitions the participants who answered one question.
type QuestionResult struct {
	Number        int      `json:"number"`
	Text          string   `json:"text"`
	CorrectLetter string   `json:"correctLetter"`
	Explanation   string   `json:"explanation"`
	Correct       []string `json:"correct"`
	Incorrect     []string `json:"incorrect"`
}

// ResultsReport is produced exactly once when a session ends.
type ResultsReport struct {
	SessionID   string             `json:"sessionId"`
	ChannelID   string             `json:"channelId"`
	Reason      EndReason          `json:"reason"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Questions   []QuestionResult   `json:"questions"`
	EndedAt     time.Time          `json:"endedAt"`
}

// EndReason records what terminated a session.
type EndReason string

const (
	EndDeadline EndReason = "deadline"
	EndManual   EndReason = "manual"
)
