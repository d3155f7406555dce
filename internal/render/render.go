// Package render turns quiz state into chat-ready text.
package render

import (
	"fmt"
	"strings"
	"time"

	"darkstar-quiz-service/internal/domain"
)

var medals = []string{"🥇", "🥈", "🥉"}

// Question renders one question card. number is 1-based; total <= 0 omits
// the counter line.
func Question(number, total int, q domain.Question) string {
	var b strings.Builder
	if total > 0 {
		fmt.Fprintf(&b, "Question %d/%d\n\n", number, total)
	}
	fmt.Fprintf(&b, "**%s**\n", q.Text)
	for i, opt := range q.Options {
		if i >= len(domain.Letters) {
			break
		}
		fmt.Fprintf(&b, "\n**%s)** %s", domain.Letters[i], opt)
	}
	return b.String()
}

// Summary announces a started session.
func Summary(s domain.SessionSummary) string {
	var b strings.Builder
	b.WriteString("🎯 Quiz started!\n")
	if s.Topic != "" {
		fmt.Fprintf(&b, "Topic: **%s**\n", s.Topic)
	}
	fmt.Fprintf(&b, "Duration: **%d minute(s)**\n", s.DurationMinutes)
	fmt.Fprintf(&b, "Questions: **%d**", len(s.Questions))
	if s.Partial {
		fmt.Fprintf(&b, " (only %d of %d requested could be generated)", len(s.Questions), s.Requested)
	}
	return b.String()
}

// Receipt acknowledges a recorded answer.
func Receipt(r domain.AnswerReceipt) string {
	return fmt.Sprintf("📝 Answer **%s** recorded for question %d!\n📊 You've answered %d/%d questions.\n⏱️ Time remaining: %s",
		r.Letter, r.QuestionNumber, r.Answered, r.Total, Remaining(r.Remaining))
}

// Progress renders a participant's progress.
func Progress(p domain.ProgressReport) string {
	answered := "None"
	if len(p.AnsweredNumbers) > 0 {
		parts := make([]string, len(p.AnsweredNumbers))
		for i, n := range p.AnsweredNumbers {
			parts[i] = fmt.Sprint(n)
		}
		answered = strings.Join(parts, ", ")
	}
	return fmt.Sprintf("📊 **Your Quiz Progress:**\nAnswered: %d/%d questions\nQuestions answered: %s\n⏱️ Time remaining: %s",
		p.Answered, p.Total, answered, Remaining(p.Remaining))
}

// Remaining formats a duration as minutes and seconds.
func Remaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}

// Leaderboard renders the final scores.
func Leaderboard(r domain.ResultsReport) string {
	var b strings.Builder
	b.WriteString("🏁 Quiz Complete!\n\n")
	if len(r.Leaderboard) == 0 {
		b.WriteString("No one submitted answers!")
		return b.String()
	}
	b.WriteString("Final Scores\n")
	for i, e := range r.Leaderboard {
		medal := "📊"
		if i < len(medals) {
			medal = medals[i]
		}
		fmt.Fprintf(&b, "%s %s: **%d/%d** (%d%%)\n", medal, e.ParticipantID, e.Score, e.Total, e.Percentage)
	}
	return strings.TrimRight(b.String(), "\n")
}

// QuestionResult renders the breakdown of one question.
func QuestionResult(total int, q domain.QuestionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question %d/%d\n**%s**\n\n", q.Number, total, q.Text)
	fmt.Fprintf(&b, "✅ Correct Answer: **%s**\n", q.CorrectLetter)
	if len(q.Correct) > 0 {
		fmt.Fprintf(&b, "✅ Answered Correctly: %s\n", strings.Join(q.Correct, ", "))
	}
	if len(q.Incorrect) > 0 {
		fmt.Fprintf(&b, "❌ Answered Incorrectly: %s\n", strings.Join(q.Incorrect, ", "))
	}
	fmt.Fprintf(&b, "📖 Explanation: %s", q.Explanation)
	return b.String()
}

// Results renders the leaderboard followed by every question breakdown.
func Results(r domain.ResultsReport) []string {
	out := make([]string, 0, len(r.Questions)+1)
	out = append(out, Leaderboard(r))
	for _, q := range r.Questions {
		out = append(out, QuestionResult(len(r.Questions), q))
	}
	return out
}
