package app

import (
	"sort"
	"time"

	"darkstar-quiz-service/internal/domain"
)

// buildReport scores a closed session. Ties keep the order in which
// participants first answered.
func buildReport(s *Session, answers map[string]map[int]string, order []string, reason domain.EndReason, endedAt time.Time) domain.ResultsReport {
	total := len(s.questions)

	scores := make(map[string]int, len(order))
	for _, participantID := range order {
		for idx, letter := range answers[participantID] {
			if isCorrect(s.questions[idx], letter) {
				scores[participantID]++
			}
		}
	}

	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] > scores[ranked[j]]
	})

	leaderboard := make([]domain.LeaderboardEntry, 0, len(ranked))
	for i, participantID := range ranked {
		leaderboard = append(leaderboard, domain.LeaderboardEntry{
			Rank:          i + 1,
			ParticipantID: participantID,
			Score:         scores[participantID],
			Total:         total,
			Percentage:    percentage(scores[participantID], total),
		})
	}

	breakdown := make([]domain.QuestionResult, 0, total)
	for idx, q := range s.questions {
		result := domain.QuestionResult{
			Number:        idx + 1,
			Text:          q.Text,
			CorrectLetter: domain.NormalizeLetter(q.Answer),
			Explanation:   q.Explanation,
			Correct:       []string{},
			Incorrect:     []string{},
		}
		for _, participantID := range order {
			letter, ok := answers[participantID][idx]
			if !ok {
				continue
			}
			if isCorrect(q, letter) {
				result.Correct = append(result.Correct, participantID)
			} else {
				result.Incorrect = append(result.Incorrect, participantID)
			}
		}
		breakdown = append(breakdown, result)
	}

	return domain.ResultsReport{
		SessionID:   s.id,
		ChannelID:   s.channelID,
		Reason:      reason,
		Leaderboard: leaderboard,
		Questions:   breakdown,
		EndedAt:     endedAt,
	}
}

func isCorrect(q domain.Question, letter string) bool {
	return domain.NormalizeLetter(letter) == domain.NormalizeLetter(q.Answer)
}

func percentage(score, total int) int {
	if total == 0 {
		return 0
	}
	return score * 100 / total
}
