package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"darkstar-quiz-service/internal/domain"
)

func TestResultsArchiveServesPublishedReport(t *testing.T) {
	archive := NewResultsArchive(nil, time.Minute)

	if _, err := archive.LastResults(context.Background(), "c1"); !errors.Is(err, domain.ErrNoResults) {
		t.Fatalf("expected no results, got %v", err)
	}
	if err := archive.Publish(context.Background(), sampleReport("c1", "s1")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	got, err := archive.LastResults(context.Background(), "c1")
	if err != nil {
		t.Fatalf("last results: %v", err)
	}
	if got.SessionID != "s1" {
		t.Fatalf("expected s1, got %s", got.SessionID)
	}
}

func TestResultsArchiveFallsBackToLoader(t *testing.T) {
	loader := &countingLoader{reports: map[string]domain.ResultsReport{"c1": sampleReport("c1", "s-old")}}
	archive := NewResultsArchive(loader, time.Minute)

	for i := 0; i < 2; i++ {
		got, err := archive.LastResults(context.Background(), "c1")
		if err != nil {
			t.Fatalf("last results: %v", err)
		}
		if got.SessionID != "s-old" {
			t.Fatalf("expected loaded report, got %s", got.SessionID)
		}
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}
}

func TestResultsArchiveExpires(t *testing.T) {
	now := time.Now()
	archive := NewResultsArchive(nil, time.Minute)
	archive.clock = func() time.Time { return now }

	_ = archive.Publish(context.Background(), sampleReport("c1", "s1"))
	now = now.Add(2 * time.Minute)
	if _, err := archive.LastResults(context.Background(), "c1"); !errors.Is(err, domain.ErrNoResults) {
		t.Fatalf("expected expired report, got %v", err)
	}
}

type countingLoader struct {
	reports map[string]domain.ResultsReport
	calls   int
}

func (l *countingLoader) LoadLastResults(_ context.Context, channelID string) (domain.ResultsReport, error) {
	l.calls++
	if r, ok := l.reports[channelID]; ok {
		return r, nil
	}
	return domain.ResultsReport{}, domain.ErrNoResults
}

func sampleReport(channelID, sessionID string) domain.ResultsReport {
	return domain.ResultsReport{
		SessionID: sessionID,
		ChannelID: channelID,
		Reason:    domain.EndManual,
		Leaderboard: []domain.LeaderboardEntry{
			{Rank: 1, ParticipantID: "p1", Score: 1, Total: 1, Percentage: 100},
		},
		EndedAt: time.Now(),
	}
}
