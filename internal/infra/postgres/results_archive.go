package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"darkstar-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultsArchive keeps every finished report as JSONB in quiz_results.
type ResultsArchive struct {
	pool *pgxpool.Pool
}

func NewResultsArchive(pool *pgxpool.Pool) *ResultsArchive {
	return &ResultsArchive{pool: pool}
}

// Publish implements app.ResultsSink.
func (a *ResultsArchive) Publish(ctx context.Context, report domain.ResultsReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	_, err = a.pool.Exec(ctx,
		`INSERT INTO quiz_results (session_id, channel_id, reason, ended_at, report)
		 VALUES ($1, $2, $3, $4, $5::jsonb)
		 ON CONFLICT (session_id) DO NOTHING`,
		report.SessionID, report.ChannelID, string(report.Reason), report.EndedAt, string(data))
	if err != nil {
		return fmt.Errorf("archive results: %w", err)
	}
	return nil
}

// LoadLastResults returns the most recent report for channelID.
func (a *ResultsArchive) LoadLastResults(ctx context.Context, channelID string) (domain.ResultsReport, error) {
	var raw []byte
	err := a.pool.QueryRow(ctx,
		`SELECT report FROM quiz_results WHERE channel_id=$1 ORDER BY ended_at DESC LIMIT 1`,
		channelID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ResultsReport{}, domain.ErrNoResults
	}
	if err != nil {
		return domain.ResultsReport{}, fmt.Errorf("load results: %w", err)
	}
	var report domain.ResultsReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return domain.ResultsReport{}, fmt.Errorf("unmarshal results: %w", err)
	}
	return report, nil
}
