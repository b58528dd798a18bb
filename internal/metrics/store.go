package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lunch-menu-planner/internal/shared"
)

// ExecutionMetric records one planning attempt.
type ExecutionMetric struct {
	Proposer         string
	Model            string
	Attempt          int
	Outcome          string
	Rule             string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Timestamp        time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m ExecutionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO execution_metrics
			(proposer, model, attempt, outcome, rule, prompt_tokens, completion_tokens, latency_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Proposer, m.Model, m.Attempt, m.Outcome, m.Rule,
		m.PromptTokens, m.CompletionTokens, m.LatencyMS, ts.UTC().Format(time.DateTime),
	)
	if err != nil {
		return fmt.Errorf("failed to record execution metric: %w", err)
	}
	return nil
}

// RecordAttempt records metrics directly from a planning attempt report.
func (s *Store) RecordAttempt(ctx context.Context, r shared.AttemptReport) error {
	return s.Record(ctx, FromReport(r))
}

// FromReport converts an attempt report to an ExecutionMetric.
func FromReport(r shared.AttemptReport) ExecutionMetric {
	return ExecutionMetric{
		Proposer:         r.Meta.AgentName,
		Model:            r.Meta.Usage.Model,
		Attempt:          r.Attempt,
		Outcome:          r.Outcome,
		Rule:             r.Rule,
		PromptTokens:     r.Meta.Usage.PromptTokens,
		CompletionTokens: r.Meta.Usage.CompletionTokens,
		LatencyMS:        r.Meta.Latency.Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}
}

// DailyUsage represents attempt and token totals for a single day.
type DailyUsage struct {
	Date            string
	Attempts        int
	Accepted        int
	Violations      int
	TotalPrompt     int
	TotalCompletion int
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Format(time.DateTime)
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(timestamp, 1, 10) AS day,
			COUNT(*),
			SUM(CASE WHEN outcome = 'accepted' THEN 1 ELSE 0 END),
			SUM(CASE WHEN outcome = 'violation' THEN 1 ELSE 0 END),
			SUM(prompt_tokens),
			SUM(completion_tokens)
		FROM execution_metrics
		WHERE timestamp >= ?
		GROUP BY day
		ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.Attempts, &u.Accepted, &u.Violations, &u.TotalPrompt, &u.TotalCompletion); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// ViolationCount is how often a rule rejected a proposal.
type ViolationCount struct {
	Rule  string
	Count int
}

// TopViolations returns the rules that rejected proposals most often.
func (s *Store) TopViolations(ctx context.Context, limit int) ([]ViolationCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule, COUNT(*) AS n
		FROM execution_metrics
		WHERE outcome = 'violation' AND rule != ''
		GROUP BY rule
		ORDER BY n DESC, rule
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query violations: %w", err)
	}
	defer rows.Close()

	var out []ViolationCount
	for rows.Next() {
		var v ViolationCount
		if err := rows.Scan(&v.Rule, &v.Count); err != nil {
			return nil, fmt.Errorf("failed to scan violation count: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(time.DateTime)
	res, err := s.db.ExecContext(ctx, `DELETE FROM execution_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up execution metrics: %w", err)
	}
	return res.RowsAffected()
}
