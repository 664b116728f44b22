// Package store persists the domain records backing context aggregation:
// use cases with their assessments, guardrail rules, and prior evaluation
// results. SQLite via the pure-Go driver, no cgo.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"aegis/internal/logging"
	"aegis/internal/workers"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: record not found")

const schema = `
CREATE TABLE IF NOT EXISTS use_cases (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	industry    TEXT NOT NULL DEFAULT '',
	audience    TEXT NOT NULL DEFAULT '',
	criticality TEXT NOT NULL DEFAULT '',
	assessment  TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS rules (
	id          TEXT PRIMARY KEY,
	use_case_id TEXT NOT NULL REFERENCES use_cases(id),
	category    TEXT NOT NULL DEFAULT '',
	severity    TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS evaluations (
	id           TEXT PRIMARY KEY,
	use_case_id  TEXT NOT NULL REFERENCES use_cases(id),
	completed_at TIMESTAMP NOT NULL,
	score        REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_rules_use_case ON rules(use_case_id);
CREATE INDEX IF NOT EXISTS idx_evaluations_use_case ON evaluations(use_case_id);
`

// Store wraps the SQLite database holding domain records.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying store schema: %w", err)
	}
	logging.Store("opened %s", path)
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveUseCase upserts a use case and its assessment.
func (s *Store) SaveUseCase(ctx context.Context, uc workers.UseCase, a workers.Assessment) error {
	assessment, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding assessment: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO use_cases (id, name, description, industry, audience, criticality, assessment)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			industry = excluded.industry,
			audience = excluded.audience,
			criticality = excluded.criticality,
			assessment = excluded.assessment`,
		uc.ID, uc.Name, uc.Description, uc.Industry, uc.Audience, uc.Criticality, string(assessment))
	if err != nil {
		return fmt.Errorf("saving use case %s: %w", uc.ID, err)
	}
	return nil
}

// GetUseCase loads a use case and its assessment by id.
func (s *Store) GetUseCase(ctx context.Context, id string) (workers.UseCase, workers.Assessment, error) {
	var uc workers.UseCase
	var a workers.Assessment
	var assessment string

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, industry, audience, criticality, assessment
		FROM use_cases WHERE id = ?`, id)
	err := row.Scan(&uc.ID, &uc.Name, &uc.Description, &uc.Industry, &uc.Audience, &uc.Criticality, &assessment)
	if errors.Is(err, sql.ErrNoRows) {
		return uc, a, fmt.Errorf("use case %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return uc, a, fmt.Errorf("loading use case %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(assessment), &a); err != nil {
		return uc, a, fmt.Errorf("decoding assessment for %s: %w", id, err)
	}
	return uc, a, nil
}

// SaveRule upserts a guardrail rule for a use case.
func (s *Store) SaveRule(ctx context.Context, useCaseID string, r workers.Rule) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rules (id, use_case_id, category, severity, description)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			category = excluded.category,
			severity = excluded.severity,
			description = excluded.description`,
		r.ID, useCaseID, r.Category, r.Severity, r.Description)
	if err != nil {
		return fmt.Errorf("saving rule %s: %w", r.ID, err)
	}
	return nil
}

// RulesFor lists the rules recorded for a use case, ordered by id.
func (s *Store) RulesFor(ctx context.Context, useCaseID string) ([]workers.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, severity, description
		FROM rules WHERE use_case_id = ? ORDER BY id`, useCaseID)
	if err != nil {
		return nil, fmt.Errorf("listing rules for %s: %w", useCaseID, err)
	}
	defer rows.Close()

	var out []workers.Rule
	for rows.Next() {
		var r workers.Rule
		if err := rows.Scan(&r.ID, &r.Category, &r.Severity, &r.Description); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecordEvaluation stores the outcome of one evaluation run.
func (s *Store) RecordEvaluation(ctx context.Context, useCaseID string, rec workers.EvaluationRecord) error {
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO evaluations (id, use_case_id, completed_at, score)
		VALUES (?, ?, ?, ?)`,
		rec.ID, useCaseID, rec.CompletedAt, rec.Score)
	if err != nil {
		return fmt.Errorf("recording evaluation %s: %w", rec.ID, err)
	}
	return nil
}

// EvaluationsFor lists prior evaluations for a use case, newest first.
func (s *Store) EvaluationsFor(ctx context.Context, useCaseID string) ([]workers.EvaluationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, completed_at, score
		FROM evaluations WHERE use_case_id = ? ORDER BY completed_at DESC`, useCaseID)
	if err != nil {
		return nil, fmt.Errorf("listing evaluations for %s: %w", useCaseID, err)
	}
	defer rows.Close()

	var out []workers.EvaluationRecord
	for rows.Next() {
		var rec workers.EvaluationRecord
		if err := rows.Scan(&rec.ID, &rec.CompletedAt, &rec.Score); err != nil {
			return nil, fmt.Errorf("scanning evaluation: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
