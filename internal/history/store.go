// Package history persists validation runs and their findings to
// PostgreSQL. History is an optional convenience layer for the shells:
// when no database is configured the engine runs exactly the same, the
// results are just not retained.
package history

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/itaxotools/abcd-validator/internal/core"
)

//go:embed schema.sql
var schemaSQL string

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store reads and writes validation run history.
type Store struct {
	db DBTX
}

// NewStore creates a store over the given database handle.
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the history tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure history schema: %w", err)
	}
	return nil
}

// Run is one stored validation run.
type Run struct {
	ID        uuid.UUID `json:"id"`
	StartedAt time.Time `json:"startedAt"`
	Errors    int       `json:"errors"`
	Warnings  int       `json:"warnings"`
	Valid     bool      `json:"valid"`
}

// SaveRun stores a report and returns the new run's identifier.
// The findings are written in report order so reading them back
// reproduces the report exactly.
func (s *Store) SaveRun(ctx context.Context, report *core.Report) (uuid.UUID, error) {
	runID := uuid.New()

	_, err := s.db.Exec(ctx, `
		INSERT INTO validation_runs (id, started_at, errors, warnings, valid)
		VALUES ($1, $2, $3, $4, $5)`,
		runID, time.Now().UTC(), report.Summary.Errors, report.Summary.Warnings, report.Valid,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}

	for pos, f := range report.Findings {
		line := pgtype.Int4{}
		if f.Line > 0 {
			line = pgtype.Int4{Int32: int32(f.Line), Valid: true}
		}
		column := pgtype.Text{}
		if f.Column != "" {
			column = pgtype.Text{String: f.Column, Valid: true}
		}

		_, err := s.db.Exec(ctx, `
			INSERT INTO validation_findings
				(run_id, position, severity, table_role, line, column_name, code, message)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			runID, pos, string(f.Severity), string(f.Table), line, column, f.Code, f.Message,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert finding %d: %w", pos, err)
		}
	}

	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, started_at, errors, warnings, valid
		FROM validation_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Errors, &r.Warnings, &r.Valid); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one stored run.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	var r Run
	err := s.db.QueryRow(ctx, `
		SELECT id, started_at, errors, warnings, valid
		FROM validation_runs
		WHERE id = $1`, id,
	).Scan(&r.ID, &r.StartedAt, &r.Errors, &r.Warnings, &r.Valid)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return r, nil
}

// GetRunFindings returns the findings of a stored run in report order.
func (s *Store) GetRunFindings(ctx context.Context, id uuid.UUID) ([]core.Finding, error) {
	rows, err := s.db.Query(ctx, `
		SELECT severity, table_role, line, column_name, code, message
		FROM validation_findings
		WHERE run_id = $1
		ORDER BY position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("get findings for %s: %w", id, err)
	}
	defer rows.Close()

	var findings []core.Finding
	for rows.Next() {
		var (
			severity, tableRole, code, message string
			line                               pgtype.Int4
			column                             pgtype.Text
		)
		if err := rows.Scan(&severity, &tableRole, &line, &column, &code, &message); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		f := core.Finding{
			Severity: core.Severity(severity),
			Table:    core.TableRole(tableRole),
			Code:     code,
			Message:  message,
		}
		if line.Valid {
			f.Line = int(line.Int32)
		}
		if column.Valid {
			f.Column = column.String
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}
