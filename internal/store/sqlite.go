package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/cognifloe/control-plane/pkg/models"
)

//go:embed migrations/001_init.sql
var migrationV1 string

//go:embed migrations/002_executions.sql
var migrationV2 string

// Fixed-width UTC layout so that created_at sorts and compares as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements Store on a single SQLite file.
type SQLiteStore struct {
	path   string
	db     *sql.DB // write connection
	readDB *sql.DB // read-only connection
}

// NewSQLiteStore opens (creating if needed) the database at path and runs
// pending migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening write database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{path: path, db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	readDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&mode=ro&_pragma=busy_timeout(1000)")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening read database: %w", err)
	}
	readDB.SetMaxOpenConns(10)
	readDB.SetMaxIdleConns(5)
	readDB.SetConnMaxLifetime(5 * time.Minute)
	s.readDB = readDB

	log.Info().Str("path", path).Msg("SQLite store configured")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("checking schema version: %w", err)
	}

	for i, migration := range []string{migrationV1, migrationV2} {
		version := i + 1
		if version <= current {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration transaction: %w", err)
		}
		for _, stmt := range splitStatements(migration) {
			if _, err := tx.Exec(stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("executing migration v%d: %w", version, err)
			}
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
			version, time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration v%d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration v%d: %w", version, err)
		}
		log.Debug().Int("version", version).Msg("Applied store migration")
	}
	return nil
}

// splitStatements splits a SQL script into statements, dropping comment lines.
func splitStatements(script string) []string {
	var statements []string
	for _, stmt := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" && !strings.HasPrefix(trimmed, "--") {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) { return time.Parse(timeLayout, s) }

// ── Workflows ───────────────────────────────────────────────

func (s *SQLiteStore) SaveWorkflow(ctx context.Context, rec *models.WorkflowRecord) error {
	analysis, err := json.Marshal(rec.Analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflows (id, user_id, name, description, source, analysis, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			source = excluded.source,
			analysis = excluded.analysis,
			created_at = excluded.created_at
	`, rec.ID, rec.UserID, rec.Name, rec.Description, rec.Source, string(analysis), formatTime(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("save workflow %s: %w", rec.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.WorkflowRecord, error) {
	var (
		rec       models.WorkflowRecord
		analysis  string
		createdAt string
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Name, &rec.Description, &rec.Source, &analysis, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(analysis), &rec.Analysis); err != nil {
		return nil, fmt.Errorf("decode analysis of %s: %w", rec.ID, err)
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at of %s: %w", rec.ID, err)
	}
	rec.CreatedAt = t
	return &rec, nil
}

const workflowColumns = "id, user_id, name, description, source, analysis, created_at"

func (s *SQLiteStore) GetWorkflow(ctx context.Context, userID, id string) (*models.WorkflowRecord, error) {
	row := s.readDB.QueryRowContext(ctx,
		"SELECT "+workflowColumns+" FROM workflows WHERE user_id = ? AND id = ?", userID, id)
	rec, err := scanWorkflow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &ErrNotFound{Entity: "workflow", Key: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow %s: %w", id, err)
	}
	return rec, nil
}

func (s *SQLiteStore) ListWorkflows(ctx context.Context, userID string) ([]models.WorkflowRecord, error) {
	rows, err := s.readDB.QueryContext(ctx,
		"SELECT "+workflowColumns+" FROM workflows WHERE user_id = ? ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	out := []models.WorkflowRecord{}
	for rows.Next() {
		rec, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("list workflows: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteWorkflow(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM workflows WHERE user_id = ? AND id = ?", userID, id)
	if err != nil {
		return fmt.Errorf("delete workflow %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ErrNotFound{Entity: "workflow", Key: id}
	}
	return nil
}

// ── Predictions ─────────────────────────────────────────────

func (s *SQLiteStore) RecordPrediction(ctx context.Context, rec *models.PredictionRecord) error {
	scenario, err := json.Marshal(rec.Scenario)
	if err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}
	result, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO predictions (id, user_id, scenario, result, created_at) VALUES (?, ?, ?, ?, ?)",
		rec.ID, rec.UserID, string(scenario), string(result), formatTime(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("record prediction %s: %w", rec.ID, err)
	}
	return nil
}

func scanPrediction(row rowScanner) (*models.PredictionRecord, error) {
	var (
		rec                         models.PredictionRecord
		scenario, result, createdAt string
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &scenario, &result, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(scenario), &rec.Scenario); err != nil {
		return nil, fmt.Errorf("decode scenario of %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(result), &rec.Result); err != nil {
		return nil, fmt.Errorf("decode result of %s: %w", rec.ID, err)
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at of %s: %w", rec.ID, err)
	}
	rec.CreatedAt = t
	return &rec, nil
}

func (s *SQLiteStore) queryPredictions(ctx context.Context, query string, args ...any) ([]models.PredictionRecord, error) {
	rows, err := s.readDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PredictionRecord{}
	for rows.Next() {
		rec, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListPredictions(ctx context.Context, userID string, limit int) ([]models.PredictionRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	out, err := s.queryPredictions(ctx, `
		SELECT id, user_id, scenario, result, created_at FROM predictions
		WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) ExpiredPredictions(ctx context.Context, cutoff time.Time) ([]models.PredictionRecord, error) {
	out, err := s.queryPredictions(ctx, `
		SELECT id, user_id, scenario, result, created_at FROM predictions
		WHERE created_at < ? ORDER BY created_at`, formatTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("expired predictions: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) PurgePredictions(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM predictions WHERE created_at < ?", formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("purge predictions: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// ── Executions ──────────────────────────────────────────────

func (s *SQLiteStore) LogExecution(ctx context.Context, rec *models.ExecutionLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO executions (id, user_id, workflow_id, agent_id, agent_role, latency_ms, success, cost_usd, error, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.WorkflowID, rec.AgentID, rec.AgentRole,
		rec.LatencyMs, rec.Success, rec.CostUSD, rec.Error, formatTime(rec.ExecutedAt))
	if err != nil {
		return fmt.Errorf("log execution %s: %w", rec.ID, err)
	}
	return nil
}

func (s *SQLiteStore) ListExecutions(ctx context.Context, userID string, since time.Time) ([]models.ExecutionLog, error) {
	rows, err := s.readDB.QueryContext(ctx, `
		SELECT id, user_id, workflow_id, agent_id, agent_role, latency_ms, success, cost_usd, error, executed_at
		FROM executions WHERE user_id = ? AND executed_at >= ?
		ORDER BY executed_at DESC, id DESC`, userID, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	out := []models.ExecutionLog{}
	for rows.Next() {
		var (
			rec        models.ExecutionLog
			executedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.WorkflowID, &rec.AgentID, &rec.AgentRole,
			&rec.LatencyMs, &rec.Success, &rec.CostUSD, &rec.Error, &executedAt); err != nil {
			return nil, fmt.Errorf("list executions: %w", err)
		}
		t, err := parseTime(executedAt)
		if err != nil {
			return nil, fmt.Errorf("parse executed_at of %s: %w", rec.ID, err)
		}
		rec.ExecutedAt = t
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) PurgeExecutions(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM executions WHERE executed_at < ?", formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("purge executions: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes both database connections.
func (s *SQLiteStore) Close() error {
	var errs []error
	if s.readDB != nil {
		if err := s.readDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing read db: %w", err))
		}
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing write db: %w", err))
	}
	return errors.Join(errs...)
}
