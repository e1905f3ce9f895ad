// Package store persists what callers of the engine choose to keep: saved
// workflows, prediction history and execution logs, all keyed by an opaque
// user identity.
// The engine itself never touches storage.
package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/cognifloe/control-plane/pkg/models"
)

// Store is the storage interface used by the HTTP layer.
type Store interface {
	WorkflowStore
	PredictionStore
	ExecutionStore

	// Ping checks if the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the store.
	Close() error
}

// ── Workflow Store ──────────────────────────────────────────

type WorkflowStore interface {
	SaveWorkflow(ctx context.Context, rec *models.WorkflowRecord) error
	GetWorkflow(ctx context.Context, userID, id string) (*models.WorkflowRecord, error)
	// ListWorkflows returns the user's workflows, newest first.
	ListWorkflows(ctx context.Context, userID string) ([]models.WorkflowRecord, error)
	DeleteWorkflow(ctx context.Context, userID, id string) error
}

// ── Prediction Store ────────────────────────────────────────

type PredictionStore interface {
	RecordPrediction(ctx context.Context, rec *models.PredictionRecord) error
	// ListPredictions returns the user's history, newest first. limit <= 0
	// means no limit.
	ListPredictions(ctx context.Context, userID string, limit int) ([]models.PredictionRecord, error)
	// ExpiredPredictions returns all records created before cutoff.
	ExpiredPredictions(ctx context.Context, cutoff time.Time) ([]models.PredictionRecord, error)
	// PurgePredictions deletes all records created before cutoff.
	PurgePredictions(ctx context.Context, cutoff time.Time) (int, error)
}

// ── Execution Store ─────────────────────────────────────────

type ExecutionStore interface {
	LogExecution(ctx context.Context, rec *models.ExecutionLog) error
	// ListExecutions returns the user's executions at or after since,
	// newest first.
	ListExecutions(ctx context.Context, userID string, since time.Time) ([]models.ExecutionLog, error)
	// PurgeExecutions deletes all executions before cutoff.
	PurgeExecutions(ctx context.Context, cutoff time.Time) (int, error)
}

// ErrNotFound is returned when a requested entity does not exist.
type ErrNotFound struct {
	Entity string
	Key    string
}

func (e *ErrNotFound) Error() string {
	return e.Entity + " not found: " + e.Key
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Open creates the configured backend. dataDir holds the snapshot or the
// database file; an empty dataDir disables persistence for the memory
// backend.
func Open(backend, dataDir string) (Store, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryStore(dataDir), nil
	case BackendSQLite:
		if dataDir == "" {
			return nil, fmt.Errorf("sqlite store requires a data directory")
		}
		return NewSQLiteStore(filepath.Join(dataDir, "cognifloe.db"))
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// MergeAgents builds a user's agent roster from saved workflows. Agents
// are deduplicated by template id; the first occurrence wins. Records are
// visited in the order given.
func MergeAgents(records []models.WorkflowRecord) []*models.AgentTemplate {
	seen := make(map[string]bool)
	out := []*models.AgentTemplate{}
	for _, rec := range records {
		for _, a := range rec.Analysis.SuggestedAgents {
			if a == nil || seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			out = append(out, a.Clone())
		}
	}
	return out
}

func sortWorkflows(recs []models.WorkflowRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].ID > recs[j].ID
	})
}

func sortPredictions(recs []models.PredictionRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].ID > recs[j].ID
	})
}

func sortExecutions(recs []models.ExecutionLog) {
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].ExecutedAt.Equal(recs[j].ExecutedAt) {
			return recs[i].ExecutedAt.After(recs[j].ExecutedAt)
		}
		return recs[i].ID > recs[j].ID
	})
}
