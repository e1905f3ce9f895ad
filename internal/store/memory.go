package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cognifloe/control-plane/pkg/models"
)

// snapshot is the JSON-serializable shape written to disk.
type snapshot struct {
	Workflows   map[string]*models.WorkflowRecord     `json:"workflows"`   // key: user:id
	Predictions map[string][]*models.PredictionRecord `json:"predictions"` // key: user, oldest first
	Executions  map[string][]*models.ExecutionLog     `json:"executions"`  // key: user, oldest first
}

// MemoryStore implements Store with in-memory maps.
type MemoryStore struct {
	mu          sync.RWMutex
	workflows   map[string]*models.WorkflowRecord
	predictions map[string][]*models.PredictionRecord
	executions  map[string][]*models.ExecutionLog

	// Persistence
	snapshotPath string        // empty = no persistence
	saveMu       sync.Mutex    // guards file writes
	saveCh       chan struct{} // debounce channel
	doneCh       chan struct{} // signals the save goroutine to stop
	debounce     time.Duration
}

// NewMemoryStore creates a new in-memory store. If dataDir is non-empty,
// data is persisted to data.json in that directory.
func NewMemoryStore(dataDir string) *MemoryStore {
	m := &MemoryStore{
		workflows:   make(map[string]*models.WorkflowRecord),
		predictions: make(map[string][]*models.PredictionRecord),
		executions:  make(map[string][]*models.ExecutionLog),
		saveCh:      make(chan struct{}, 1),
		doneCh:      make(chan struct{}),
		debounce:    500 * time.Millisecond,
	}

	if dataDir != "" {
		m.snapshotPath = filepath.Join(dataDir, "data.json")
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			log.Warn().Err(err).Str("dir", dataDir).Msg("Cannot create data dir, persistence disabled")
			m.snapshotPath = ""
		}
	}

	if m.snapshotPath != "" {
		m.loadSnapshot()
		go m.saveLoop()
	}

	log.Info().Str("snapshot", m.snapshotPath).Msg("Memory store configured")
	return m
}

func workflowKey(userID, id string) string { return userID + ":" + id }

// requestSave signals the background goroutine to persist data.
// Non-blocking: coalesces multiple rapid writes into one disk flush.
func (m *MemoryStore) requestSave() {
	if m.snapshotPath == "" {
		return
	}
	select {
	case m.saveCh <- struct{}{}:
	default:
	}
}

// saveLoop debounces save requests (at most one write per debounce window).
func (m *MemoryStore) saveLoop() {
	for {
		select {
		case <-m.doneCh:
			return
		case <-m.saveCh:
			select {
			case <-m.doneCh:
				return
			case <-time.After(m.debounce):
			}
			m.saveSnapshot()
		}
	}
}

// saveSnapshot persists all data to disk as JSON.
func (m *MemoryStore) saveSnapshot() {
	m.mu.RLock()
	data, err := json.MarshalIndent(snapshot{Workflows: m.workflows, Predictions: m.predictions, Executions: m.executions}, "", "  ")
	m.mu.RUnlock()
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal snapshot")
		return
	}

	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	tmp := m.snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		log.Error().Err(err).Str("path", tmp).Msg("Failed to write snapshot tmp")
		return
	}
	if err := os.Rename(tmp, m.snapshotPath); err != nil {
		log.Error().Err(err).Str("path", m.snapshotPath).Msg("Failed to rename snapshot")
		return
	}
	log.Debug().Str("path", m.snapshotPath).Msg("Snapshot saved")
}

// loadSnapshot reads data from disk on startup.
func (m *MemoryStore) loadSnapshot() {
	data, err := os.ReadFile(m.snapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", m.snapshotPath).Msg("No snapshot file found, starting fresh")
			return
		}
		log.Warn().Err(err).Str("path", m.snapshotPath).Msg("Failed to read snapshot")
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Error().Err(err).Str("path", m.snapshotPath).Msg("Failed to parse snapshot, starting fresh")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if snap.Workflows != nil {
		m.workflows = snap.Workflows
	}
	if snap.Predictions != nil {
		m.predictions = snap.Predictions
	}
	if snap.Executions != nil {
		m.executions = snap.Executions
	}

	log.Info().
		Int("workflows", len(m.workflows)).
		Int("users_with_predictions", len(m.predictions)).
		Str("path", m.snapshotPath).
		Msg("Snapshot loaded")
}

// ── Workflows ───────────────────────────────────────────────

func cloneWorkflow(r *models.WorkflowRecord) models.WorkflowRecord {
	c := *r
	c.Analysis.WorkflowSteps = append([]string(nil), r.Analysis.WorkflowSteps...)
	c.Analysis.SuggestedAgents = make([]*models.AgentTemplate, len(r.Analysis.SuggestedAgents))
	for i, a := range r.Analysis.SuggestedAgents {
		c.Analysis.SuggestedAgents[i] = a.Clone()
	}
	return c
}

func (m *MemoryStore) SaveWorkflow(_ context.Context, rec *models.WorkflowRecord) error {
	c := cloneWorkflow(rec)
	m.mu.Lock()
	m.workflows[workflowKey(rec.UserID, rec.ID)] = &c
	m.mu.Unlock()
	m.requestSave()
	return nil
}

func (m *MemoryStore) GetWorkflow(_ context.Context, userID, id string) (*models.WorkflowRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.workflows[workflowKey(userID, id)]
	if !ok {
		return nil, &ErrNotFound{Entity: "workflow", Key: id}
	}
	c := cloneWorkflow(r)
	return &c, nil
}

func (m *MemoryStore) ListWorkflows(_ context.Context, userID string) ([]models.WorkflowRecord, error) {
	m.mu.RLock()
	out := []models.WorkflowRecord{}
	for _, r := range m.workflows {
		if r.UserID == userID {
			out = append(out, cloneWorkflow(r))
		}
	}
	m.mu.RUnlock()
	sortWorkflows(out)
	return out, nil
}

func (m *MemoryStore) DeleteWorkflow(_ context.Context, userID, id string) error {
	key := workflowKey(userID, id)
	m.mu.Lock()
	if _, ok := m.workflows[key]; !ok {
		m.mu.Unlock()
		return &ErrNotFound{Entity: "workflow", Key: id}
	}
	delete(m.workflows, key)
	m.mu.Unlock()
	m.requestSave()
	return nil
}

// ── Predictions ─────────────────────────────────────────────

func clonePrediction(r *models.PredictionRecord) models.PredictionRecord {
	c := *r
	c.Result.Factors = make(map[string]float64, len(r.Result.Factors))
	for k, v := range r.Result.Factors {
		c.Result.Factors[k] = v
	}
	c.Result.RiskFactors = append([]models.RiskFactor{}, r.Result.RiskFactors...)
	return c
}

func (m *MemoryStore) RecordPrediction(_ context.Context, rec *models.PredictionRecord) error {
	c := clonePrediction(rec)
	m.mu.Lock()
	m.predictions[rec.UserID] = append(m.predictions[rec.UserID], &c)
	m.mu.Unlock()
	m.requestSave()
	return nil
}

func (m *MemoryStore) ListPredictions(_ context.Context, userID string, limit int) ([]models.PredictionRecord, error) {
	m.mu.RLock()
	out := make([]models.PredictionRecord, 0, len(m.predictions[userID]))
	for _, r := range m.predictions[userID] {
		out = append(out, clonePrediction(r))
	}
	m.mu.RUnlock()

	sortPredictions(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) ExpiredPredictions(_ context.Context, cutoff time.Time) ([]models.PredictionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.PredictionRecord{}
	for _, recs := range m.predictions {
		for _, r := range recs {
			if r.CreatedAt.Before(cutoff) {
				out = append(out, clonePrediction(r))
			}
		}
	}
	return out, nil
}

func (m *MemoryStore) PurgePredictions(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	evicted := 0
	for user, recs := range m.predictions {
		kept := recs[:0]
		for _, r := range recs {
			if r.CreatedAt.Before(cutoff) {
				evicted++
				continue
			}
			kept = append(kept, r)
		}
		if len(kept) == 0 {
			delete(m.predictions, user)
		} else {
			m.predictions[user] = kept
		}
	}
	m.mu.Unlock()

	if evicted > 0 {
		m.requestSave()
	}
	return evicted, nil
}

// ── Executions ──────────────────────────────────────────────

func (m *MemoryStore) LogExecution(_ context.Context, rec *models.ExecutionLog) error {
	c := *rec
	m.mu.Lock()
	m.executions[rec.UserID] = append(m.executions[rec.UserID], &c)
	m.mu.Unlock()
	m.requestSave()
	return nil
}

func (m *MemoryStore) ListExecutions(_ context.Context, userID string, since time.Time) ([]models.ExecutionLog, error) {
	m.mu.RLock()
	out := []models.ExecutionLog{}
	for _, r := range m.executions[userID] {
		if !r.ExecutedAt.Before(since) {
			out = append(out, *r)
		}
	}
	m.mu.RUnlock()
	sortExecutions(out)
	return out, nil
}

func (m *MemoryStore) PurgeExecutions(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	evicted := 0
	for user, recs := range m.executions {
		kept := recs[:0]
		for _, r := range recs {
			if r.ExecutedAt.Before(cutoff) {
				evicted++
				continue
			}
			kept = append(kept, r)
		}
		if len(kept) == 0 {
			delete(m.executions, user)
		} else {
			m.executions[user] = kept
		}
	}
	m.mu.Unlock()

	if evicted > 0 {
		m.requestSave()
	}
	return evicted, nil
}

func (m *MemoryStore) Ping(_ context.Context) error { return nil }

// Close stops the save goroutine and forces a final snapshot write.
// Safe to call multiple times (second call is a no-op).
func (m *MemoryStore) Close() error {
	select {
	case <-m.doneCh:
		return nil
	default:
		close(m.doneCh)
	}

	if m.snapshotPath != "" {
		log.Info().Msg("Flushing final snapshot before shutdown...")
		m.saveSnapshot()
	}

	log.Info().Msg("Memory store closed")
	return nil
}
