package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognifloe/control-plane/internal/store"
	"github.com/cognifloe/control-plane/pkg/models"
)

var base = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

// backends returns a fresh store of every kind, each in its own temp dir.
func backends(t *testing.T) map[string]store.Store {
	t.Helper()

	mem := store.NewMemoryStore(t.TempDir())
	t.Cleanup(func() { mem.Close() })

	sq, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { sq.Close() })

	return map[string]store.Store{"memory": mem, "sqlite": sq}
}

func workflowRecord(user, id string, at time.Time, agentIDs ...string) *models.WorkflowRecord {
	agents := make([]*models.AgentTemplate, len(agentIDs))
	for i, a := range agentIDs {
		agents[i] = &models.AgentTemplate{ID: a, Role: a + " role", Capabilities: []string{"x"}}
	}
	return &models.WorkflowRecord{
		ID:          id,
		UserID:      user,
		Name:        "wf " + id,
		Description: "desc " + id,
		Source:      "local",
		Analysis: models.AnalysisResult{
			SuggestedAgents: agents,
			WorkflowSteps:   []string{"a", "b"},
		},
		CreatedAt: at,
	}
}

func predictionRecord(user, id string, at time.Time) *models.PredictionRecord {
	return &models.PredictionRecord{
		ID:       id,
		UserID:   user,
		Scenario: models.PredictionScenario{Description: "d", Volume: 10, ComplexityTier: models.TierLow},
		Result: models.PredictionResult{
			SuccessProbability: 72,
			Factors:            map[string]float64{"agentImpact": -0.3},
			RiskFactors:        []models.RiskFactor{},
			Source:             "local",
		},
		CreatedAt: at,
	}
}

func TestWorkflowCRUD(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := s.SaveWorkflow(ctx, workflowRecord("alice", "w1", base, "email-processor")); err != nil {
				t.Fatalf("SaveWorkflow() error = %v", err)
			}
			if err := s.SaveWorkflow(ctx, workflowRecord("alice", "w2", base.Add(time.Hour), "reporting")); err != nil {
				t.Fatalf("SaveWorkflow() error = %v", err)
			}
			if err := s.SaveWorkflow(ctx, workflowRecord("bob", "w3", base)); err != nil {
				t.Fatalf("SaveWorkflow() error = %v", err)
			}

			got, err := s.GetWorkflow(ctx, "alice", "w1")
			if err != nil {
				t.Fatalf("GetWorkflow() error = %v", err)
			}
			if got.Name != "wf w1" || !got.CreatedAt.Equal(base) {
				t.Errorf("GetWorkflow() = %+v", got)
			}
			if len(got.Analysis.SuggestedAgents) != 1 || got.Analysis.SuggestedAgents[0].ID != "email-processor" {
				t.Errorf("GetWorkflow().Analysis.SuggestedAgents = %+v", got.Analysis.SuggestedAgents)
			}

			list, err := s.ListWorkflows(ctx, "alice")
			if err != nil {
				t.Fatalf("ListWorkflows() error = %v", err)
			}
			if len(list) != 2 || list[0].ID != "w2" || list[1].ID != "w1" {
				t.Errorf("ListWorkflows() order = %v, want [w2 w1]", ids(list))
			}

			if _, err := s.GetWorkflow(ctx, "bob", "w1"); !isNotFound(err) {
				t.Errorf("GetWorkflow() across users error = %v, want ErrNotFound", err)
			}

			if err := s.DeleteWorkflow(ctx, "alice", "w1"); err != nil {
				t.Fatalf("DeleteWorkflow() error = %v", err)
			}
			if err := s.DeleteWorkflow(ctx, "alice", "w1"); !isNotFound(err) {
				t.Errorf("second DeleteWorkflow() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestWorkflowUpsert(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := workflowRecord("alice", "w1", base)
			_ = s.SaveWorkflow(ctx, rec)
			rec.Name = "renamed"
			if err := s.SaveWorkflow(ctx, rec); err != nil {
				t.Fatalf("SaveWorkflow() error = %v", err)
			}
			list, _ := s.ListWorkflows(ctx, "alice")
			if len(list) != 1 || list[0].Name != "renamed" {
				t.Errorf("after upsert ListWorkflows() = %+v", list)
			}
		})
	}
}

func TestPredictionHistoryAndPurge(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i, id := range []string{"p1", "p2", "p3"} {
				if err := s.RecordPrediction(ctx, predictionRecord("alice", id, base.Add(time.Duration(i)*time.Hour))); err != nil {
					t.Fatalf("RecordPrediction() error = %v", err)
				}
			}
			_ = s.RecordPrediction(ctx, predictionRecord("bob", "p4", base))

			list, err := s.ListPredictions(ctx, "alice", 0)
			if err != nil {
				t.Fatalf("ListPredictions() error = %v", err)
			}
			if len(list) != 3 || list[0].ID != "p3" {
				t.Fatalf("ListPredictions() = %d records, first %q", len(list), list[0].ID)
			}
			if list[0].Result.Factors["agentImpact"] != -0.3 {
				t.Errorf("Result.Factors = %v", list[0].Result.Factors)
			}

			limited, _ := s.ListPredictions(ctx, "alice", 2)
			if len(limited) != 2 {
				t.Errorf("ListPredictions(limit=2) len = %d", len(limited))
			}

			cutoff := base.Add(90 * time.Minute)
			expired, err := s.ExpiredPredictions(ctx, cutoff)
			if err != nil {
				t.Fatalf("ExpiredPredictions() error = %v", err)
			}
			if len(expired) != 3 {
				t.Errorf("ExpiredPredictions() len = %d, want 3", len(expired))
			}

			n, err := s.PurgePredictions(ctx, cutoff)
			if err != nil {
				t.Fatalf("PurgePredictions() error = %v", err)
			}
			if n != 3 {
				t.Errorf("PurgePredictions() = %d, want 3", n)
			}
			remaining, _ := s.ListPredictions(ctx, "alice", 0)
			if len(remaining) != 1 || remaining[0].ID != "p3" {
				t.Errorf("remaining = %+v", remaining)
			}
		})
	}
}

func TestMemoryStore_SnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := store.NewMemoryStore(dir)
	_ = s.SaveWorkflow(ctx, workflowRecord("alice", "w1", base, "crm-sync"))
	_ = s.RecordPrediction(ctx, predictionRecord("alice", "p1", base))
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened := store.NewMemoryStore(dir)
	defer reopened.Close()

	got, err := reopened.GetWorkflow(ctx, "alice", "w1")
	if err != nil {
		t.Fatalf("GetWorkflow() after reload error = %v", err)
	}
	if got.Analysis.SuggestedAgents[0].ID != "crm-sync" {
		t.Errorf("reloaded agents = %+v", got.Analysis.SuggestedAgents)
	}
	preds, _ := reopened.ListPredictions(ctx, "alice", 0)
	if len(preds) != 1 {
		t.Errorf("reloaded predictions = %d, want 1", len(preds))
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := store.NewMemoryStore("")
	defer s.Close()
	ctx := context.Background()

	rec := workflowRecord("alice", "w1", base, "email-processor")
	_ = s.SaveWorkflow(ctx, rec)
	rec.Analysis.SuggestedAgents[0].Role = "mutated"

	got, _ := s.GetWorkflow(ctx, "alice", "w1")
	if got.Analysis.SuggestedAgents[0].Role == "mutated" {
		t.Error("store shares agent pointers with the caller")
	}
}

func TestMergeAgents(t *testing.T) {
	records := []models.WorkflowRecord{
		*workflowRecord("alice", "w2", base, "email-processor", "orchestrator"),
		*workflowRecord("alice", "w1", base, "reporting", "email-processor"),
	}
	records[1].Analysis.SuggestedAgents[1].Role = "older copy"

	got := store.MergeAgents(records)
	want := []string{"email-processor", "orchestrator", "reporting"}
	if len(got) != len(want) {
		t.Fatalf("MergeAgents() len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("MergeAgents()[%d] = %q, want %q", i, got[i].ID, id)
		}
	}
	if got[0].Role == "older copy" {
		t.Error("MergeAgents() kept a later duplicate instead of the first occurrence")
	}
	if len(store.MergeAgents(nil)) != 0 {
		t.Error("MergeAgents(nil) should be empty")
	}
}

func TestOpen(t *testing.T) {
	s, err := store.Open(store.BackendMemory, "")
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	s.Close()

	if _, err := store.Open("postgres", t.TempDir()); err == nil {
		t.Error("Open(postgres) error = nil, want error")
	}
	if _, err := store.Open(store.BackendSQLite, ""); err == nil {
		t.Error("Open(sqlite, \"\") error = nil, want error")
	}
}

func ids(recs []models.WorkflowRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func isNotFound(err error) bool {
	var nf *store.ErrNotFound
	return errors.As(err, &nf)
}

func executionLog(user, id string, at time.Time, success bool) *models.ExecutionLog {
	return &models.ExecutionLog{
		ID:         id,
		UserID:     user,
		WorkflowID: "w1",
		AgentID:    "email-processor",
		AgentRole:  "Email Processing Agent",
		LatencyMs:  120,
		Success:    success,
		CostUSD:    0.004,
		ExecutedAt: at,
	}
}

func TestExecutionLogAndPurge(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i, id := range []string{"e1", "e2", "e3"} {
				if err := s.LogExecution(ctx, executionLog("alice", id, base.Add(time.Duration(i)*time.Hour), i != 1)); err != nil {
					t.Fatalf("LogExecution() error = %v", err)
				}
			}
			_ = s.LogExecution(ctx, executionLog("bob", "e4", base, true))

			list, err := s.ListExecutions(ctx, "alice", base.Add(30*time.Minute))
			if err != nil {
				t.Fatalf("ListExecutions() error = %v", err)
			}
			if len(list) != 2 || list[0].ID != "e3" || list[1].ID != "e2" {
				t.Fatalf("ListExecutions() = %+v, want [e3 e2]", list)
			}
			if list[1].Success || list[1].LatencyMs != 120 || list[1].CostUSD != 0.004 || list[1].AgentRole != "Email Processing Agent" {
				t.Errorf("ListExecutions()[1] = %+v", list[1])
			}

			n, err := s.PurgeExecutions(ctx, base.Add(90*time.Minute))
			if err != nil {
				t.Fatalf("PurgeExecutions() error = %v", err)
			}
			if n != 3 {
				t.Errorf("PurgeExecutions() = %d, want 3", n)
			}
			remaining, _ := s.ListExecutions(ctx, "alice", time.Time{})
			if len(remaining) != 1 || remaining[0].ID != "e3" {
				t.Errorf("remaining = %+v", remaining)
			}
		})
	}
}

func TestMemoryStore_ExecutionSnapshot(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := store.NewMemoryStore(dir)
	_ = s.LogExecution(ctx, executionLog("alice", "e1", base, true))
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened := store.NewMemoryStore(dir)
	defer reopened.Close()
	got, _ := reopened.ListExecutions(ctx, "alice", time.Time{})
	if len(got) != 1 || got[0].ID != "e1" {
		t.Errorf("reloaded executions = %+v, want [e1]", got)
	}
}
