package executions_test

import (
	"testing"
	"time"

	"github.com/cognifloe/control-plane/internal/executions"
	"github.com/cognifloe/control-plane/pkg/models"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		window  time.Duration
		wantErr bool
	}{
		{"", "7d", 7 * 24 * time.Hour, false},
		{"24h", "24h", 24 * time.Hour, false},
		{"30d", "30d", 30 * 24 * time.Hour, false},
		{"90d", "90d", 90 * 24 * time.Hour, false},
		{"1y", "", 0, true},
	}
	for _, tt := range tests {
		name, window, err := executions.ParseRange(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRange(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if name != tt.want || window != tt.window {
			t.Errorf("ParseRange(%q) = %q, %v; want %q, %v", tt.in, name, window, tt.want, tt.window)
		}
	}
}

func TestAggregate_Empty(t *testing.T) {
	got := executions.Aggregate(nil, "24h", 24*time.Hour, now)
	if got.TotalExecutions != 0 || got.SuccessRate != 0 || got.TotalCostUSD != 0 {
		t.Errorf("Aggregate(nil) = %+v, want zero values", got)
	}
	if len(got.ExecutionVolume) != executions.VolumeBuckets {
		t.Errorf("ExecutionVolume len = %d, want %d", len(got.ExecutionVolume), executions.VolumeBuckets)
	}
	if got.Agents == nil {
		t.Error("Agents is nil, want empty slice")
	}
}

func TestAggregate(t *testing.T) {
	logs := []models.ExecutionLog{
		{AgentRole: "Email Processing Agent", LatencyMs: 100, Success: true, CostUSD: 0.01, ExecutedAt: now.Add(-time.Minute)},
		{AgentRole: "Email Processing Agent", LatencyMs: 300, Success: false, CostUSD: 0.02, ExecutedAt: now.Add(-3 * time.Hour)},
		{AgentRole: "Reporting Agent", LatencyMs: 200, Success: true, CostUSD: 0.03, ExecutedAt: now.Add(-23 * time.Hour)},
		{AgentRole: "", LatencyMs: 400, Success: true, CostUSD: 0.04, ExecutedAt: now.Add(-23 * time.Hour)},
		{AgentRole: "Reporting Agent", LatencyMs: 999, Success: false, CostUSD: 5, ExecutedAt: now.Add(-48 * time.Hour)},
	}

	got := executions.Aggregate(logs, "24h", 24*time.Hour, now)

	if got.TotalExecutions != 4 {
		t.Fatalf("TotalExecutions = %d, want 4 (old log excluded)", got.TotalExecutions)
	}
	if got.SuccessRate != 75 || got.ErrorRate != 25 {
		t.Errorf("rates = %v/%v, want 75/25", got.SuccessRate, got.ErrorRate)
	}
	if got.AvgLatencyMs != 250 {
		t.Errorf("AvgLatencyMs = %d, want 250", got.AvgLatencyMs)
	}
	if got.TotalCostUSD != 0.1 {
		t.Errorf("TotalCostUSD = %v, want 0.1", got.TotalCostUSD)
	}
	if got.ROI.HoursSaved != 0 {
		t.Errorf("ROI.HoursSaved = %d, want 0", got.ROI.HoursSaved)
	}

	if len(got.Agents) != 3 {
		t.Fatalf("Agents = %+v, want 3 roles", got.Agents)
	}
	first := got.Agents[0]
	if first.Name != "Email Processing Agent" || first.Executions != 2 || first.SuccessRate != 50 || first.Status != "moderate" {
		t.Errorf("Agents[0] = %+v", first)
	}
	if got.Agents[2].Name != "Unknown Agent" {
		t.Errorf("Agents[2].Name = %q, want Unknown Agent", got.Agents[2].Name)
	}

	vol := got.ExecutionVolume
	if vol[11] != 1 || vol[10] != 1 || vol[0] != 2 {
		t.Errorf("ExecutionVolume = %v, want newest on the right", vol)
	}
}

func TestSimulator_Run(t *testing.T) {
	agents := []*models.AgentTemplate{
		{ID: "email-processor", Role: "Email Processing Agent", PerformanceMetric: 100},
		nil,
		{ID: "reporting", Role: "Reporting Agent"},
	}

	a := executions.NewSimulator(42).Run("alice", "w1", agents, now)
	b := executions.NewSimulator(42).Run("alice", "w1", agents, now)

	if len(a) != 2 {
		t.Fatalf("Run() = %d logs, want 2", len(a))
	}
	for i, l := range a {
		if l.UserID != "alice" || l.WorkflowID != "w1" || !l.ExecutedAt.Equal(now) {
			t.Errorf("log %d = %+v", i, l)
		}
		if l.LatencyMs < 50 || l.LatencyMs > 500 {
			t.Errorf("log %d LatencyMs = %d, want 50..500", i, l.LatencyMs)
		}
		if l.CostUSD < 0.001 || l.CostUSD > 0.01 {
			t.Errorf("log %d CostUSD = %v, want 0.001..0.01", i, l.CostUSD)
		}
		if l.Success == (l.Error != "") {
			t.Errorf("log %d Success = %v with Error %q", i, l.Success, l.Error)
		}
		if l.LatencyMs != b[i].LatencyMs || l.Success != b[i].Success {
			t.Errorf("log %d differs between equal seeds", i)
		}
	}
	if !a[0].Success {
		t.Error("agent with performance 100 failed")
	}
}
