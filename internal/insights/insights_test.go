package insights_test

import (
	"math"
	"testing"
	"time"

	"github.com/cognifloe/control-plane/internal/insights"
	"github.com/cognifloe/control-plane/pkg/models"
)

func TestAnalyze_Empty(t *testing.T) {
	got := insights.Analyze("", nil)

	if got.Complexity.Score != 1 || got.Complexity.Level != "Low" {
		t.Errorf("Complexity = %+v, want score 1 Low", got.Complexity)
	}
	if len(got.Bottlenecks) != 0 {
		t.Errorf("Bottlenecks = %v, want none", got.Bottlenecks)
	}
	if got.Risks.Score != 0 || got.Risks.Level != "Low" {
		t.Errorf("Risks = %+v, want score 0 Low", got.Risks)
	}
	if len(got.Optimizations) != 1 || got.Optimizations[0].Title != "Add Robust Error Handling" {
		t.Errorf("Optimizations = %+v, want only error handling", got.Optimizations)
	}
	if got.Overall.Status != "Excellent" || got.Overall.Score < 96 || got.Overall.Score > 97 {
		t.Errorf("Overall = %+v, want Excellent ~97", got.Overall)
	}
}

func TestAnalyze_ManualSensitiveWorkflow(t *testing.T) {
	desc := "Manual approval then review, then wait, then verify after upload of sensitive financial data"
	steps := make([]string, 12)

	got := insights.Analyze(desc, steps)

	if got.Complexity.Score != 3 || got.Complexity.Level != "Low" {
		t.Errorf("Complexity = %+v, want score 3 Low", got.Complexity)
	}

	var indicators []string
	sequential := false
	for _, b := range got.Bottlenecks {
		if b.Type == "Sequential Dependencies" {
			sequential = true
			continue
		}
		indicators = append(indicators, b.Indicator)
	}
	wantIndicators := []string{"manual", "approval", "review", "wait", "verify"}
	if len(indicators) != len(wantIndicators) {
		t.Fatalf("manual indicators = %v, want %v", indicators, wantIndicators)
	}
	for i := range wantIndicators {
		if indicators[i] != wantIndicators[i] {
			t.Errorf("indicator[%d] = %q, want %q", i, indicators[i], wantIndicators[i])
		}
	}
	if !sequential {
		t.Error("missing Sequential Dependencies bottleneck")
	}

	if got.Risks.Score != 5 || got.Risks.Level != "High" || len(got.Risks.Risks) != 3 {
		t.Errorf("Risks = %+v, want score 5 High with 3 risks", got.Risks)
	}

	if len(got.Optimizations) != 4 {
		t.Errorf("len(Optimizations) = %d, want 4", len(got.Optimizations))
	}
	if got.Optimizations[0].TimeSavings != "90% reduction in processing time" {
		t.Errorf("Optimizations[0].TimeSavings = %q", got.Optimizations[0].TimeSavings)
	}

	cb := got.CostBenefit
	if cb.ManualHoursPerExecution != 6 || cb.AutomatedHoursPerExecution != 1.8 || cb.TimeSavedPercentage != 70 {
		t.Errorf("CostBenefit = %+v", cb)
	}
	if math.Abs(cb.MonthlyCostSavings-4200) > 0.01 || math.Abs(cb.AnnualCostSavings-50400) > 0.01 {
		t.Errorf("CostBenefit savings = %v / %v, want 4200 / 50400", cb.MonthlyCostSavings, cb.AnnualCostSavings)
	}

	if got.Overall.Status != "Needs Improvement" && got.Overall.Status != "Fair" {
		t.Errorf("Overall = %+v", got.Overall)
	}
}

func TestAnalyze_ComplexityCapped(t *testing.T) {
	desc := "integrate synchronize parallel coordinate orchestrate complex multiple process transform validate filter analyze calculate"
	got := insights.Analyze(desc, make([]string, 20))
	if got.Complexity.Score != 8 || got.Complexity.Level != "Very High" {
		t.Errorf("Complexity = %+v, want score 8 Very High", got.Complexity)
	}
}

func TestDetectAnomalies(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		metrics  models.ExecutionMetrics
		anomaly  bool
		count    int
		severity string
		rec      string
	}{
		{
			name:     "normal run",
			metrics:  models.ExecutionMetrics{CompletionHours: 3.5, AgentCount: 3, SuccessRate: 0.95},
			severity: insights.SeverityLow,
		},
		{
			name:     "slow run",
			metrics:  models.ExecutionMetrics{CompletionHours: 8, AgentCount: 3, SuccessRate: 0.95},
			anomaly:  true,
			count:    1,
			severity: insights.SeverityCritical,
			rec:      "Review workflow configuration and agent performance.",
		},
		{
			name:     "failing run",
			metrics:  models.ExecutionMetrics{CompletionHours: 3, AgentCount: 2, SuccessRate: 0.6, ErrorCount: 9},
			anomaly:  true,
			count:    2,
			severity: insights.SeverityHigh,
			rec:      "Immediate investigation required. Multiple critical issues detected.",
		},
		{
			name:     "many agents",
			metrics:  models.ExecutionMetrics{CompletionHours: 3, AgentCount: 6, SuccessRate: 0.9},
			anomaly:  true,
			count:    1,
			severity: insights.SeverityHigh,
			rec:      "Monitor workflow for recurring patterns.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.metrics
			m.Timestamp = ts
			got := insights.DetectAnomalies(m)

			if got.IsAnomaly != tt.anomaly {
				t.Errorf("IsAnomaly = %v, want %v", got.IsAnomaly, tt.anomaly)
			}
			if len(got.Anomalies) != tt.count {
				t.Errorf("len(Anomalies) = %d, want %d: %+v", len(got.Anomalies), tt.count, got.Anomalies)
			}
			if got.Severity != tt.severity {
				t.Errorf("Severity = %q, want %q (score %v)", got.Severity, tt.severity, got.Score)
			}
			if got.Recommendation != tt.rec {
				t.Errorf("Recommendation = %q, want %q", got.Recommendation, tt.rec)
			}
			if !got.Timestamp.Equal(ts) {
				t.Errorf("Timestamp = %v, want %v", got.Timestamp, ts)
			}
		})
	}
}
