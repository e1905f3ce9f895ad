package insights

import (
	"fmt"
	"math"

	"github.com/cognifloe/control-plane/pkg/models"
)

// Baseline is the reference profile executions are compared against.
type Baseline struct {
	AvgCompletionHours float64
	StdCompletionHours float64
	AvgAgentCount      float64
	StdAgentCount      float64
	SuccessRate        float64
}

// DefaultBaseline is the fixed baseline of the detector.
var DefaultBaseline = Baseline{
	AvgCompletionHours: 3.5,
	StdCompletionHours: 1.2,
	AvgAgentCount:      2.5,
	StdAgentCount:      0.8,
	SuccessRate:        0.92,
}

const (
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"
)

// DetectAnomalies compares observed execution metrics with DefaultBaseline.
// The report carries m.Timestamp unchanged.
func DetectAnomalies(m models.ExecutionMetrics) models.AnomalyReport {
	return DefaultBaseline.Detect(m)
}

// Detect compares observed execution metrics with the baseline.
func (b Baseline) Detect(m models.ExecutionMetrics) models.AnomalyReport {
	anomalies := []models.Anomaly{}
	var scores []float64

	if z := math.Abs((m.CompletionHours - b.AvgCompletionHours) / b.StdCompletionHours); z > 2 {
		sev := SeverityMedium
		if z > 3 {
			sev = SeverityHigh
		}
		anomalies = append(anomalies, models.Anomaly{
			Type:     "Abnormal Completion Time",
			Severity: sev,
			Details:  fmt.Sprintf("Completion time %gh is %.1fσ from baseline", m.CompletionHours, z),
			Baseline: b.AvgCompletionHours,
		})
		scores = append(scores, math.Min(z/3, 1))
	}

	if z := math.Abs((float64(m.AgentCount) - b.AvgAgentCount) / b.StdAgentCount); z > 2 {
		anomalies = append(anomalies, models.Anomaly{
			Type:     "Unusual Agent Count",
			Severity: SeverityLow,
			Details:  fmt.Sprintf("Agent count %d deviates from typical %.1f", m.AgentCount, b.AvgAgentCount),
			Baseline: b.AvgAgentCount,
		})
		scores = append(scores, math.Min(z/4, 0.5))
	}

	if m.SuccessRate < 0.7 {
		sev := SeverityHigh
		if m.SuccessRate < 0.5 {
			sev = SeverityCritical
		}
		anomalies = append(anomalies, models.Anomaly{
			Type:     "Low Success Rate",
			Severity: sev,
			Details:  fmt.Sprintf("Success rate %.1f%% is critically low", m.SuccessRate*100),
			Baseline: b.SuccessRate,
		})
		scores = append(scores, 1-m.SuccessRate)
	}

	if m.ErrorCount > 5 {
		sev := SeverityHigh
		if m.ErrorCount > 10 {
			sev = SeverityCritical
		}
		anomalies = append(anomalies, models.Anomaly{
			Type:     "High Error Count",
			Severity: sev,
			Details:  fmt.Sprintf("%d errors detected", m.ErrorCount),
			Baseline: 0,
		})
		scores = append(scores, math.Min(float64(m.ErrorCount)/15, 1))
	}

	overall := 0.0
	if len(scores) > 0 {
		for _, s := range scores {
			overall += s
		}
		overall /= float64(len(scores))
	}

	report := models.AnomalyReport{
		IsAnomaly: len(anomalies) > 0,
		Score:     round(overall, 3),
		Severity:  overallSeverity(overall),
		Anomalies: anomalies,
		Timestamp: m.Timestamp,
	}
	if report.IsAnomaly {
		report.Recommendation = recommend(anomalies)
	}
	return report
}

func overallSeverity(score float64) string {
	switch {
	case score > 0.7:
		return SeverityCritical
	case score > 0.4:
		return SeverityHigh
	case score > 0.2:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func recommend(anomalies []models.Anomaly) string {
	serious := 0
	for _, a := range anomalies {
		if a.Severity == SeverityCritical || a.Severity == SeverityHigh {
			serious++
		}
	}
	switch {
	case serious >= 2:
		return "Immediate investigation required. Multiple critical issues detected."
	case serious == 1:
		return "Review workflow configuration and agent performance."
	default:
		return "Monitor workflow for recurring patterns."
	}
}
