// Package executions aggregates logged agent executions into the telemetry
// shown for a time window, and simulates runs of saved workflows.
package executions

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/cognifloe/control-plane/pkg/models"
)

// Supported telemetry windows.
var windows = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
}

// DefaultRange is used when no range is requested.
const DefaultRange = "7d"

// VolumeBuckets is the length of ExecutionTelemetry.ExecutionVolume.
const VolumeBuckets = 12

const (
	hoursSavedPerExecution = 0.1
	hourlyValueUSD         = 100.0
	unknownAgent           = "Unknown Agent"
)

// ParseRange returns the window for a range name. An empty name selects
// DefaultRange.
func ParseRange(name string) (string, time.Duration, error) {
	if name == "" {
		name = DefaultRange
	}
	d, ok := windows[name]
	if !ok {
		return "", 0, fmt.Errorf("unknown range %q (want 24h, 7d, 30d or 90d)", name)
	}
	return name, d, nil
}

// Aggregate summarizes logs over the window ending at now. Logs outside the
// window are ignored. An empty input yields zero values with an all-zero
// volume series.
func Aggregate(logs []models.ExecutionLog, rangeName string, window time.Duration, now time.Time) models.ExecutionTelemetry {
	t := models.ExecutionTelemetry{
		TimeRange:       rangeName,
		GeneratedAt:     now.UTC(),
		Agents:          []models.AgentPerformance{},
		ExecutionVolume: make([]int, VolumeBuckets),
	}

	type agentStats struct {
		total, success, latency int
	}
	byRole := map[string]*agentStats{}

	var successes, latency int
	var cost float64
	bucket := window / VolumeBuckets
	for _, l := range logs {
		age := now.Sub(l.ExecutedAt)
		if age > window {
			continue
		}
		t.TotalExecutions++
		latency += l.LatencyMs
		cost += l.CostUSD
		if l.Success {
			successes++
		}

		role := l.AgentRole
		if role == "" {
			role = unknownAgent
		}
		st := byRole[role]
		if st == nil {
			st = &agentStats{}
			byRole[role] = st
		}
		st.total++
		st.latency += l.LatencyMs
		if l.Success {
			st.success++
		}

		idx := 0
		if age > 0 && bucket > 0 {
			idx = min(VolumeBuckets-1, int(age/bucket))
		}
		t.ExecutionVolume[VolumeBuckets-1-idx]++
	}

	if t.TotalExecutions == 0 {
		return t
	}

	n := float64(t.TotalExecutions)
	t.SuccessRate = round(float64(successes)/n*100, 2)
	t.ErrorRate = round(100-t.SuccessRate, 2)
	t.AvgLatencyMs = int(math.Round(float64(latency) / n))
	t.ThroughputPerMin = round(n/window.Minutes(), 4)
	t.TotalCostUSD = round(cost, 2)

	hours := int(math.Round(n * hoursSavedPerExecution))
	t.ROI = models.ExecutionROI{
		HoursSaved:   hours,
		CostSavedUSD: round(float64(hours)*hourlyValueUSD-cost, 2),
	}

	for role, st := range byRole {
		rate := float64(st.success) / float64(st.total)
		t.Agents = append(t.Agents, models.AgentPerformance{
			Name:         role,
			SuccessRate:  round(rate*100, 1),
			AvgLatencyMs: int(math.Round(float64(st.latency) / float64(st.total))),
			Executions:   st.total,
			Status:       agentStatus(rate),
		})
	}
	sort.Slice(t.Agents, func(i, j int) bool {
		if t.Agents[i].Executions != t.Agents[j].Executions {
			return t.Agents[i].Executions > t.Agents[j].Executions
		}
		return t.Agents[i].Name < t.Agents[j].Name
	})
	return t
}

func agentStatus(rate float64) string {
	switch {
	case rate > 0.97:
		return "optimal"
	case rate > 0.90:
		return "good"
	default:
		return "moderate"
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
