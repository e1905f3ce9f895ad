// Package insights produces heuristic health reports for workflows and
// flags anomalous executions against a fixed baseline. Like the rest of
// the engine it is keyword driven and deterministic.
package insights

import (
	"fmt"
	"math"
	"strings"

	"github.com/cognifloe/control-plane/pkg/models"
)

var (
	highComplexityKeywords   = []string{"integrate", "synchronize", "parallel", "coordinate", "orchestrate", "complex", "multiple"}
	mediumComplexityKeywords = []string{"process", "transform", "validate", "filter", "analyze", "calculate"}
	lowComplexityKeywords    = []string{"send", "receive", "store", "retrieve", "display", "show"}

	bottleneckIndicators = []string{"manual", "approval", "review", "wait", "queue", "pending", "human", "verify"}

	riskKeywords = []string{"critical", "sensitive", "security", "compliance", "regulation", "legal", "financial"}
)

// Cost model assumptions.
const (
	hoursPerManualStep  = 0.5
	executionsPerMonth  = 20
	automationShare     = 0.7
	hourlyRate          = 50.0
	breakEvenMonths     = 3
	sequentialThreshold = 3
)

// Analyze builds the insight report for a description and its step list.
func Analyze(description string, steps []string) models.Insights {
	text := strings.ToLower(description)

	complexity := assessComplexity(text, len(steps))
	bottlenecks := detectBottlenecks(text)
	risks := assessRisks(text)

	return models.Insights{
		Complexity:    complexity,
		Bottlenecks:   bottlenecks,
		Optimizations: suggestOptimizations(text, len(steps), len(bottlenecks)),
		CostBenefit:   estimateCostBenefit(len(steps)),
		Risks:         risks,
		Overall:       overallHealth(complexity.Score, len(bottlenecks), risks.Score),
	}
}

func hits(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

func assessComplexity(text string, stepCount int) models.ComplexityAssessment {
	factors := []string{}
	score := 0.0

	switch {
	case stepCount > 10:
		score += 3
		factors = append(factors, "High step count (>10 steps)")
	case stepCount > 5:
		score += 2
		factors = append(factors, "Medium step count (6-10 steps)")
	default:
		score++
	}

	if high := hits(text, highComplexityKeywords); high > 0 {
		score += float64(high) * 0.5
		factors = append(factors, fmt.Sprintf("Contains %d high-complexity indicators", high))
	}
	score += float64(hits(text, mediumComplexityKeywords)) * 0.3
	score += float64(hits(text, lowComplexityKeywords)) * 0.1

	n := int(score)
	if n < 1 {
		n = 1
	}
	if n > 10 {
		n = 10
	}

	var level string
	switch {
	case n >= 8:
		level = "Very High"
	case n >= 6:
		level = "High"
	case n >= 4:
		level = "Medium"
	default:
		level = "Low"
	}

	return models.ComplexityAssessment{
		Score:       n,
		Level:       level,
		Factors:     factors,
		Description: fmt.Sprintf("This workflow has %s complexity with a score of %d/10", strings.ToLower(level), n),
	}
}

func detectBottlenecks(text string) []models.Bottleneck {
	found := []models.Bottleneck{}
	for _, ind := range bottleneckIndicators {
		if !strings.Contains(text, ind) {
			continue
		}
		found = append(found, models.Bottleneck{
			Type:        "Manual Intervention",
			Indicator:   ind,
			Severity:    "High",
			Description: fmt.Sprintf("Requires %s which may slow down the workflow", ind),
			Suggestion:  fmt.Sprintf("Consider automating the %s step", ind),
		})
	}

	if seq := strings.Count(text, "then") + strings.Count(text, "after"); seq > sequentialThreshold {
		found = append(found, models.Bottleneck{
			Type:        "Sequential Dependencies",
			Indicator:   "Multiple sequential steps",
			Severity:    "Medium",
			Description: fmt.Sprintf("Workflow has %d sequential dependencies", seq),
			Suggestion:  "Look for opportunities to parallelize independent tasks",
		})
	}
	return found
}

func suggestOptimizations(text string, stepCount, bottlenecks int) []models.Optimization {
	var out []models.Optimization

	if bottlenecks > 0 {
		out = append(out, models.Optimization{
			Title:       "Automate Manual Steps",
			Description: fmt.Sprintf("Found %d manual intervention points that could be automated", bottlenecks),
			Impact:      "High",
			Effort:      "Medium",
			TimeSavings: fmt.Sprintf("%d%% reduction in processing time", bottlenecks*15),
		})
	}
	if stepCount > 3 {
		out = append(out, models.Optimization{
			Title:       "Parallelize Independent Tasks",
			Description: "Some workflow steps may be able to run in parallel",
			Impact:      "Medium",
			Effort:      "Low",
			TimeSavings: "20-30% faster execution",
		})
	}
	if strings.Contains(text, "data") || strings.Contains(text, "information") {
		out = append(out, models.Optimization{
			Title:       "Implement Data Caching",
			Description: "Cache frequently accessed data to reduce processing time",
			Impact:      "Medium",
			Effort:      "Low",
			TimeSavings: "15% reduction in data retrieval time",
		})
	}
	return append(out, models.Optimization{
		Title:       "Add Robust Error Handling",
		Description: "Implement retry logic and fallback mechanisms",
		Impact:      "High",
		Effort:      "Medium",
		TimeSavings: "Prevent workflow failures and reduce manual intervention",
	})
}

func estimateCostBenefit(stepCount int) models.CostBenefit {
	manual := float64(stepCount) * hoursPerManualStep
	monthlyHours := manual * automationShare * executionsPerMonth
	monthlyCost := monthlyHours * hourlyRate

	return models.CostBenefit{
		ManualHoursPerExecution:    round(manual, 1),
		AutomatedHoursPerExecution: round(manual*(1-automationShare), 1),
		TimeSavedPercentage:        int(automationShare * 100),
		MonthlyTimeSavingsHours:    round(monthlyHours, 1),
		MonthlyCostSavings:         round(monthlyCost, 2),
		AnnualCostSavings:          round(monthlyCost*12, 2),
		ROIMonths:                  breakEvenMonths,
	}
}

func assessRisks(text string) models.RiskAssessment {
	risks := []models.Risk{}
	score := 0

	for _, kw := range riskKeywords {
		if !strings.Contains(text, kw) {
			continue
		}
		risks = append(risks, models.Risk{
			Type:        "Compliance/Security",
			Description: fmt.Sprintf("Workflow involves %s operations", kw),
			Severity:    "High",
			Mitigation:  fmt.Sprintf("Ensure proper %s protocols are in place", kw),
		})
		score += 2
	}

	if strings.Contains(text, "data") || strings.Contains(text, "database") {
		risks = append(risks, models.Risk{
			Type:        "Data Integrity",
			Description: "Workflow processes data",
			Severity:    "Medium",
			Mitigation:  "Implement data validation and backup procedures",
		})
		score++
	}
	if strings.Contains(text, "integrate") || strings.Contains(text, "api") {
		risks = append(risks, models.Risk{
			Type:        "Integration Failure",
			Description: "Workflow depends on external systems",
			Severity:    "Medium",
			Mitigation:  "Add retry logic and failover mechanisms",
		})
		score++
	}

	level := "Low"
	switch {
	case score >= 5:
		level = "High"
	case score >= 3:
		level = "Medium"
	}
	if score > 10 {
		score = 10
	}
	return models.RiskAssessment{Score: score, Level: level, Risks: risks}
}

func overallHealth(complexity, bottlenecks, risk int) models.HealthScore {
	weighted := float64(10-complexity)*0.3 + float64(10-bottlenecks)*0.4 + float64(10-risk)*0.3
	score := int(weighted / 10 * 100)

	switch {
	case score >= 80:
		return models.HealthScore{Score: score, Status: "Excellent", Recommendation: "Workflow is well-designed and ready for automation"}
	case score >= 60:
		return models.HealthScore{Score: score, Status: "Good", Recommendation: "Workflow is solid with minor optimization opportunities"}
	case score >= 40:
		return models.HealthScore{Score: score, Status: "Fair", Recommendation: "Workflow needs optimization before full automation"}
	default:
		return models.HealthScore{Score: score, Status: "Needs Improvement", Recommendation: "Significant optimization required for successful automation"}
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
