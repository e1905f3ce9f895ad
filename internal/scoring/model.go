// Package scoring implements the local predictive scoring model. It is a
// small closed-form heuristic over text statistics and the user-chosen
// complexity tier; it is deterministic and reads no clock.
package scoring

import (
	"math"
	"strings"

	"github.com/cognifloe/control-plane/pkg/models"
)

// SourceLocal tags results produced by this model.
const SourceLocal = "local"

// Keyword lists counted once each by substring containment.
var (
	ComplexKeywords = []string{"multiple", "integration", "advanced", "critical", "extract", "validate", "monitor", "real-time"}
	SimpleKeywords  = []string{"simple", "basic", "standard", "sync", "notify", "report"}
)

// Success model inputs that have no per-scenario source.
const (
	AvgConfidence = 0.80
	AgentPerf     = 0.85
	WorkflowAge   = 30.0
)

// Weights of the success probability blend.
const (
	WeightConfidence  = 0.40
	WeightRecency     = 0.20
	WeightPerformance = 0.25
	WeightSimplicity  = 0.15
)

// Weights of the duration blend.
const (
	WeightComplexity = 0.45
	WeightAgents     = 0.25
	WeightHistorical = 0.20
	WeightSteps      = 0.10
)

const (
	minComplexity  = 0.05
	maxComplexity  = 1.0
	minSuccess     = 0.10
	maxSuccess     = 0.99
	volumeDivisor  = 2500.0
	highComplexity = 0.7
)

// TierProfile is the fixed shape associated with a complexity tier.
type TierProfile struct {
	AgentCount int     `json:"agentCount"`
	StepCount  int     `json:"stepCount"`
	Complexity float64 `json:"complexity"`
}

var tiers = map[models.ComplexityTier]TierProfile{
	models.TierLow:    {AgentCount: 2, StepCount: 3, Complexity: 0.15},
	models.TierMedium: {AgentCount: 5, StepCount: 8, Complexity: 0.40},
	models.TierHigh:   {AgentCount: 10, StepCount: 15, Complexity: 0.75},
}

// Profile returns the tier profile, treating unknown tiers as Medium.
func Profile(tier models.ComplexityTier) TierProfile {
	if p, ok := tiers[tier]; ok {
		return p
	}
	return tiers[models.TierMedium]
}

// HistoricalAverage converts a daily item volume into the historical
// average duration input of the model.
func HistoricalAverage(volume int) float64 {
	return float64(volume) / volumeDivisor
}

// Complexity computes the clamped complexity estimate of a scenario.
func Complexity(s models.PredictionScenario) float64 {
	text := strings.ToLower(s.Description)
	words := len(strings.Fields(text))

	base := math.Min(float64(words)/50, 1.0)
	keyword := float64(countHits(text, ComplexKeywords))*0.10 - float64(countHits(text, SimpleKeywords))*0.05

	return clamp(base+keyword+Profile(s.ComplexityTier).Complexity, minComplexity, maxComplexity)
}

// RiskFor maps an integer success percentage to its risk tier.
func RiskFor(successPercent int) models.RiskLevel {
	switch {
	case successPercent >= 85:
		return models.RiskLow
	case successPercent >= 70:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

// Predict scores a scenario with the local model.
func Predict(s models.PredictionScenario) models.PredictionResult {
	profile := Profile(s.ComplexityTier)
	complexity := Complexity(s)

	recency := math.Min(WorkflowAge/90, 1.0)
	success := clamp(
		WeightConfidence*AvgConfidence+
			WeightRecency*recency+
			WeightPerformance*AgentPerf+
			WeightSimplicity*(1-complexity),
		minSuccess, maxSuccess)
	successPercent := int(math.Round(success * 100))

	historical := HistoricalAverage(s.Volume)
	hours := WeightComplexity*complexity*10 +
		WeightAgents*float64(profile.AgentCount)*0.5 +
		WeightHistorical*historical +
		WeightSteps*float64(profile.StepCount)*0.3

	riskFactors := []models.RiskFactor{}
	if complexity > highComplexity {
		riskFactors = append(riskFactors, models.RiskFactor{
			Factor: "High Complexity",
			Impact: "Medium",
			Value:  round3(complexity),
		})
	}

	return models.PredictionResult{
		SuccessProbability: successPercent,
		PredictedHours:     round3(hours),
		RiskLevel:          RiskFor(successPercent),
		Confidence:         round3(0.75 + math.Min(historical, 10)/40),
		TimeRange: models.TimeRange{
			Min: round3(math.Max(hours*0.85, 0.5)),
			Max: round3(hours * 1.15),
		},
		Factors: map[string]float64{
			"complexityImpact":   round3(complexity * 10),
			"agentImpact":        round3(-float64(profile.AgentCount) * 0.15),
			"historicalBaseline": round3(historical),
		},
		RiskFactors: riskFactors,
		AgentCount:  profile.AgentCount,
		Source:      SourceLocal,
	}
}

func countHits(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
