package scoring

import "github.com/cognifloe/control-plane/pkg/models"

// ModelInfo describes the local model for the model-info endpoint.
type ModelInfo struct {
	Name            string                                `json:"name"`
	Type            string                                `json:"type"`
	SuccessWeights  map[string]float64                    `json:"successWeights"`
	DurationWeights map[string]float64                    `json:"durationWeights"`
	Tiers           map[models.ComplexityTier]TierProfile `json:"tiers"`
	ComplexKeywords []string                              `json:"complexKeywords"`
	SimpleKeywords  []string                              `json:"simpleKeywords"`
	RiskThresholds  map[models.RiskLevel]int              `json:"riskThresholds"`
}

// Info returns a snapshot of the model's constants.
func Info() ModelInfo {
	tierCopy := make(map[models.ComplexityTier]TierProfile, len(tiers))
	for k, v := range tiers {
		tierCopy[k] = v
	}
	return ModelInfo{
		Name: "local-heuristic",
		Type: "weighted closed-form heuristic",
		SuccessWeights: map[string]float64{
			"confidenceScore":  WeightConfidence,
			"workflowAge":      WeightRecency,
			"agentPerformance": WeightPerformance,
			"complexityScore":  WeightSimplicity,
		},
		DurationWeights: map[string]float64{
			"complexity":    WeightComplexity,
			"agentCount":    WeightAgents,
			"historicalAvg": WeightHistorical,
			"stepCount":     WeightSteps,
		},
		Tiers:           tierCopy,
		ComplexKeywords: append([]string(nil), ComplexKeywords...),
		SimpleKeywords:  append([]string(nil), SimpleKeywords...),
		RiskThresholds: map[models.RiskLevel]int{
			models.RiskLow:    85,
			models.RiskMedium: 70,
		},
	}
}
