package remote

import (
	"context"
	"math"

	"github.com/cognifloe/control-plane/internal/scoring"
	"github.com/cognifloe/control-plane/pkg/models"
)

// SourceRemote tags results produced by the remote service.
const SourceRemote = "remote"

type predictionRequest struct {
	Description       string  `json:"description"`
	AgentCount        int     `json:"agent_count"`
	StepCount         int     `json:"step_count"`
	HistoricalAvgTime float64 `json:"historical_avg_time"`
}

type predictionResponse struct {
	PredictedHours     *float64            `json:"predicted_hours"`
	SuccessProbability *float64            `json:"success_probability"`
	Confidence         *float64            `json:"confidence"`
	RiskLevel          models.RiskLevel    `json:"risk_level"`
	TimeRange          *models.TimeRange   `json:"time_range"`
	Factors            map[string]float64  `json:"factors"`
	RiskFactors        []models.RiskFactor `json:"risk_factors"`
}

// Predict asks the remote service to score a scenario. The scenario is
// mapped to the service's request shape using the tier profile; the
// response is adapted to a PredictionResult without re-scoring.
func (c *Client) Predict(ctx context.Context, s models.PredictionScenario) (*models.PredictionResult, error) {
	profile := scoring.Profile(s.ComplexityTier)

	var resp predictionResponse
	if err := c.postJSON(ctx, PredictionPath, predictionRequest{
		Description:       s.Description,
		AgentCount:        profile.AgentCount,
		StepCount:         profile.StepCount,
		HistoricalAvgTime: scoring.HistoricalAverage(s.Volume),
	}, &resp); err != nil {
		return nil, err
	}

	return adaptPrediction(&resp, profile.AgentCount)
}

func adaptPrediction(resp *predictionResponse, agentCount int) (*models.PredictionResult, error) {
	switch {
	case resp.PredictedHours == nil:
		return nil, malformed("missing predicted_hours")
	case resp.SuccessProbability == nil:
		return nil, malformed("missing success_probability")
	case resp.Confidence == nil:
		return nil, malformed("missing confidence")
	case resp.TimeRange == nil:
		return nil, malformed("missing time_range")
	}

	hours := *resp.PredictedHours
	if hours < 0 || math.IsNaN(hours) {
		return nil, malformed("predicted_hours %v out of range", hours)
	}
	p := *resp.SuccessProbability
	if p < 0 || p > 1 {
		return nil, malformed("success_probability %v out of range", p)
	}
	if conf := *resp.Confidence; conf < 0 || conf > 1 {
		return nil, malformed("confidence %v out of range", conf)
	}
	if resp.TimeRange.Min > resp.TimeRange.Max {
		return nil, malformed("time_range min %v > max %v", resp.TimeRange.Min, resp.TimeRange.Max)
	}
	if hours < resp.TimeRange.Min || hours > resp.TimeRange.Max {
		return nil, malformed("predicted_hours %v outside time_range [%v, %v]", hours, resp.TimeRange.Min, resp.TimeRange.Max)
	}
	switch resp.RiskLevel {
	case models.RiskLow, models.RiskMedium, models.RiskHigh:
	default:
		return nil, malformed("unknown risk_level %q", resp.RiskLevel)
	}

	factors := resp.Factors
	if factors == nil {
		factors = map[string]float64{}
	}
	riskFactors := resp.RiskFactors
	if riskFactors == nil {
		riskFactors = []models.RiskFactor{}
	}

	return &models.PredictionResult{
		SuccessProbability: int(math.Round(p * 100)),
		PredictedHours:     hours,
		RiskLevel:          resp.RiskLevel,
		Confidence:         *resp.Confidence,
		TimeRange:          *resp.TimeRange,
		Factors:            factors,
		RiskFactors:        riskFactors,
		AgentCount:         agentCount,
		Source:             SourceRemote,
	}, nil
}
