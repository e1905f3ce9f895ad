package remote

import (
	"context"
	"strings"

	"github.com/cognifloe/control-plane/pkg/models"
)

type analysisRequest struct {
	Description string   `json:"description"`
	FileCount   int      `json:"fileCount"`
	FileNames   []string `json:"fileNames"`
}

type remoteStep struct {
	Description string `json:"description"`
}

type analysisResponse struct {
	AgentSuggestions []*models.AgentTemplate `json:"agentSuggestions"`
	WorkflowSteps    []remoteStep            `json:"workflowSteps"`
}

// Analysis is a validated remote analysis: a non-empty agent list and a
// non-empty list of step descriptions, both as returned by the service.
type Analysis struct {
	Agents []*models.AgentTemplate
	Steps  []string
}

// Analyze asks the remote service to analyze a described process.
func (c *Client) Analyze(ctx context.Context, req models.AnalysisRequest) (*Analysis, error) {
	names := make([]string, 0, len(req.Files))
	for _, f := range req.Files {
		names = append(names, f.Name)
	}

	var resp analysisResponse
	if err := c.postJSON(ctx, AnalysisPath, analysisRequest{
		Description: req.Description,
		FileCount:   len(req.Files),
		FileNames:   names,
	}, &resp); err != nil {
		return nil, err
	}

	if len(resp.AgentSuggestions) == 0 {
		return nil, malformed("no agentSuggestions")
	}
	for i, a := range resp.AgentSuggestions {
		if a == nil || a.ID == "" || a.Role == "" {
			return nil, malformed("agentSuggestions[%d] missing id or role", i)
		}
		if a.PerformanceMetric < 0 || a.PerformanceMetric > 100 {
			return nil, malformed("agentSuggestions[%d] performanceMetric %d out of range", i, a.PerformanceMetric)
		}
	}

	steps := make([]string, 0, len(resp.WorkflowSteps))
	for _, s := range resp.WorkflowSteps {
		if d := strings.TrimSpace(s.Description); d != "" {
			steps = append(steps, d)
		}
	}
	if len(steps) == 0 {
		return nil, malformed("no workflowSteps")
	}

	return &Analysis{Agents: resp.AgentSuggestions, Steps: steps}, nil
}
