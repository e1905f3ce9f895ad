// Package workflow synthesizes the ordered automation steps for a described
// process and combines them with the resolved agent team into an
// AnalysisResult.
package workflow

import (
	"fmt"
	"math"

	"github.com/cognifloe/control-plane/internal/catalog"
	"github.com/cognifloe/control-plane/internal/resolver"
	"github.com/cognifloe/control-plane/internal/signals"
	"github.com/cognifloe/control-plane/pkg/models"
)

// ReadyStatus is the status stamped on locally resolved agents.
const ReadyStatus = "Ready"

// Analyzer runs the local analysis pipeline: signal extraction, agent
// resolution and step synthesis.
type Analyzer struct {
	extractor *signals.Extractor
	resolver  *resolver.Resolver
}

// NewAnalyzer creates an analyzer over the given catalog.
func NewAnalyzer(c *catalog.Catalog) *Analyzer {
	return &Analyzer{
		extractor: signals.NewExtractor(c),
		resolver:  resolver.NewResolver(c),
	}
}

// Analyze builds a fresh AnalysisResult for the request. It never fails:
// empty input resolves to the default agents and the default step list.
func (a *Analyzer) Analyze(req models.AnalysisRequest) *models.AnalysisResult {
	tags := a.extractor.Extract(req.Description, req.Files)
	agents := a.resolver.Resolve(tags)
	for _, ag := range agents {
		ag.Status = ReadyStatus
		ag.ConfidenceScore = float64(ag.PerformanceMetric) / 100
	}

	steps := SynthesizeSteps(req.Description, agents)
	return &models.AnalysisResult{
		SuggestedAgents:   agents,
		WorkflowSteps:     steps,
		AutomationDetails: Automation(steps, agents),
	}
}

// Automation derives the automation summary for a step list and agent team.
func Automation(steps []string, agents []*models.AgentTemplate) models.AutomationDetails {
	total := len(steps)
	manual := 0
	if total > 0 {
		manual = int(math.Round(float64(total) * 0.15))
		if manual < 1 {
			manual = 1
		}
	}
	automated := total - manual

	accuracy := 0.0
	if len(agents) > 0 {
		sum := 0
		for _, ag := range agents {
			sum += ag.PerformanceMetric
		}
		accuracy = math.Round(float64(sum)/float64(len(agents))*10) / 10
	}

	return models.AutomationDetails{
		TotalSteps:         total,
		AutomatedSteps:     automated,
		ManualSteps:        manual,
		EstimatedTimeSaved: fmt.Sprintf("%d hours/week", automated*2),
		Accuracy:           accuracy,
	}
}
