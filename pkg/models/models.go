// Package models defines the shared data types of the CogniFloe control plane:
// agent templates, analysis results, prediction scenarios and results, and the
// records the HTTP layer persists on behalf of users.
package models

import (
	"strings"
	"time"
)

// ── Agent Templates ─────────────────────────────────────────

// FlowKind classifies a node in an agent's internal flow.
type FlowKind string

const (
	FlowTrigger   FlowKind = "trigger"
	FlowAction    FlowKind = "action"
	FlowCondition FlowKind = "condition"
	FlowOutput    FlowKind = "output"
)

// FlowNode is one step of an agent's internal logic.
type FlowNode struct {
	ID    string   `json:"id" yaml:"id"`
	Label string   `json:"label" yaml:"label"`
	Kind  FlowKind `json:"kind" yaml:"kind"`
}

// Dependency is an external integration an agent relies on.
type Dependency struct {
	Name    string `json:"name" yaml:"name"`
	Status  string `json:"status" yaml:"status"`
	Version string `json:"version" yaml:"version"`
}

// AgentTemplate is a catalog entry describing one reusable kind of automation
// agent. Catalog entries are never mutated; resolution hands out clones.
type AgentTemplate struct {
	ID                string       `json:"id" yaml:"id"`
	Role              string       `json:"role" yaml:"role"`
	Description       string       `json:"description" yaml:"description"`
	Rationale         string       `json:"rationale" yaml:"rationale"`
	EfficiencyClaim   string       `json:"efficiencyClaim" yaml:"efficiencyClaim"`
	Capabilities      []string     `json:"capabilities" yaml:"capabilities"`
	ModelNames        []string     `json:"modelNames" yaml:"modelNames"`
	PerformanceMetric int          `json:"performanceMetric" yaml:"performanceMetric"`
	ExecutionsCount   int          `json:"executionsCount" yaml:"executionsCount"`
	InternalFlow      []FlowNode   `json:"internalFlow" yaml:"internalFlow"`
	Dependencies      []Dependency `json:"dependencies" yaml:"dependencies"`

	// Per-workflow fields. Zero on catalog entries; set by callers on clones.
	Status          string  `json:"status,omitempty" yaml:"-"`
	ConfidenceScore float64 `json:"confidenceScore,omitempty" yaml:"-"`
}

// Clone returns a deep copy of the template. Slices are copied so the
// clone can be mutated without touching the original.
func (t *AgentTemplate) Clone() *AgentTemplate {
	if t == nil {
		return nil
	}
	c := *t
	c.Capabilities = append([]string(nil), t.Capabilities...)
	c.ModelNames = append([]string(nil), t.ModelNames...)
	c.InternalFlow = append([]FlowNode(nil), t.InternalFlow...)
	c.Dependencies = append([]Dependency(nil), t.Dependencies...)
	return &c
}

// Tag is a key of the fixed keyword vocabulary used to classify free text.
type Tag string

const (
	TagEmail        Tag = "email"
	TagDocument     Tag = "document"
	TagData         Tag = "data"
	TagAPI          Tag = "api"
	TagCRM          Tag = "crm"
	TagNotification Tag = "notification"
	TagValidation   Tag = "validation"
	TagReport       Tag = "report"
	TagSentiment    Tag = "sentiment"
	TagSecurity     Tag = "security"
	TagScheduler    Tag = "scheduler"
	TagOrchestrator Tag = "orchestrator"
)

// FileDescriptor is the metadata of an uploaded file. Contents are never read.
type FileDescriptor struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// ── Analysis ────────────────────────────────────────────────

// AnalysisRequest is the input of a workflow analysis.
type AnalysisRequest struct {
	Description string           `json:"description"`
	Files       []FileDescriptor `json:"files,omitempty"`
}

// AutomationDetails summarizes how much of a step list is automated.
type AutomationDetails struct {
	TotalSteps         int     `json:"totalSteps"`
	AutomatedSteps     int     `json:"automatedSteps"`
	ManualSteps        int     `json:"manualSteps"`
	EstimatedTimeSaved string  `json:"estimatedTimeSaved"`
	Accuracy           float64 `json:"accuracy"`
}

// AnalysisResult is the proposed agent team and step sequence for a
// described process. It is always built whole, never patched.
type AnalysisResult struct {
	SuggestedAgents   []*AgentTemplate  `json:"suggestedAgents"`
	WorkflowSteps     []string          `json:"workflowSteps"`
	AutomationDetails AutomationDetails `json:"automationDetails"`
}

// ── Prediction ──────────────────────────────────────────────

// ComplexityTier is the user-chosen complexity of a prediction scenario.
type ComplexityTier string

const (
	TierLow    ComplexityTier = "Low"
	TierMedium ComplexityTier = "Medium"
	TierHigh   ComplexityTier = "High"
)

// ParseTier maps a case-insensitive tier name to a ComplexityTier.
// Unknown or empty input maps to Medium.
func ParseTier(s string) ComplexityTier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return TierLow
	case "high":
		return TierHigh
	default:
		return TierMedium
	}
}

// RiskLevel is the coarse risk tier derived from success probability.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// PredictionScenario is a user-supplied workflow scenario to score.
type PredictionScenario struct {
	Description    string         `json:"description"`
	Volume         int            `json:"volume"`
	ComplexityTier ComplexityTier `json:"complexityTier"`
}

// TimeRange bounds a predicted duration in hours.
type TimeRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// RiskFactor is one named contributor to prediction risk.
type RiskFactor struct {
	Factor string  `json:"factor"`
	Impact string  `json:"impact"`
	Value  float64 `json:"value"`
}

// PredictionResult is the scored outcome of a scenario.
type PredictionResult struct {
	SuccessProbability int                `json:"successProbability"`
	PredictedHours     float64            `json:"predictedHours"`
	RiskLevel          RiskLevel          `json:"riskLevel"`
	Confidence         float64            `json:"confidence"`
	TimeRange          TimeRange          `json:"timeRange"`
	Factors            map[string]float64 `json:"factors"`
	RiskFactors        []RiskFactor       `json:"riskFactors"`
	AgentCount         int                `json:"agentCount"`
	Source             string             `json:"source"`
}

// ── Insights ────────────────────────────────────────────────

// ComplexityAssessment is the 1–10 complexity rating of a workflow.
type ComplexityAssessment struct {
	Score       int      `json:"score"`
	Level       string   `json:"level"`
	Factors     []string `json:"factors"`
	Description string   `json:"description"`
}

// Bottleneck is a detected slowdown in a workflow.
type Bottleneck struct {
	Type        string `json:"type"`
	Indicator   string `json:"indicator"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
}

// Optimization is a suggested improvement.
type Optimization struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Effort      string `json:"effort"`
	TimeSavings string `json:"timeSavings"`
}

// CostBenefit estimates the savings from automating a workflow.
type CostBenefit struct {
	ManualHoursPerExecution    float64 `json:"manualHoursPerExecution"`
	AutomatedHoursPerExecution float64 `json:"automatedHoursPerExecution"`
	TimeSavedPercentage        int     `json:"timeSavedPercentage"`
	MonthlyTimeSavingsHours    float64 `json:"monthlyTimeSavingsHours"`
	MonthlyCostSavings         float64 `json:"monthlyCostSavings"`
	AnnualCostSavings          float64 `json:"annualCostSavings"`
	ROIMonths                  int     `json:"roiMonths"`
}

// Risk is one identified workflow risk.
type Risk struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Mitigation  string `json:"mitigation"`
}

// RiskAssessment aggregates identified risks.
type RiskAssessment struct {
	Score int    `json:"score"`
	Level string `json:"level"`
	Risks []Risk `json:"identifiedRisks"`
}

// HealthScore is the overall 0–100 workflow health rating.
type HealthScore struct {
	Score          int    `json:"score"`
	Status         string `json:"status"`
	Recommendation string `json:"recommendation"`
}

// Insights is the full heuristic health report for a workflow.
type Insights struct {
	Complexity    ComplexityAssessment `json:"complexity"`
	Bottlenecks   []Bottleneck         `json:"bottlenecks"`
	Optimizations []Optimization       `json:"optimizations"`
	CostBenefit   CostBenefit          `json:"costBenefit"`
	Risks         RiskAssessment       `json:"risks"`
	Overall       HealthScore          `json:"overall"`
}

// ExecutionMetrics are observed metrics of a workflow run.
type ExecutionMetrics struct {
	CompletionHours float64   `json:"completionHours"`
	AgentCount      int       `json:"agentCount"`
	SuccessRate     float64   `json:"successRate"`
	ErrorCount      int       `json:"errorCount"`
	Timestamp       time.Time `json:"timestamp"`
}

// Anomaly is one deviation from the baseline.
type Anomaly struct {
	Type     string  `json:"type"`
	Severity string  `json:"severity"`
	Details  string  `json:"details"`
	Baseline float64 `json:"baseline"`
}

// AnomalyReport is the result of anomaly detection.
type AnomalyReport struct {
	IsAnomaly      bool      `json:"isAnomaly"`
	Score          float64   `json:"anomalyScore"`
	Severity       string    `json:"severity"`
	Anomalies      []Anomaly `json:"anomaliesDetected"`
	Recommendation string    `json:"recommendation,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// ── Persisted Records ───────────────────────────────────────

// WorkflowRecord is a saved analysis owned by a user.
type WorkflowRecord struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Source      string         `json:"source"`
	Analysis    AnalysisResult `json:"analysis"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// PredictionRecord is one entry of a user's prediction history.
type PredictionRecord struct {
	ID        string             `json:"id"`
	UserID    string             `json:"userId"`
	Scenario  PredictionScenario `json:"scenario"`
	Result    PredictionResult   `json:"result"`
	CreatedAt time.Time          `json:"createdAt"`
}

// ExecutionLog is one observed agent execution of a workflow run.
type ExecutionLog struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	WorkflowID string    `json:"workflowId,omitempty"`
	AgentID    string    `json:"agentId,omitempty"`
	AgentRole  string    `json:"agentRole,omitempty"`
	LatencyMs  int       `json:"latencyMs"`
	Success    bool      `json:"success"`
	CostUSD    float64   `json:"costUsd"`
	Error      string    `json:"error,omitempty"`
	ExecutedAt time.Time `json:"executedAt"`
}

// ── Execution Telemetry ─────────────────────────────────────

// AgentPerformance aggregates the executions of one agent role.
type AgentPerformance struct {
	Name         string  `json:"name"`
	SuccessRate  float64 `json:"successRate"`
	AvgLatencyMs int     `json:"avgLatencyMs"`
	Executions   int     `json:"executions"`
	Status       string  `json:"status"`
}

// ExecutionROI estimates the value of the automated executions.
type ExecutionROI struct {
	HoursSaved   int     `json:"hoursSaved"`
	CostSavedUSD float64 `json:"costSavedUsd"`
}

// ExecutionTelemetry is the aggregate of a user's executions over a window.
type ExecutionTelemetry struct {
	TimeRange        string             `json:"timeRange"`
	GeneratedAt      time.Time          `json:"generatedAt"`
	TotalExecutions  int                `json:"totalExecutions"`
	SuccessRate      float64            `json:"successRate"`
	ErrorRate        float64            `json:"errorRate"`
	AvgLatencyMs     int                `json:"avgLatencyMs"`
	ThroughputPerMin float64            `json:"throughputPerMin"`
	TotalCostUSD     float64            `json:"totalCostUsd"`
	ROI              ExecutionROI       `json:"roi"`
	Agents           []AgentPerformance `json:"agentPerformance"`
	ExecutionVolume  []int              `json:"executionVolume"`
}
