package executions

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cognifloe/control-plane/pkg/models"
)

const (
	minLatencyMs = 50
	maxLatencyMs = 500
	minCostUSD   = 0.001
	maxCostUSD   = 0.01

	// Used for agents whose template carries no performance metric.
	defaultSuccessRate = 0.95
)

// Simulator produces plausible execution logs for a workflow run, one per
// agent. An agent succeeds with the probability given by its template's
// performance metric.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a simulator. Equal seeds yield equal runs.
func NewSimulator(seed uint64) *Simulator {
	return &Simulator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Run simulates one execution of every agent at time at.
func (s *Simulator) Run(userID, workflowID string, agents []*models.AgentTemplate, at time.Time) []models.ExecutionLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ExecutionLog, 0, len(agents))
	for _, a := range agents {
		if a == nil {
			continue
		}
		p := defaultSuccessRate
		if a.PerformanceMetric > 0 {
			p = float64(a.PerformanceMetric) / 100
		}
		l := models.ExecutionLog{
			ID:         uuid.New().String(),
			UserID:     userID,
			WorkflowID: workflowID,
			AgentID:    a.ID,
			AgentRole:  a.Role,
			LatencyMs:  minLatencyMs + s.rng.IntN(maxLatencyMs-minLatencyMs+1),
			Success:    s.rng.Float64() < p,
			CostUSD:    round(minCostUSD+s.rng.Float64()*(maxCostUSD-minCostUSD), 4),
			ExecutedAt: at.UTC(),
		}
		if !l.Success {
			l.Error = "simulated failure"
		}
		out = append(out, l)
	}
	return out
}
