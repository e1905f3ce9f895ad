package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cognifloe/control-plane/internal/api/middleware"
	"github.com/cognifloe/control-plane/internal/executions"
	"github.com/cognifloe/control-plane/pkg/models"
)

// LogExecutionRequest records one agent execution. Success defaults to
// true and ExecutedAt to the time of the request.
type LogExecutionRequest struct {
	WorkflowID string    `json:"workflowId"`
	AgentID    string    `json:"agentId"`
	AgentRole  string    `json:"agentRole"`
	LatencyMs  int       `json:"latencyMs"`
	Success    *bool     `json:"success"`
	CostUSD    float64   `json:"costUsd"`
	Error      string    `json:"error"`
	ExecutedAt time.Time `json:"executedAt"`
}

// RunResponse lists the executions logged for a simulated run.
type RunResponse struct {
	WorkflowID       string                `json:"workflowId"`
	ExecutionsLogged int                   `json:"executionsLogged"`
	Executions       []models.ExecutionLog `json:"executions"`
}

func (req LogExecutionRequest) validate() error {
	switch {
	case req.LatencyMs < 0:
		return errors.New("latencyMs must not be negative")
	case req.CostUSD < 0:
		return errors.New("costUsd must not be negative")
	}
	return nil
}

// LogExecution appends an execution to the caller's log.
func (h *Handlers) LogExecution(w http.ResponseWriter, r *http.Request) {
	var req LogExecutionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec := &models.ExecutionLog{
		ID:         uuid.New().String(),
		UserID:     middleware.GetUser(r.Context()),
		WorkflowID: req.WorkflowID,
		AgentID:    req.AgentID,
		AgentRole:  req.AgentRole,
		LatencyMs:  req.LatencyMs,
		Success:    req.Success == nil || *req.Success,
		CostUSD:    req.CostUSD,
		Error:      req.Error,
		ExecutedAt: req.ExecutedAt.UTC(),
	}
	if req.ExecutedAt.IsZero() {
		rec.ExecutedAt = h.now().UTC()
	}
	if err := h.Store.LogExecution(r.Context(), rec); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

// Telemetry aggregates the caller's executions over ?range= (24h, 7d, 30d
// or 90d; default 7d).
func (h *Handlers) Telemetry(w http.ResponseWriter, r *http.Request) {
	name, window, err := executions.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := h.now().UTC()
	logs, err := h.Store.ListExecutions(r.Context(), middleware.GetUser(r.Context()), now.Add(-window))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, executions.Aggregate(logs, name, window, now))
}

// RunWorkflow simulates one run of a saved workflow and logs an execution
// per agent.
func (h *Handlers) RunWorkflow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(ctx)
	wf, err := h.Store.GetWorkflow(ctx, user, chi.URLParam(r, "workflowId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}

	logs := h.Simulator.Run(user, wf.ID, wf.Analysis.SuggestedAgents, h.now())
	for i := range logs {
		if err := h.Store.LogExecution(ctx, &logs[i]); err != nil {
			respondStoreError(w, err)
			return
		}
	}
	respondJSON(w, http.StatusCreated, RunResponse{
		WorkflowID:       wf.ID,
		ExecutionsLogged: len(logs),
		Executions:       logs,
	})
}
