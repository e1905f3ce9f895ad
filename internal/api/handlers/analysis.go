package handlers

import (
	"net/http"

	"github.com/cognifloe/control-plane/internal/api/middleware"
	"github.com/cognifloe/control-plane/internal/insights"
	"github.com/cognifloe/control-plane/pkg/models"
)

// AnalysisResponse wraps an analysis with its provenance. Generation must be
// echoed back when the result is saved as a workflow.
type AnalysisResponse struct {
	Result     *models.AnalysisResult `json:"result"`
	Source     string                 `json:"source"`
	Advisory   string                 `json:"advisory,omitempty"`
	Generation uint64                 `json:"generation"`
}

type insightsRequest struct {
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
}

// Analyze runs the dual-path workflow analysis for the calling user.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalysisRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	gen := h.Generations.Begin(middleware.GetUser(r.Context()))
	out := h.Coordinator.Analyze(r.Context(), req)

	respondJSON(w, http.StatusOK, AnalysisResponse{
		Result:     out.Value(),
		Source:     string(out.Source()),
		Advisory:   out.Advisory(),
		Generation: gen,
	})
}

// Insights runs the heuristic workflow insights over a description and its
// steps.
func (h *Handlers) Insights(w http.ResponseWriter, r *http.Request) {
	var req insightsRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, insights.Analyze(req.Description, req.Steps))
}
