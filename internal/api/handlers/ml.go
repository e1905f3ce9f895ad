package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/cognifloe/control-plane/internal/api/middleware"
	"github.com/cognifloe/control-plane/internal/coordinator"
	"github.com/cognifloe/control-plane/internal/insights"
	"github.com/cognifloe/control-plane/internal/notify"
	"github.com/cognifloe/control-plane/internal/scoring"
	"github.com/cognifloe/control-plane/pkg/models"
)

// PredictionResponse is a prediction plus the advisory shown when the local
// model answered.
type PredictionResponse struct {
	models.PredictionResult
	Advisory string `json:"advisory,omitempty"`
}

// PlanRequest asks for an analysis and a prediction of the same process.
type PlanRequest struct {
	Description    string                  `json:"description"`
	Files          []models.FileDescriptor `json:"files,omitempty"`
	Volume         int                     `json:"volume"`
	ComplexityTier string                  `json:"complexityTier"`
}

type PlanResponse struct {
	Analysis   AnalysisResponse   `json:"analysis"`
	Prediction PredictionResponse `json:"prediction"`
}

type predictRequest struct {
	Description    string `json:"description"`
	Volume         int    `json:"volume"`
	ComplexityTier string `json:"complexityTier"`
}

// Predict scores a scenario and records it in the caller's history.
func (h *Handlers) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Volume < 0 {
		respondError(w, http.StatusBadRequest, "volume must not be negative")
		return
	}

	scenario := models.PredictionScenario{
		Description:    req.Description,
		Volume:         req.Volume,
		ComplexityTier: models.ParseTier(req.ComplexityTier),
	}
	out := h.Coordinator.Predict(r.Context(), scenario)
	h.recordPrediction(r.Context(), scenario, out.Value())

	respondJSON(w, http.StatusOK, predictionResponse(out))
}

// Plan runs analysis and prediction for one description concurrently.
func (h *Handlers) Plan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Volume < 0 {
		respondError(w, http.StatusBadRequest, "volume must not be negative")
		return
	}

	ctx := r.Context()
	gen := h.Generations.Begin(middleware.GetUser(ctx))
	scenario := models.PredictionScenario{
		Description:    req.Description,
		Volume:         req.Volume,
		ComplexityTier: models.ParseTier(req.ComplexityTier),
	}

	var (
		analysis   coordinator.Outcome[*models.AnalysisResult]
		prediction coordinator.Outcome[models.PredictionResult]
	)
	// The coordinator always produces a result, so the only error is the
	// caller going away. Nothing is recorded or written in that case.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		analysis = h.Coordinator.Analyze(gctx, models.AnalysisRequest{Description: req.Description, Files: req.Files})
		return gctx.Err()
	})
	g.Go(func() error {
		prediction = h.Coordinator.Predict(gctx, scenario)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		log.Debug().Err(err).Str("user", middleware.GetUser(ctx)).Msg("Plan request abandoned")
		return
	}

	h.recordPrediction(ctx, scenario, prediction.Value())

	respondJSON(w, http.StatusOK, PlanResponse{
		Analysis: AnalysisResponse{
			Result:     analysis.Value(),
			Source:     string(analysis.Source()),
			Advisory:   analysis.Advisory(),
			Generation: gen,
		},
		Prediction: predictionResponse(prediction),
	})
}

// anomalyRequest is the wire shape of DetectAnomalies. Pointers tell a
// missing field apart from an explicit zero.
type anomalyRequest struct {
	CompletionHours *float64  `json:"completionHours"`
	AgentCount      *int      `json:"agentCount"`
	SuccessRate     *float64  `json:"successRate"`
	ErrorCount      *int      `json:"errorCount"`
	Timestamp       time.Time `json:"timestamp"`
}

// metrics validates the request and fills defaults: successRate 1.0,
// errorCount 0.
func (req anomalyRequest) metrics() (models.ExecutionMetrics, error) {
	var m models.ExecutionMetrics
	switch {
	case req.CompletionHours == nil:
		return m, errors.New("completionHours is required")
	case *req.CompletionHours < 0:
		return m, errors.New("completionHours must not be negative")
	case req.AgentCount == nil:
		return m, errors.New("agentCount is required")
	case *req.AgentCount < 0:
		return m, errors.New("agentCount must not be negative")
	}
	m.CompletionHours = *req.CompletionHours
	m.AgentCount = *req.AgentCount
	m.SuccessRate = 1.0
	if req.SuccessRate != nil {
		if *req.SuccessRate < 0 || *req.SuccessRate > 1 {
			return m, errors.New("successRate must be between 0 and 1")
		}
		m.SuccessRate = *req.SuccessRate
	}
	if req.ErrorCount != nil {
		if *req.ErrorCount < 0 {
			return m, errors.New("errorCount must not be negative")
		}
		m.ErrorCount = *req.ErrorCount
	}
	m.Timestamp = req.Timestamp
	return m, nil
}

// DetectAnomalies compares execution metrics to the default baseline. A
// missing timestamp is stamped with the current time.
func (h *Handlers) DetectAnomalies(w http.ResponseWriter, r *http.Request) {
	var req anomalyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := req.metrics()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = h.now().UTC()
	}
	report := insights.DetectAnomalies(m)
	if report.IsAnomaly {
		h.alert(r.Context(), report)
	}
	respondJSON(w, http.StatusOK, report)
}

// alert sends the report to the notifier in the background.
func (h *Handlers) alert(ctx context.Context, report models.AnomalyReport) {
	if h.Notifier == nil {
		return
	}
	ev := notify.Event{
		Type:      notify.EventAnomalyDetected,
		User:      middleware.GetUser(ctx),
		Payload:   report,
		Timestamp: report.Timestamp,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Minute)
		defer cancel()
		if err := h.Notifier.Notify(ctx, ev); err != nil {
			log.Warn().Err(err).Str("user", ev.User).Str("severity", report.Severity).Msg("Anomaly alert not delivered")
		}
	}()
}

func (h *Handlers) MLHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":           "healthy",
		"model":            scoring.Info().Name,
		"remoteConfigured": h.Coordinator.RemoteConfigured(),
		"system":           h.Diagnostics.Collect(),
	})
}

func (h *Handlers) ModelInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, scoring.Info())
}

// ListPredictions returns the caller's prediction history. ?limit=N caps
// the result (default 50, 0 for all).
func (h *Handlers) ListPredictions(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", 50)
	if !ok || limit < 0 {
		respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}
	recs, err := h.Store.ListPredictions(r.Context(), middleware.GetUser(r.Context()), limit)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if recs == nil {
		recs = []models.PredictionRecord{}
	}
	respondJSON(w, http.StatusOK, recs)
}

// recordPrediction stores a history entry. Failures are logged and do not
// affect the response.
func (h *Handlers) recordPrediction(ctx context.Context, s models.PredictionScenario, res models.PredictionResult) {
	rec := &models.PredictionRecord{
		ID:        uuid.New().String(),
		UserID:    middleware.GetUser(ctx),
		Scenario:  s,
		Result:    res,
		CreatedAt: h.now().UTC(),
	}
	if err := h.Store.RecordPrediction(context.WithoutCancel(ctx), rec); err != nil {
		log.Warn().Err(err).Str("user", rec.UserID).Msg("Failed to record prediction")
	}
}

func predictionResponse(out coordinator.Outcome[models.PredictionResult]) PredictionResponse {
	res := out.Value()
	res.Source = string(out.Source())
	return PredictionResponse{PredictionResult: res, Advisory: out.Advisory()}
}
