// Package coordinator runs the dual-path strategy: ask the remote service
// first and, on any failure, answer with the local engine. Callers always
// receive a result, tagged with the path that produced it.
package coordinator

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cognifloe/control-plane/internal/remote"
	"github.com/cognifloe/control-plane/internal/scoring"
	"github.com/cognifloe/control-plane/internal/workflow"
	"github.com/cognifloe/control-plane/pkg/models"
)

var tracer = otel.Tracer("cognifloe-coordinator")

// Coordinator chooses between the remote service and the local engine.
type Coordinator struct {
	remote   *remote.Client
	analyzer *workflow.Analyzer
	timeout  time.Duration
}

// New creates a coordinator. A nil or unconfigured client makes every call
// local. timeout bounds each remote call; zero means no extra bound.
func New(client *remote.Client, analyzer *workflow.Analyzer, timeout time.Duration) *Coordinator {
	return &Coordinator{remote: client, analyzer: analyzer, timeout: timeout}
}

// RemoteConfigured reports whether remote calls will be attempted.
func (c *Coordinator) RemoteConfigured() bool {
	return c.remote.Configured()
}

// Predict scores a scenario. It never fails.
func (c *Coordinator) Predict(ctx context.Context, s models.PredictionScenario) Outcome[models.PredictionResult] {
	ctx, span := tracer.Start(ctx, "coordinator.Predict",
		trace.WithAttributes(attribute.String("cognifloe.tier", string(s.ComplexityTier))))
	defer span.End()

	res, err := c.predictRemote(ctx, s)
	if err == nil {
		span.SetAttributes(attribute.String("cognifloe.source", string(SourceRemote)))
		return Remote(*res)
	}

	c.recordFallback(span, "predict", err)
	return Local(scoring.Predict(s), err)
}

// Analyze analyzes a described process. It never fails.
func (c *Coordinator) Analyze(ctx context.Context, req models.AnalysisRequest) Outcome[*models.AnalysisResult] {
	ctx, span := tracer.Start(ctx, "coordinator.Analyze",
		trace.WithAttributes(attribute.Int("cognifloe.files", len(req.Files))))
	defer span.End()

	res, err := c.analyzeRemote(ctx, req)
	if err == nil {
		span.SetAttributes(attribute.String("cognifloe.source", string(SourceRemote)))
		return Remote(res)
	}

	c.recordFallback(span, "analyze", err)
	return Local(c.analyzer.Analyze(req), err)
}

func (c *Coordinator) predictRemote(ctx context.Context, s models.PredictionScenario) (*models.PredictionResult, error) {
	if !c.remote.Configured() {
		return nil, remote.ErrNotConfigured
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.remote.Predict(ctx, s)
}

func (c *Coordinator) analyzeRemote(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	if !c.remote.Configured() {
		return nil, remote.ErrNotConfigured
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	a, err := c.remote.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	steps := workflow.NormalizeSteps(a.Steps)
	return &models.AnalysisResult{
		SuggestedAgents:   a.Agents,
		WorkflowSteps:     steps,
		AutomationDetails: workflow.Automation(steps, a.Agents),
	}, nil
}

func (c *Coordinator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Coordinator) recordFallback(span trace.Span, op string, err error) {
	span.SetAttributes(attribute.String("cognifloe.source", string(SourceLocal)))
	if errors.Is(err, remote.ErrNotConfigured) {
		log.Debug().Str("op", op).Msg("Remote service not configured, using local engine")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "remote call failed")
	log.Warn().
		Str("op", op).
		Str("source", string(SourceLocal)).
		Err(err).
		Msg("Remote call failed, falling back to local engine")
}
