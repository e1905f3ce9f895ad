// Package server assembles the CogniFloe control plane: storage, the
// analysis coordinator, the retention janitor and the HTTP API.
//
// Usage:
//
//	cfg := config.Load()
//	srv, err := server.New(ctx, cfg)
//	defer srv.Close(ctx)
//	http.ListenAndServe(fmt.Sprintf(":%d", srv.Port), srv.Handler)
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/cognifloe/control-plane/internal/api"
	"github.com/cognifloe/control-plane/internal/api/handlers"
	"github.com/cognifloe/control-plane/internal/catalog"
	"github.com/cognifloe/control-plane/internal/config"
	"github.com/cognifloe/control-plane/internal/coordinator"
	"github.com/cognifloe/control-plane/internal/notify"
	"github.com/cognifloe/control-plane/internal/remote"
	"github.com/cognifloe/control-plane/internal/retention"
	"github.com/cognifloe/control-plane/internal/store"
	"github.com/cognifloe/control-plane/internal/telemetry"
	"github.com/cognifloe/control-plane/internal/workflow"
)

// Server holds the initialized control plane.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	Store  store.Store
	Config *config.Config
	Port   int

	stopJanitor       context.CancelFunc
	janitorDone       chan struct{}
	shutdownTelemetry func(context.Context) error
}

// New initializes every component and starts the retention janitor. The
// janitor runs until Close is called.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	dataStore, err := store.Open(cfg.Store.Backend, cfg.Store.DataDir)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Info().
		Str("backend", cfg.Store.Backend).
		Str("data_dir", cfg.Store.DataDir).
		Msg("Store initialized")

	cat := catalog.Default()
	client := remote.NewClient(cfg.Remote.URL, cfg.Remote.APIKey, cfg.Remote.Timeout)
	coord := coordinator.New(client, workflow.NewAnalyzer(cat), cfg.Remote.Timeout)
	if coord.RemoteConfigured() {
		log.Info().Str("url", client.BaseURL()).Dur("timeout", cfg.Remote.Timeout).Msg("Remote analysis service configured")
	} else {
		log.Info().Msg("No remote analysis service configured; using the local engine")
	}

	var archiver retention.Archiver
	if cfg.Retention.Archive {
		archiver = retention.NewLocalFileArchiver(cfg.ArchiveDir(), cfg.Retention.Compress)
	}
	janitor := retention.NewJanitor(dataStore, cfg.Retention.PredictionTTL, cfg.Retention.Interval, archiver)

	jctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		janitor.Start(jctx)
	}()

	h := handlers.New(dataStore, cat, coord, cfg.Version)
	if cfg.Alerts.WebhookURL != "" {
		h.Notifier = notify.NewWebhookNotifier(cfg.Alerts.WebhookURL, cfg.Alerts.WebhookSecret, 0)
		log.Info().Msg("Anomaly alerts enabled")
	}

	return &Server{
		Handler:           api.NewRouter(cfg, h),
		Store:             dataStore,
		Config:            cfg,
		Port:              cfg.Port,
		stopJanitor:       cancel,
		janitorDone:       done,
		shutdownTelemetry: shutdown,
	}, nil
}

// Close stops the janitor, flushes traces and closes the store.
func (s *Server) Close(ctx context.Context) error {
	s.stopJanitor()
	<-s.janitorDone
	return errors.Join(s.shutdownTelemetry(ctx), s.Store.Close())
}
