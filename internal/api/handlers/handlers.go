// Package handlers implements the HTTP handlers for the CogniFloe control
// plane. Handlers are thin: they decode the request, call the coordinator or
// one of the engine packages, and persist results through the Store.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cognifloe/control-plane/internal/catalog"
	"github.com/cognifloe/control-plane/internal/coordinator"
	"github.com/cognifloe/control-plane/internal/diagnostics"
	"github.com/cognifloe/control-plane/internal/executions"
	"github.com/cognifloe/control-plane/internal/notify"
	"github.com/cognifloe/control-plane/internal/store"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// Handlers holds all handler dependencies.
type Handlers struct {
	Store       store.Store
	Catalog     *catalog.Catalog
	Coordinator *coordinator.Coordinator
	Generations *coordinator.Tracker
	Diagnostics *diagnostics.Collector
	Simulator   *executions.Simulator
	Version     string

	// Notifier receives anomaly alerts. Nil disables alerting.
	Notifier notify.Notifier

	now func() time.Time
}

// New creates a Handlers instance with all dependencies.
func New(s store.Store, cat *catalog.Catalog, coord *coordinator.Coordinator, version string) *Handlers {
	return &Handlers{
		Store:       s,
		Catalog:     cat,
		Coordinator: coord,
		Generations: coordinator.NewTracker(),
		Diagnostics: diagnostics.NewCollector(),
		Simulator:   executions.NewSimulator(uint64(time.Now().UnixNano())),
		Version:     version,
		now:         time.Now,
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// decodeOptionalJSON is decodeJSON for routes whose zero-value request is
// meaningful. An empty body leaves v untouched.
func decodeOptionalJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("invalid JSON: %w", err)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps store errors to HTTP status codes.
func respondStoreError(w http.ResponseWriter, err error) {
	var nf *store.ErrNotFound
	if errors.As(err, &nf) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	log.Error().Err(err).Msg("Store operation failed")
	respondError(w, http.StatusInternalServerError, "storage error")
}
