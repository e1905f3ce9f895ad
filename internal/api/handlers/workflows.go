package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cognifloe/control-plane/internal/api/middleware"
	"github.com/cognifloe/control-plane/internal/store"
	"github.com/cognifloe/control-plane/pkg/models"
)

// SaveWorkflowRequest persists an analysis the caller accepted.
// Generation is the value returned with that analysis; a save carrying an
// outdated generation is rejected so a slow response can never overwrite a
// newer one. Zero skips the check.
type SaveWorkflowRequest struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Source      string                `json:"source"`
	Generation  uint64                `json:"generation"`
	Analysis    models.AnalysisResult `json:"analysis"`
}

func (h *Handlers) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.ListWorkflows(r.Context(), middleware.GetUser(r.Context()))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if recs == nil {
		recs = []models.WorkflowRecord{}
	}
	respondJSON(w, http.StatusOK, recs)
}

func (h *Handlers) SaveWorkflow(w http.ResponseWriter, r *http.Request) {
	var req SaveWorkflowRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	user := middleware.GetUser(r.Context())
	if !h.Generations.IsCurrent(user, req.Generation) {
		respondError(w, http.StatusConflict, "a newer analysis exists for this user; re-run the analysis before saving")
		return
	}

	rec := &models.WorkflowRecord{
		ID:          uuid.New().String(),
		UserID:      user,
		Name:        req.Name,
		Description: req.Description,
		Source:      req.Source,
		Analysis:    req.Analysis,
		CreatedAt:   h.now().UTC(),
	}
	if err := h.Store.SaveWorkflow(r.Context(), rec); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

func (h *Handlers) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.GetWorkflow(r.Context(), middleware.GetUser(r.Context()), chi.URLParam(r, "workflowId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *Handlers) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workflowId")
	if err := h.Store.DeleteWorkflow(r.Context(), middleware.GetUser(r.Context()), id); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAgents returns the caller's agent roster: every agent across their
// saved workflows, deduplicated by template id.
func (h *Handlers) ListAgents(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.ListWorkflows(r.Context(), middleware.GetUser(r.Context()))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, store.MergeAgents(recs))
}

func queryInt(r *http.Request, key string, fallback int) (int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
