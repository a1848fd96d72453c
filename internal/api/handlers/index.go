package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/modguard/modguard/internal/queue"
	"github.com/modguard/modguard/internal/refindex"
)

// IndexHandler manages the reference entry index: background seeding
// from dataset files, synchronous upserts, stats, and label removal.
type IndexHandler struct {
	loader *refindex.Loader
	store  refindex.Store
	queue  *queue.Client
}

func NewIndexHandler(loader *refindex.Loader, store refindex.Store, qc *queue.Client) *IndexHandler {
	return &IndexHandler{loader: loader, store: store, queue: qc}
}

func (h *IndexHandler) Seed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DatasetPath string `json:"dataset_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.DatasetPath == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dataset_path required"})
		return
	}

	requestID := uuid.NewString()
	err := h.queue.EnqueueIndexSeed(queue.IndexSeedPayload{
		RequestID:   requestID,
		DatasetPath: req.DatasetPath,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "request_id": requestID})
}

func (h *IndexHandler) UpsertEntries(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label   string   `json:"label"`
		Phrases []string `json:"phrases"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Label == "" || len(req.Phrases) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "label and phrases required"})
		return
	}

	count, err := h.loader.LoadEntries(r.Context(), req.Label, req.Phrases)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"label": req.Label, "inserted": count})
}

func (h *IndexHandler) Stats(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.Count(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"entries": count})
}

func (h *IndexHandler) DeleteLabel(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")
	if label == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "label required"})
		return
	}

	if err := h.store.DeleteLabel(r.Context(), label); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
