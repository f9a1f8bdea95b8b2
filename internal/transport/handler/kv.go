package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"replikv/internal/domain"
	"replikv/internal/replication"
)

// KVHandler serves the client-facing key/value operations. Writes and
// deletes run through the coordinator; reads hit the local store directly on
// any node and may trail the leader by in-flight replication delay.
type KVHandler struct {
	coordinator domain.Coordinator
	store       domain.Store
}

func NewKVHandler(coordinator domain.Coordinator, store domain.Store) *KVHandler {
	return &KVHandler{
		coordinator: coordinator,
		store:       store,
	}
}

type writeRequest struct {
	Key   *string `json:"key"`
	Value *string `json:"value"`
}

func (h *KVHandler) Write(w http.ResponseWriter, r *http.Request) {
	var req writeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if req.Key == nil || *req.Key == "" || req.Value == nil {
		Error(w, http.StatusBadRequest, "key and value are required")
		return
	}

	result, err := h.coordinator.Write(r.Context(), *req.Key, *req.Value)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        "write successful",
		"key":            *req.Key,
		"value":          *req.Value,
		"version":        result.Version,
		"quorum_reached": result.Acks,
	})
}

func (h *KVHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		Error(w, http.StatusBadRequest, "key is required")
		return
	}

	result, err := h.coordinator.Delete(r.Context(), key)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        "delete successful",
		"key":            key,
		"version":        result.Version,
		"quorum_reached": result.Acks,
	})
}

func (h *KVHandler) Read(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	entry, found := h.store.Get(key)
	if !found {
		JSON(w, http.StatusOK, map[string]any{
			"key":   key,
			"value": nil,
			"found": false,
		})
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"key":     key,
		"value":   entry.Value,
		"version": entry.Version,
		"found":   true,
	})
}

func (h *KVHandler) writeFailure(w http.ResponseWriter, err error) {
	var quorumErr *replication.QuorumError
	switch {
	case errors.As(err, &quorumErr):
		JSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"acks":    quorumErr.Acks,
			"quorum":  quorumErr.Quorum,
		})
	case errors.Is(err, replication.ErrKeyNotFound):
		Error(w, http.StatusNotFound, "key does not exist")
	default:
		slog.Error("write pipeline failed", "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
