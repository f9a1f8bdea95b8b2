package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"replikv/internal/domain"
	"replikv/internal/metrics"
)

// ReplicationHandler is the follower-side ingest for the leader's fan-out.
// Stale and redelivered messages are acknowledged with 200 exactly like
// fresh ones; a non-200 for a drop would make the leader miss a quorum it
// logically holds.
type ReplicationHandler struct {
	store domain.Store
}

func NewReplicationHandler(store domain.Store) *ReplicationHandler {
	return &ReplicationHandler{store: store}
}

func (h *ReplicationHandler) Replicate(w http.ResponseWriter, r *http.Request) {
	var msg domain.ReplicationMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		Error(w, http.StatusBadRequest, "malformed replication message")
		return
	}
	if msg.Key == "" || msg.Version == 0 {
		Error(w, http.StatusBadRequest, "key and version are required")
		return
	}

	applied := h.store.ApplyRemote(msg.Key, msg.Value, msg.Version, msg.Delete)

	outcome := "applied"
	if !applied {
		outcome = "stale"
		slog.Debug("dropped stale replication message", "key", msg.Key, "version", msg.Version)
	}
	metrics.IngestTotal.WithLabelValues(outcome).Inc()
	metrics.StoreKeysTotal.Set(float64(h.store.Len()))
	metrics.StoreVersion.Set(float64(h.store.CurrentVersion()))

	JSON(w, http.StatusOK, map[string]string{"status": "replicated"})
}
