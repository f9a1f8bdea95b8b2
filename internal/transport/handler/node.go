package handler

import (
	"net/http"

	"replikv/internal/configuration"
	"replikv/internal/domain"
)

const serviceName = "replikv"

// NodeHandler serves the role-agnostic introspection endpoints.
type NodeHandler struct {
	cfg   *configuration.Properties
	store domain.Store
}

func NewNodeHandler(cfg *configuration.Properties, store domain.Store) *NodeHandler {
	return &NodeHandler{cfg: cfg, store: store}
}

func (h *NodeHandler) Health(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"node_type": string(h.cfg.Role),
	})
}

func (h *NodeHandler) Root(w http.ResponseWriter, _ *http.Request) {
	info := map[string]any{
		"service":      serviceName,
		"node_type":    h.cfg.Role,
		"storage_size": h.store.Len(),
		"version":      h.store.CurrentVersion(),
	}
	if h.cfg.IsLeader() {
		info["quorum"] = h.cfg.WriteQuorum
		info["followers"] = h.cfg.FollowerURLs
	} else if h.cfg.LeaderURL != "" {
		info["leader"] = h.cfg.LeaderURL
	}

	JSON(w, http.StatusOK, info)
}
