package main

import (
	"replikv/internal/configuration"
	"replikv/internal/domain"
	"replikv/internal/metrics"
	"replikv/internal/replication"
	"replikv/internal/store"
	"replikv/internal/transport"
)

type services struct {
	store         *store.Store
	server        *transport.Server
	metricsServer *metrics.Server
}

// newServices wires one node. Followers carry no coordinator; their write
// routes are rejected before dispatch.
func newServices(cfg *configuration.Properties) *services {
	kv := store.NewStore()

	var coordinator domain.Coordinator
	if cfg.IsLeader() {
		client := replication.NewHTTPClient(cfg.ReplicationTimeout())
		dispatcher := replication.NewDispatcher(cfg, client)
		coordinator = replication.NewCoordinator(kv, dispatcher, cfg.WriteQuorum)
	}

	svc := &services{
		store:  kv,
		server: transport.NewServer(cfg, kv, coordinator),
	}
	if cfg.MetricsPort > 0 {
		svc.metricsServer = metrics.NewServer(cfg.MetricsAddr())
	}
	return svc
}

func (s *services) Start() {
	if s.metricsServer != nil {
		s.metricsServer.Start()
	}
	s.server.Start()
}

func (s *services) Stop() {
	s.server.Stop()
	if s.metricsServer != nil {
		s.metricsServer.Stop()
	}
}
