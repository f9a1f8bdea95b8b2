package transport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"replikv/internal/configuration"
	"replikv/internal/domain"
	"replikv/internal/transport/handler"
)

// Server is the client- and replication-facing HTTP surface of one node.
// Role gating happens per route: writes and deletes are admitted on the
// leader, replication ingest on followers, reads and introspection anywhere.
type Server struct {
	cfg        *configuration.Properties
	httpServer *http.Server
}

func NewServer(cfg *configuration.Properties, store domain.Store, coordinator domain.Coordinator) *Server {
	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:              cfg.ListenAddr(),
			Handler:           NewHandler(cfg, store, coordinator),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewHandler builds the routed handler without binding a listener, so tests
// can mount it on httptest servers.
func NewHandler(cfg *configuration.Properties, store domain.Store, coordinator domain.Coordinator) http.Handler {
	kv := handler.NewKVHandler(coordinator, store)
	repl := handler.NewReplicationHandler(store)
	node := handler.NewNodeHandler(cfg, store)

	mux := http.NewServeMux()
	mux.Handle("POST /write", instrument("/write", leaderOnly(cfg, kv.Write)))
	mux.Handle("DELETE /delete/{key}", instrument("/delete/{key}", leaderOnly(cfg, kv.Delete)))
	mux.Handle("GET /read/{key}", instrument("/read/{key}", kv.Read))
	mux.Handle("POST /replicate", instrument("/replicate", followerOnly(cfg, repl.Replicate)))
	mux.Handle("GET /health", instrument("/health", node.Health))
	mux.Handle("GET /{$}", instrument("/", node.Root))

	return mux
}

func (s *Server) Start() {
	slog.Info("http server starting", "addr", s.httpServer.Addr, "role", s.cfg.Role)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
		}
	}()
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}
	slog.Info("http server stopped")
}
