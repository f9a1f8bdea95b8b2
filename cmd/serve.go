package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"replikv/internal/configuration"
	"replikv/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a replikv node",
	Long: `Start a replikv node with the given configuration. Every flag can
also be set through the environment: the variable name is the flag
name in upper case with dashes replaced by underscores (e.g.
NODE_TYPE, FOLLOWER_URLS, WRITE_QUORUM, MIN_DELAY, MAX_DELAY).`,
	PreRunE: bindConfig,
	RunE:    runServe,
	// configuration errors are self-explanatory, a usage dump only buries them
	SilenceUsage: true,
}

func init() {
	serveCmd.Flags().String("node-type", "follower", "role of this node (leader, follower)")
	serveCmd.Flags().Int("port", 8080, "port the HTTP API listens on")
	serveCmd.Flags().Int("metrics-port", 9090, "port for the Prometheus endpoint (0 disables)")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	serveCmd.Flags().String("leader-url", "", "base URL of the leader (followers, informational)")
	serveCmd.Flags().String("follower-urls", "", "comma-separated follower base URLs (leader only)")
	serveCmd.Flags().Int("write-quorum", 3, "follower acks required before a write succeeds (leader only)")
	serveCmd.Flags().Int("min-delay", 0, "lower bound of the simulated replication delay in ms")
	serveCmd.Flags().Int("max-delay", 1000, "upper bound of the simulated replication delay in ms")
	serveCmd.Flags().Int("replication-timeout", 5, "per-attempt replication timeout in seconds")
	serveCmd.Flags().String("cluster-config", "", "optional YAML topology file with ${ENV} interpolation")
}

// bindConfig wires the flags into viper and lets matching environment
// variables override them.
func bindConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	return nil
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := configuration.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		return err
	}

	logging.Init(cfg.LogLevel)
	slog.Info("starting node")
	slog.Info(cfg.String())

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	svc := newServices(cfg)
	svc.Start()

	slog.Info("node ready", "role", cfg.Role, "addr", cfg.ListenAddr())
	<-ctx.Done()

	slog.Info("shutting down")
	svc.Stop()
	return nil
}
