package configuration

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load resolves the node configuration from viper, which the serve command
// has bound to flags and the process environment (NODE_TYPE, FOLLOWER_URLS,
// WRITE_QUORUM, MIN_DELAY, MAX_DELAY, ...). Local .env files are read first
// so container and development setups share the same surface.
func Load() (*Properties, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	p := &Properties{
		Role:                  Role(viper.GetString("node-type")),
		Port:                  viper.GetInt("port"),
		MetricsPort:           viper.GetInt("metrics-port"),
		LogLevel:              viper.GetString("log-level"),
		LeaderURL:             viper.GetString("leader-url"),
		FollowerURLs:          SplitURLList(viper.GetString("follower-urls")),
		WriteQuorum:           viper.GetInt("write-quorum"),
		MinDelayMs:            viper.GetInt("min-delay"),
		MaxDelayMs:            viper.GetInt("max-delay"),
		ReplicationTimeoutSec: viper.GetInt("replication-timeout"),
	}

	if path := viper.GetString("cluster-config"); path != "" {
		topo, err := LoadTopology(path)
		if err != nil {
			return nil, err
		}
		// the flag default must not shadow the file's quorum
		if !viper.IsSet("write-quorum") && topo.Cluster.WriteQuorum > 0 {
			p.WriteQuorum = topo.Cluster.WriteQuorum
		}
		p.mergeTopology(topo)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}
