package configuration

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"replikv/internal/configuration/util"
)

// Topology mirrors the optional cluster topology file. It carries the static
// cluster shape so deployments can share one file across nodes instead of
// repeating the follower list in every environment. ${NAME} references are
// interpolated from the environment before parsing.
//
//	cluster:
//	  leader: http://leader:8080
//	  followers:
//	    - http://follower1:8080
//	    - http://follower2:8080
//	  write-quorum: 3
type Topology struct {
	Cluster struct {
		Leader      string   `yaml:"leader"`
		Followers   []string `yaml:"followers"`
		WriteQuorum int      `yaml:"write-quorum"`
	} `yaml:"cluster"`
}

// LoadTopology reads and interpolates a topology file.
func LoadTopology(path string) (*Topology, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topology file: %w", err)
	}

	expanded, err := util.ExpandEnvStrict(string(raw))
	if err != nil {
		return nil, fmt.Errorf("interpolate topology file %s: %w", path, err)
	}

	var topo Topology
	if err := yaml.Unmarshal([]byte(expanded), &topo); err != nil {
		return nil, fmt.Errorf("parse topology file %s: %w", path, err)
	}

	return &topo, nil
}

// mergeTopology fills cluster fields the environment left unset.
func (p *Properties) mergeTopology(topo *Topology) {
	if p.LeaderURL == "" {
		p.LeaderURL = topo.Cluster.Leader
	}
	if len(p.FollowerURLs) == 0 {
		p.FollowerURLs = topo.Cluster.Followers
	}
	if p.WriteQuorum == 0 {
		p.WriteQuorum = topo.Cluster.WriteQuorum
	}
}
