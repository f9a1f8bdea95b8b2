package configuration

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Role selects the node's behavior. All nodes run the same binary.
type Role string

const (
	RoleLeader   Role = "leader"
	RoleFollower Role = "follower"
)

// Properties is the validated node configuration. Writes are admitted on the
// leader only; the follower list and quorum are meaningful on the leader.
type Properties struct {
	Role Role

	Port        int
	MetricsPort int
	LogLevel    string

	// LeaderURL is informational on followers.
	LeaderURL    string
	FollowerURLs []string
	WriteQuorum  int

	// Simulated network lag per replication attempt, inclusive bounds.
	MinDelayMs int
	MaxDelayMs int

	ReplicationTimeoutSec int
}

func (p *Properties) IsLeader() bool { return p.Role == RoleLeader }

func (p *Properties) ListenAddr() string { return fmt.Sprintf(":%d", p.Port) }

func (p *Properties) MetricsAddr() string { return fmt.Sprintf(":%d", p.MetricsPort) }

func (p *Properties) MinDelay() time.Duration {
	return time.Duration(p.MinDelayMs) * time.Millisecond
}

func (p *Properties) MaxDelay() time.Duration {
	return time.Duration(p.MaxDelayMs) * time.Millisecond
}

func (p *Properties) ReplicationTimeout() time.Duration {
	return time.Duration(p.ReplicationTimeoutSec) * time.Second
}

// Validate rejects configurations that must never reach the serving path:
// unknown roles, quorums outside [1, len(followers)], unparsable follower
// URLs and inverted delay bounds.
func (p *Properties) Validate() error {
	if p.Role != RoleLeader && p.Role != RoleFollower {
		return fmt.Errorf("invalid node type %q (expected leader or follower)", p.Role)
	}
	if p.Port <= 0 || p.Port > 65535 {
		return fmt.Errorf("invalid port %d", p.Port)
	}
	if p.MinDelayMs < 0 {
		return fmt.Errorf("min delay must not be negative, got %d", p.MinDelayMs)
	}
	if p.MaxDelayMs < p.MinDelayMs {
		return fmt.Errorf("max delay %d ms is below min delay %d ms", p.MaxDelayMs, p.MinDelayMs)
	}
	if p.ReplicationTimeoutSec <= 0 {
		return fmt.Errorf("replication timeout must be positive, got %d", p.ReplicationTimeoutSec)
	}

	if p.IsLeader() {
		if len(p.FollowerURLs) == 0 {
			return fmt.Errorf("leader requires at least one follower URL")
		}
		for _, raw := range p.FollowerURLs {
			u, err := url.Parse(raw)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("invalid follower URL %q", raw)
			}
		}
		if p.WriteQuorum < 1 || p.WriteQuorum > len(p.FollowerURLs) {
			return fmt.Errorf("write quorum %d out of range [1, %d]", p.WriteQuorum, len(p.FollowerURLs))
		}
	}

	return nil
}

// String renders the configuration for the startup log.
func (p *Properties) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(strings.ToUpper(title))
		sb.WriteString("\n")
	}
	addField := func(name, value string) {
		fmt.Fprintf(&sb, "  %-22s: %s\n", name, value)
	}

	addSection("Node")
	addField("Role", string(p.Role))
	addField("Port", fmt.Sprintf("%d", p.Port))
	addField("Metrics Port", fmt.Sprintf("%d", p.MetricsPort))
	addField("Log Level", p.LogLevel)

	if p.IsLeader() {
		addSection("Replication")
		addField("Write Quorum", fmt.Sprintf("%d of %d followers", p.WriteQuorum, len(p.FollowerURLs)))
		addField("Simulated Delay", fmt.Sprintf("%d-%d ms", p.MinDelayMs, p.MaxDelayMs))
		addField("Attempt Timeout", fmt.Sprintf("%d sec", p.ReplicationTimeoutSec))
		for i, f := range p.FollowerURLs {
			addField(fmt.Sprintf("Follower %d", i+1), f)
		}
	} else if p.LeaderURL != "" {
		addSection("Replication")
		addField("Leader", p.LeaderURL)
	}

	return sb.String()
}

// SplitURLList parses a comma-separated URL list, dropping empty elements.
func SplitURLList(raw string) []string {
	var urls []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}
