package helper

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"replikv/internal/configuration"
	"replikv/internal/domain"
	"replikv/internal/logging"
	"replikv/internal/replication"
	"replikv/internal/store"
	"replikv/internal/transport"
)

var initOnce sync.Once

// Config shapes one in-process cluster.
type Config struct {
	Followers   int
	WriteQuorum int
	MinDelayMs  int
	MaxDelayMs  int
}

var DefaultConfig = Config{
	Followers:   5,
	WriteQuorum: 3,
}

// Node is one in-process replikv node served over a real HTTP listener.
type Node struct {
	Cfg     *configuration.Properties
	Store   *store.Store
	Server  *httptest.Server
	blocked atomic.Bool
}

func (n *Node) URL() string { return n.Server.URL }

// Block makes the node fail every request with 503, emulating a paused
// container. Replication attempts against it count as failed acks.
func (n *Node) Block() { n.blocked.Store(true) }

func (n *Node) Unblock() { n.blocked.Store(false) }

// Cluster is one leader plus N followers wired over loopback HTTP.
type Cluster struct {
	t         *testing.T
	Leader    *Node
	Followers []*Node
}

func NewCluster(t *testing.T, cfg *Config) *Cluster {
	initOnce.Do(func() {
		logging.Init("error")
	})

	actual := DefaultConfig
	if cfg != nil {
		actual = *cfg
	}

	c := &Cluster{t: t}

	for i := 0; i < actual.Followers; i++ {
		c.Followers = append(c.Followers, newNode(t, &configuration.Properties{
			Role: configuration.RoleFollower,
			Port: 8080,
		}, nil))
	}

	leaderCfg := &configuration.Properties{
		Role:                  configuration.RoleLeader,
		Port:                  8080,
		WriteQuorum:           actual.WriteQuorum,
		MinDelayMs:            actual.MinDelayMs,
		MaxDelayMs:            actual.MaxDelayMs,
		ReplicationTimeoutSec: 2,
	}
	for _, f := range c.Followers {
		leaderCfg.FollowerURLs = append(leaderCfg.FollowerURLs, f.URL())
	}
	require.NoError(t, leaderCfg.Validate())

	c.Leader = newNode(t, leaderCfg, func(kv *store.Store) domain.Coordinator {
		client := replication.NewHTTPClient(leaderCfg.ReplicationTimeout())
		dispatcher := replication.NewDispatcher(leaderCfg, client)
		return replication.NewCoordinator(kv, dispatcher, leaderCfg.WriteQuorum)
	})

	return c
}

func newNode(t *testing.T, cfg *configuration.Properties, wire func(*store.Store) domain.Coordinator) *Node {
	t.Helper()

	n := &Node{
		Cfg:   cfg,
		Store: store.NewStore(),
	}

	var coordinator domain.Coordinator
	if wire != nil {
		coordinator = wire(n.Store)
	}

	inner := transport.NewHandler(cfg, n.Store, coordinator)
	n.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if n.blocked.Load() {
			http.Error(w, "node unavailable", http.StatusServiceUnavailable)
			return
		}
		inner.ServeHTTP(w, r)
	}))
	t.Cleanup(n.Server.Close)

	return n
}

// Write posts a write to the given node and returns status and decoded body.
func (c *Cluster) Write(node *Node, key, value string) (int, map[string]any) {
	c.t.Helper()

	payload, err := json.Marshal(map[string]string{"key": key, "value": value})
	require.NoError(c.t, err)

	resp, err := http.Post(node.URL()+"/write", "application/json", bytes.NewReader(payload))
	require.NoError(c.t, err)

	return decode(c.t, resp)
}

// Delete issues a delete against the given node.
func (c *Cluster) Delete(node *Node, key string) (int, map[string]any) {
	c.t.Helper()

	req, err := http.NewRequest(http.MethodDelete, node.URL()+"/delete/"+key, nil)
	require.NoError(c.t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)

	return decode(c.t, resp)
}

// Read fetches a key from the given node.
func (c *Cluster) Read(node *Node, key string) (int, map[string]any) {
	c.t.Helper()

	body, err := c.tryRead(node, key)
	require.NoError(c.t, err)
	return http.StatusOK, body
}

// Replicate injects a raw replication message into one follower.
func (c *Cluster) Replicate(node *Node, msg map[string]any) (int, map[string]any) {
	c.t.Helper()

	payload, err := json.Marshal(msg)
	require.NoError(c.t, err)

	resp, err := http.Post(node.URL()+"/replicate", "application/json", bytes.NewReader(payload))
	require.NoError(c.t, err)

	return decode(c.t, resp)
}

// AwaitConvergence waits until check passes for the read result of key on
// every unblocked follower.
func (c *Cluster) AwaitConvergence(key string, check func(body map[string]any) bool) {
	c.t.Helper()

	require.Eventually(c.t, func() bool {
		for _, f := range c.Followers {
			if f.blocked.Load() {
				continue
			}
			body, err := c.tryRead(f, key)
			if err != nil || !check(body) {
				return false
			}
		}
		return true
	}, 5*time.Second, 10*time.Millisecond, "followers did not converge on key %q", key)
}

func (c *Cluster) tryRead(node *Node, key string) (map[string]any, error) {
	resp, err := http.Get(node.URL() + "/read/" + key)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body, nil
}

func decode(t *testing.T, resp *http.Response) (int, map[string]any) {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

// Num extracts a numeric field from a decoded JSON body.
func Num(t *testing.T, body map[string]any, field string) int {
	t.Helper()
	v, ok := body[field].(float64)
	require.True(t, ok, "field %s missing or not numeric in %v", field, body)
	return int(v)
}
