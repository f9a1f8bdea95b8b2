package replication

import (
	"context"
	"errors"
	"sync"

	"replikv/internal/domain"
)

// fakeClient implements domain.ReplicationClient with per-follower behavior.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	// ReplicateFn decides the outcome for one attempt. Nil means ack.
	ReplicateFn func(ctx context.Context, followerURL string, msg domain.ReplicationMessage) error
}

func (c *fakeClient) Replicate(ctx context.Context, followerURL string, msg domain.ReplicationMessage) error {
	c.mu.Lock()
	c.calls = append(c.calls, followerURL)
	c.mu.Unlock()

	if c.ReplicateFn != nil {
		return c.ReplicateFn(ctx, followerURL, msg)
	}
	return nil
}

func (c *fakeClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

var errFollowerDown = errors.New("follower down")

// fakeDispatcher implements domain.Dispatcher with a canned ack count.
type fakeDispatcher struct {
	mu       sync.Mutex
	messages []domain.ReplicationMessage
	acks     int
}

func (d *fakeDispatcher) Dispatch(_ context.Context, msg domain.ReplicationMessage) int {
	d.mu.Lock()
	d.messages = append(d.messages, msg)
	d.mu.Unlock()
	return d.acks
}

func (d *fakeDispatcher) lastMessage() (domain.ReplicationMessage, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.messages) == 0 {
		return domain.ReplicationMessage{}, false
	}
	return d.messages[len(d.messages)-1], true
}
