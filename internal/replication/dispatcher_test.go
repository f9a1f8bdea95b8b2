package replication

import (
	"context"
	"fmt"
	"testing"
	"time"

	"replikv/internal/configuration"
	"replikv/internal/domain"
)

func testDispatcher(followers []string, quorum int, client domain.ReplicationClient) *Dispatcher {
	return NewDispatcher(&configuration.Properties{
		FollowerURLs: followers,
		WriteQuorum:  quorum,
	}, client)
}

func urls(n int) []string {
	followers := make([]string, n)
	for i := range followers {
		followers[i] = fmt.Sprintf("http://follower%d:8080", i+1)
	}
	return followers
}

func TestDispatch_QuorumReachedReturnsEarly(t *testing.T) {
	client := &fakeClient{}
	d := testDispatcher(urls(5), 3, client)

	acks := d.Dispatch(context.Background(), domain.ReplicationMessage{Key: "k", Value: "v", Version: 1})
	if acks != 3 {
		t.Fatalf("expected exactly quorum acks, got %d", acks)
	}
}

func TestDispatch_AllFollowersCounted(t *testing.T) {
	client := &fakeClient{}
	d := testDispatcher(urls(5), 5, client)

	acks := d.Dispatch(context.Background(), domain.ReplicationMessage{Key: "k", Value: "v", Version: 1})
	if acks != 5 {
		t.Fatalf("expected 5 acks, got %d", acks)
	}
	if client.callCount() != 5 {
		t.Fatalf("expected 5 delivery attempts, got %d", client.callCount())
	}
}

func TestDispatch_QuorumMissReturnsFinalCount(t *testing.T) {
	client := &fakeClient{
		ReplicateFn: func(_ context.Context, followerURL string, _ domain.ReplicationMessage) error {
			// only the first two followers are reachable
			if followerURL == "http://follower1:8080" || followerURL == "http://follower2:8080" {
				return nil
			}
			return errFollowerDown
		},
	}
	d := testDispatcher(urls(5), 3, client)

	acks := d.Dispatch(context.Background(), domain.ReplicationMessage{Key: "k", Value: "v", Version: 1})
	if acks != 2 {
		t.Fatalf("expected 2 acks below quorum, got %d", acks)
	}
}

func TestDispatch_NoFollowers(t *testing.T) {
	d := testDispatcher(nil, 1, &fakeClient{})

	if acks := d.Dispatch(context.Background(), domain.ReplicationMessage{Key: "k", Version: 1}); acks != 0 {
		t.Fatalf("expected 0 acks, got %d", acks)
	}
}

func TestDispatch_CancelsLaggardsAfterQuorum(t *testing.T) {
	laggardCancelled := make(chan struct{})

	client := &fakeClient{
		ReplicateFn: func(ctx context.Context, followerURL string, _ domain.ReplicationMessage) error {
			if followerURL == "http://follower1:8080" {
				return nil
			}
			// the laggard blocks until the dispatcher cancels it
			<-ctx.Done()
			close(laggardCancelled)
			return ctx.Err()
		},
	}
	d := testDispatcher(urls(2), 1, client)

	done := make(chan int, 1)
	go func() {
		done <- d.Dispatch(context.Background(), domain.ReplicationMessage{Key: "k", Value: "v", Version: 1})
	}()

	select {
	case acks := <-done:
		if acks != 1 {
			t.Fatalf("expected 1 ack, got %d", acks)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch blocked on the laggard")
	}

	select {
	case <-laggardCancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("laggard was never cancelled")
	}
}

func TestDispatch_ParentCancellationStopsCollection(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	client := &fakeClient{
		ReplicateFn: func(ctx context.Context, _ string, _ domain.ReplicationMessage) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}
	d := testDispatcher(urls(3), 3, client)

	done := make(chan int, 1)
	go func() {
		done <- d.Dispatch(ctx, domain.ReplicationMessage{Key: "k", Value: "v", Version: 1})
	}()

	cancel()

	select {
	case acks := <-done:
		if acks != 0 {
			t.Fatalf("expected 0 acks after cancellation, got %d", acks)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch did not observe parent cancellation")
	}
}

func TestDispatch_SimulatedDelayLowerBound(t *testing.T) {
	const minDelay = 20 * time.Millisecond

	d := NewDispatcher(&configuration.Properties{
		FollowerURLs: urls(3),
		WriteQuorum:  3,
		MinDelayMs:   int(minDelay / time.Millisecond),
		MaxDelayMs:   int(minDelay / time.Millisecond),
	}, &fakeClient{})

	start := time.Now()
	if acks := d.Dispatch(context.Background(), domain.ReplicationMessage{Key: "k", Value: "v", Version: 1}); acks != 3 {
		t.Fatalf("expected 3 acks, got %d", acks)
	}
	if elapsed := time.Since(start); elapsed < minDelay {
		t.Fatalf("dispatch returned after %v, before the %v simulated delay", elapsed, minDelay)
	}
}

func TestRandomDelay_WithinBounds(t *testing.T) {
	d := NewDispatcher(&configuration.Properties{
		MinDelayMs: 10,
		MaxDelayMs: 50,
	}, &fakeClient{})

	for i := 0; i < 1000; i++ {
		delay := d.randomDelay()
		if delay < 10*time.Millisecond || delay > 50*time.Millisecond {
			t.Fatalf("delay %v outside [10ms, 50ms]", delay)
		}
	}
}

func TestRandomDelay_FixedBounds(t *testing.T) {
	d := NewDispatcher(&configuration.Properties{
		MinDelayMs: 25,
		MaxDelayMs: 25,
	}, &fakeClient{})

	if delay := d.randomDelay(); delay != 25*time.Millisecond {
		t.Fatalf("expected fixed 25ms delay, got %v", delay)
	}
}
