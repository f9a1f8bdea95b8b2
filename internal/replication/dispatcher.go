package replication

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"replikv/internal/configuration"
	"replikv/internal/domain"
	"replikv/internal/metrics"
)

// Dispatcher fans one replication message out to every follower at once and
// collects acknowledgements in completion order. Each attempt first sleeps a
// uniform random duration in [minDelay, maxDelay] to emulate network latency
// variability, then delivers the message with a bounded per-attempt timeout.
//
// Dispatch returns as soon as the quorum is acknowledged. Remaining attempts
// are cancelled through the shared context; their results land in a channel
// buffered to fan-out width, so a laggard can neither block nor leak.
type Dispatcher struct {
	followers []string
	quorum    int
	minDelay  time.Duration
	maxDelay  time.Duration
	client    domain.ReplicationClient
}

func NewDispatcher(cfg *configuration.Properties, client domain.ReplicationClient) *Dispatcher {
	return &Dispatcher{
		followers: cfg.FollowerURLs,
		quorum:    cfg.WriteQuorum,
		minDelay:  cfg.MinDelay(),
		maxDelay:  cfg.MaxDelay(),
		client:    client,
	}
}

// Dispatch replicates msg to all followers and returns the number of
// acknowledgements collected before the quorum was reached or every attempt
// resolved. Failed attempts are absorbed into the count and logged, never
// surfaced to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, msg domain.ReplicationMessage) int {
	if len(d.followers) == 0 {
		return 0
	}

	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan bool, len(d.followers))
	for _, followerURL := range d.followers {
		go d.replicate(ctx, followerURL, msg, results)
	}

	acks := 0
	for range d.followers {
		var ok bool
		select {
		case ok = <-results:
		case <-ctx.Done():
			metrics.QuorumWaitDuration.Observe(time.Since(start).Seconds())
			return acks
		}

		if !ok {
			continue
		}
		acks++
		if acks >= d.quorum {
			metrics.QuorumWaitDuration.Observe(time.Since(start).Seconds())
			slog.Debug("quorum reached",
				"key", msg.Key,
				"version", msg.Version,
				"acks", acks,
			)
			return acks
		}
	}

	metrics.QuorumWaitDuration.Observe(time.Since(start).Seconds())
	metrics.QuorumMissesTotal.Inc()
	slog.Warn("replication quorum missed",
		"key", msg.Key,
		"version", msg.Version,
		"acks", acks,
		"quorum", d.quorum,
	)
	return acks
}

// replicate runs one attempt: simulated delay, then delivery. The result is
// always sent; the channel buffer guarantees the send cannot block after the
// dispatcher has returned.
func (d *Dispatcher) replicate(ctx context.Context, followerURL string, msg domain.ReplicationMessage, results chan<- bool) {
	start := time.Now()

	if delay := d.randomDelay(); delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			results <- false
			return
		}
	}

	err := d.client.Replicate(ctx, followerURL, msg)
	metrics.ReplicationAttemptDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ReplicationAttemptsTotal.WithLabelValues("failed").Inc()
		if ctx.Err() == nil {
			slog.Warn("replication attempt failed",
				"follower", followerURL,
				"key", msg.Key,
				"version", msg.Version,
				"error", err,
			)
		}
		results <- false
		return
	}

	metrics.ReplicationAttemptsTotal.WithLabelValues("ack").Inc()
	results <- true
}

// randomDelay draws a uniform duration from [minDelay, maxDelay], inclusive,
// independently per attempt.
func (d *Dispatcher) randomDelay() time.Duration {
	if d.maxDelay <= d.minDelay {
		return d.minDelay
	}
	return d.minDelay + rand.N(d.maxDelay-d.minDelay+time.Nanosecond)
}
