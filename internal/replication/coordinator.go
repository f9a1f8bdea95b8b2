package replication

import (
	"context"
	"log/slog"
	"time"

	"replikv/internal/domain"
	"replikv/internal/metrics"
)

// Coordinator drives one client write or delete on the leader: apply locally
// under a fresh version, fan out to the followers, translate the ack count
// into the client-visible outcome.
//
// A quorum miss does not roll the local apply back. The leader keeps the
// newer version and the cluster converges again once a later write to the
// same key supersedes it.
type Coordinator struct {
	store      domain.Store
	dispatcher domain.Dispatcher
	quorum     int
}

func NewCoordinator(store domain.Store, dispatcher domain.Dispatcher, quorum int) *Coordinator {
	return &Coordinator{
		store:      store,
		dispatcher: dispatcher,
		quorum:     quorum,
	}
}

func (c *Coordinator) Write(ctx context.Context, key, value string) (domain.WriteResult, error) {
	start := time.Now()

	version := c.store.ApplyLocalWrite(key, value)
	acks := c.dispatcher.Dispatch(ctx, domain.ReplicationMessage{
		Key:     key,
		Value:   value,
		Version: version,
	})

	c.updateStoreGauges()
	metrics.WriteDuration.WithLabelValues("write").Observe(time.Since(start).Seconds())

	result := domain.WriteResult{Version: version, Acks: acks}
	if acks < c.quorum {
		metrics.WritesTotal.WithLabelValues("write", "quorum_miss").Inc()
		return result, &QuorumError{Acks: acks, Quorum: c.quorum}
	}

	metrics.WritesTotal.WithLabelValues("write", "success").Inc()
	slog.Debug("write replicated", "key", key, "version", version, "acks", acks)
	return result, nil
}

func (c *Coordinator) Delete(ctx context.Context, key string) (domain.WriteResult, error) {
	start := time.Now()

	version, existed := c.store.ApplyLocalDelete(key)
	if !existed {
		metrics.WritesTotal.WithLabelValues("delete", "not_found").Inc()
		return domain.WriteResult{}, ErrKeyNotFound
	}

	acks := c.dispatcher.Dispatch(ctx, domain.ReplicationMessage{
		Key:     key,
		Version: version,
		Delete:  true,
	})

	c.updateStoreGauges()
	metrics.WriteDuration.WithLabelValues("delete").Observe(time.Since(start).Seconds())

	result := domain.WriteResult{Version: version, Acks: acks}
	if acks < c.quorum {
		metrics.WritesTotal.WithLabelValues("delete", "quorum_miss").Inc()
		return result, &QuorumError{Acks: acks, Quorum: c.quorum}
	}

	metrics.WritesTotal.WithLabelValues("delete", "success").Inc()
	slog.Debug("delete replicated", "key", key, "version", version, "acks", acks)
	return result, nil
}

func (c *Coordinator) updateStoreGauges() {
	metrics.StoreKeysTotal.Set(float64(c.store.Len()))
	metrics.StoreVersion.Set(float64(c.store.CurrentVersion()))
}
