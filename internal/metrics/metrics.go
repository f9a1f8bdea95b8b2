package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "replikv",
		Subsystem: "write",
		Name:      "total",
		Help:      "Total client writes and deletes by result",
	}, []string{"operation", "result"})

	WriteDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "replikv",
		Subsystem: "write",
		Name:      "duration_seconds",
		Help:      "End-to-end write duration including quorum wait",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
	}, []string{"operation"})

	ReplicationAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "replikv",
		Subsystem: "replication",
		Name:      "attempts_total",
		Help:      "Total replication attempts by result",
	}, []string{"result"})

	ReplicationAttemptDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "replikv",
		Subsystem: "replication",
		Name:      "attempt_duration_seconds",
		Help:      "Duration of one replication attempt including simulated delay",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
	})

	QuorumWaitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "replikv",
		Subsystem: "replication",
		Name:      "quorum_wait_seconds",
		Help:      "Time from dispatch until quorum or exhaustion",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
	})

	QuorumMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "replikv",
		Subsystem: "replication",
		Name:      "quorum_misses_total",
		Help:      "Dispatches that exhausted all followers below quorum",
	})

	IngestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "replikv",
		Subsystem: "replication",
		Name:      "ingest_total",
		Help:      "Replication messages received by apply outcome",
	}, []string{"outcome"})

	StoreKeysTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "replikv",
		Subsystem: "store",
		Name:      "keys_total",
		Help:      "Live keys in the store",
	})

	StoreVersion = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "replikv",
		Subsystem: "store",
		Name:      "version",
		Help:      "Highest version allocated or observed by this node",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "replikv",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests",
	}, []string{"method", "route", "code"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "replikv",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 20),
	}, []string{"method", "route"})
)
