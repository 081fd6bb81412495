package caloriewise

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	persistFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "caloriewise_session",
			Name:      "persist_failures_total",
			Help:      "Snapshot saves that exhausted retries or failed irrecoverably.",
		},
	)

	streamChunksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "caloriewise_session",
			Name:      "stream_chunks_total",
			Help:      "Chat deltas applied to a placeholder message.",
		},
	)

	streamTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caloriewise_session",
			Name:      "stream_turns_total",
			Help:      "Completed chat turns by outcome.",
		},
		[]string{"outcome"},
	)
)
