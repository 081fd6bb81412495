package savequeue

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caloriewise_savequeue",
			Name:      "submissions_total",
			Help:      "Save jobs accepted into the queue.",
		},
		[]string{"shard"},
	)

	queueFullTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caloriewise_savequeue",
			Name:      "queue_full_total",
			Help:      "Submissions rejected due to back-pressure.",
		},
		[]string{"shard"},
	)

	runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "caloriewise_savequeue",
			Name:      "run_duration_seconds",
			Help:      "Save job execution latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"shard"},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "caloriewise_savequeue",
			Name:      "queue_depth",
			Help:      "Jobs waiting per shard.",
		},
		[]string{"shard"},
	)
)

func labelFor(shard int) string { return strconv.Itoa(shard) }
