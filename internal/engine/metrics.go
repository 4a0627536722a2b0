package engine

import "github.com/prometheus/client_golang/prometheus"

// Label values for dispatch outcomes.
const (
	outcomeAssigned = "assigned"
	outcomeRequeued = "requeued"
	resultAccepted  = "accepted"
)

var (
	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "switchyard_submissions_total",
			Help: "Total number of submissions, by admission result.",
		},
		[]string{"result"},
	)

	dispatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "switchyard_dispatch_cycles_total",
			Help: "Total number of dispatch cycles that popped a request, by outcome.",
		},
		[]string{"outcome"},
	)

	workerAssignmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "switchyard_worker_assignments_total",
			Help: "Total number of requests assigned, by worker id.",
		},
		[]string{"worker"},
	)

	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "switchyard_queue_depth",
			Help: "Number of requests waiting in the admission queue.",
		},
	)

	queueWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "switchyard_queue_wait_seconds",
			Help:    "Time from admission to assignment, in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(submissionsTotal)
	prometheus.MustRegister(dispatchesTotal)
	prometheus.MustRegister(workerAssignmentsTotal)
	prometheus.MustRegister(queueDepth)
	prometheus.MustRegister(queueWait)

	// Pre-initialize label combinations so they appear in /metrics with
	// value 0 from startup.
	submissionsTotal.WithLabelValues(resultAccepted)
	for _, r := range reasons[:4] {
		submissionsTotal.WithLabelValues(r.reason)
	}
	dispatchesTotal.WithLabelValues(outcomeAssigned)
	dispatchesTotal.WithLabelValues(outcomeRequeued)
}
