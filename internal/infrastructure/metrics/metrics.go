// Package metrics exposes Prometheus instrumentation for the execution
// engine and the checkpoint savers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stategraph_steps_total",
		Help: "Scheduler steps executed, by graph.",
	}, []string{"graph"})

	nodeExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stategraph_node_executions_total",
		Help: "Node invocations, by graph and node.",
	}, []string{"graph", "node"})

	nodeDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stategraph_node_duration_seconds",
		Help:    "Node execution latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"graph", "node"})

	invocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stategraph_invocations_total",
		Help: "Graph invocations, by graph and terminal status.",
	}, []string{"graph", "status"})

	checkpointSavesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stategraph_checkpoint_saves_total",
		Help: "Checkpoint save operations, by backend.",
	}, []string{"backend"})
)

func IncSteps(graph string) { stepsTotal.WithLabelValues(graph).Inc() }

func IncNodeExecutions(graph, node string) {
	nodeExecutionsTotal.WithLabelValues(graph, node).Inc()
}

func ObserveNodeDuration(graph, node string, seconds float64) {
	nodeDurationSeconds.WithLabelValues(graph, node).Observe(seconds)
}

func IncInvocations(graph, status string) {
	invocationsTotal.WithLabelValues(graph, status).Inc()
}

func IncCheckpointSaves(backend string) {
	checkpointSavesTotal.WithLabelValues(backend).Inc()
}
