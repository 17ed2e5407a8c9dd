// Package monitoring exposes Prometheus metrics for run and node
// execution outcomes.
package monitoring

import (
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/flowmesh/flowmesh/pkg/models"
)

// Metrics implements engine.Metrics over Prometheus collectors.
type Metrics struct {
	runsStarted  *prometheus.CounterVec
	runsFinished *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	nodesTotal   *prometheus.CounterVec
	nodeDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with the registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_runs_started_total",
			Help: "Workflow runs started.",
		}, []string{"workflow_id"}),
		runsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_runs_finished_total",
			Help: "Workflow runs finished, by terminal status.",
		}, []string{"workflow_id", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "workflow_run_duration_seconds",
			Help:    "Wall-clock duration of workflow runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		nodesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "node_executions_total",
			Help: "Node executions, by node type and terminal status.",
		}, []string{"node_type", "status"}),
		nodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "node_execution_duration_seconds",
			Help:    "Wall-clock duration of node executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"node_type"}),
	}

	reg.MustRegister(m.runsStarted, m.runsFinished, m.runDuration, m.nodesTotal, m.nodeDuration)
	return m
}

// RunStarted records a run start.
func (m *Metrics) RunStarted(workflowID uuid.UUID) {
	m.runsStarted.WithLabelValues(workflowID.String()).Inc()
}

// RunFinished records a run's terminal status and duration.
func (m *Metrics) RunFinished(workflowID uuid.UUID, status models.RunStatus, durationSeconds float64) {
	m.runsFinished.WithLabelValues(workflowID.String(), string(status)).Inc()
	m.runDuration.WithLabelValues(string(status)).Observe(durationSeconds)
}

// NodeFinished records a node execution's terminal status and duration.
func (m *Metrics) NodeFinished(nodeType models.NodeType, status models.RunStatus, durationSeconds float64) {
	m.nodesTotal.WithLabelValues(string(nodeType), string(status)).Inc()
	m.nodeDuration.WithLabelValues(string(nodeType)).Observe(durationSeconds)
}
