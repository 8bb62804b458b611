package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for Armada.
// Using promauto for automatic registration with default registry.
var (
	// --- Run Metrics ---

	// RunsTotal counts completed command runs by outcome.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "armada",
			Subsystem: "runs",
			Name:      "total",
			Help:      "Total number of command runs by outcome",
		},
		[]string{"outcome"},
	)

	// RunDuration tracks command run duration.
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "armada",
			Subsystem: "runs",
			Name:      "duration_seconds",
			Help:      "Duration of command runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 15), // 0.1s to ~1.8h
		},
		[]string{"service", "outcome"},
	)

	// WatchdogKills counts processes killed by the timeout watchdog.
	WatchdogKills = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "armada",
			Subsystem: "runs",
			Name:      "watchdog_kills_total",
			Help:      "Total processes forcefully killed on timeout",
		},
	)

	// --- Log Sink Metrics ---

	// LogLinesForwarded counts lines forwarded to log streams by component.
	LogLinesForwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "armada",
			Subsystem: "logsink",
			Name:      "lines_forwarded_total",
			Help:      "Total output lines forwarded to log streams",
		},
		[]string{"component"},
	)

	// --- Agent Metrics ---

	// AgentRunsRunning tracks concurrent runs on this agent.
	AgentRunsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "armada",
			Subsystem: "agent",
			Name:      "runs_running",
			Help:      "Number of currently running commands on this agent",
		},
	)

	// HeartbeatsSent counts heartbeats sent by the agent.
	HeartbeatsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "armada",
			Subsystem: "agent",
			Name:      "heartbeats_total",
			Help:      "Total heartbeats sent",
		},
	)

	// ActiveNodes tracks number of active agent nodes.
	ActiveNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "armada",
			Subsystem: "cluster",
			Name:      "active_nodes",
			Help:      "Number of active agent nodes",
		},
	)

	// --- Monitor Metrics ---

	// ChecksTotal counts monitoring checks by result.
	ChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "armada",
			Subsystem: "monitor",
			Name:      "checks_total",
			Help:      "Total monitoring checks by result",
		},
		[]string{"check", "result"},
	)

	// OrphansReaped counts orphaned runs cleaned up by the monitor.
	OrphansReaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "armada",
			Subsystem: "monitor",
			Name:      "orphans_reaped_total",
			Help:      "Total number of orphaned runs cleaned up",
		},
	)

	// --- Queue Metrics ---

	// QueueDepth tracks pending runs in the queue.
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "armada",
			Subsystem: "queue",
			Name:      "pending_runs",
			Help:      "Number of runs pending in the queue",
		},
	)
)

// RecordRun records metrics for a completed command run.
func RecordRun(service, outcome string, durationSeconds float64) {
	RunsTotal.WithLabelValues(outcome).Inc()
	RunDuration.WithLabelValues(service, outcome).Observe(durationSeconds)
}
