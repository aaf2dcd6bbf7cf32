// Package metrics provides Prometheus metrics for the supervised backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Spawn results.
const (
	SpawnStarted = "started"
	SpawnFailed  = "failed"
	SpawnSkipped = "skipped"
)

// Terminate results.
const (
	TerminateKilled        = "killed"
	TerminateAlreadyExited = "already_exited"
	TerminateFailed        = "failed"
)

var (
	spawnTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sidecar",
		Subsystem: "backend",
		Name:      "spawn_total",
		Help:      "Backend launch attempts by result",
	}, []string{"result"})

	terminateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sidecar",
		Subsystem: "backend",
		Name:      "terminate_total",
		Help:      "Backend kill requests by result",
	}, []string{"result"})

	running = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sidecar",
		Subsystem: "backend",
		Name:      "running",
		Help:      "1 while a backend process is tracked, 0 otherwise",
	})
)

// RecordSpawn counts a launch attempt.
func RecordSpawn(result string) {
	spawnTotal.WithLabelValues(result).Inc()
}

// RecordTerminate counts a kill request.
func RecordTerminate(result string) {
	terminateTotal.WithLabelValues(result).Inc()
}

// SetRunning sets the running gauge.
func SetRunning(up bool) {
	if up {
		running.Set(1)
		return
	}
	running.Set(0)
}
