package supervisor

import (
	"time"

	"github.com/smazurov/sidecar/internal/events"
	"github.com/smazurov/sidecar/internal/logging"
	"github.com/smazurov/sidecar/internal/process"
)

// Reaper kills the tracked backend when the host exits.
type Reaper struct {
	registry *Registry
	logger   logging.Logger
	bus      *events.Bus
}

// NewReaper creates a reaper draining registry. bus may be nil.
func NewReaper(registry *Registry, logger logging.Logger, bus *events.Bus) *Reaper {
	return &Reaper{registry: registry, logger: logger, bus: bus}
}

// OnExit drains the registry and, if a backend was tracked, asks the OS to
// kill it. It neither waits for the process to go away nor retries; failures
// are logged. It reports whether a handle was found.
func (r *Reaper) OnExit() bool {
	h := r.registry.TakeAndClear()
	if h == nil {
		return false
	}

	r.logger.Info("Host exiting, killing backend process", "pid", h.Pid())
	r.terminate(h)
	return true
}

func (r *Reaper) terminate(h process.Handle) {
	pid := h.Pid()
	ev := events.BackendStoppedEvent{PID: pid}

	err := h.Terminate()
	switch {
	case err == nil:
		r.logger.Info("Backend process killed", "pid", pid)
	case process.IsAlreadyExited(err):
		ev.AlreadyExited = true
		r.logger.Info("Backend process had already exited", "pid", pid)
	default:
		ev.Error = err.Error()
		r.logger.Warn("Failed to kill backend process", "pid", pid, "error", err)
	}

	ev.Timestamp = time.Now()
	r.bus.Publish(ev)
}
