// Package collectors feeds backend lifecycle events into the metrics package.
package collectors

import (
	"context"
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	promcollectors "github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/smazurov/sidecar/internal/events"
	"github.com/smazurov/sidecar/internal/logging"
	"github.com/smazurov/sidecar/internal/metrics"
)

var errNoBackend = errors.New("no backend process running")

// EventCollector turns backend events on the bus into metric updates. It also
// remembers the running backend's pid for ProcessCollector.
//
// Each event type is delivered on its own goroutine, so a Stopped event can be
// handled before the Started event for the same pid. Stopped pids are kept so
// a late Started is ignored.
type EventCollector struct {
	bus    *events.Bus
	logger logging.Logger

	mu     sync.Mutex
	unsubs []func()
	cancel context.CancelFunc

	stateMu     sync.Mutex
	pid         int
	stoppedPIDs map[int]struct{}
	stopped     chan struct{}
	stopOnce    sync.Once
}

// NewEventCollector creates a collector listening on bus.
func NewEventCollector(bus *events.Bus) *EventCollector {
	return &EventCollector{
		bus:         bus,
		logger:      logging.GetLogger("metrics"),
		stoppedPIDs: make(map[int]struct{}),
		stopped:     make(chan struct{}),
	}
}

// Start subscribes to backend events. The subscriptions are dropped when ctx
// is cancelled or Stop is called.
func (c *EventCollector) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return nil
	}

	c.unsubs = append(c.unsubs,
		c.bus.Subscribe(c.onStarted),
		c.bus.Subscribe(c.onSpawnFailed),
		c.bus.Subscribe(c.onSkipped),
		c.bus.Subscribe(c.onStopped),
	)

	ctx, c.cancel = context.WithCancel(ctx)
	go func() {
		<-ctx.Done()
		c.unsubscribe()
	}()

	c.logger.Debug("Backend metrics collection started")
	return nil
}

// Stop drops the subscriptions.
func (c *EventCollector) Stop() error {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.unsubscribe()
	return nil
}

func (c *EventCollector) unsubscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
}

// WaitStopped blocks until a BackendStoppedEvent has been recorded or ctx is
// done.
func (c *EventCollector) WaitStopped(ctx context.Context) error {
	select {
	case <-c.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PID returns the running backend's pid.
func (c *EventCollector) PID() (int, error) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.pid == 0 {
		return 0, errNoBackend
	}
	return c.pid, nil
}

// ProcessCollector exports CPU, memory and file descriptor usage of the
// running backend as sidecar_backend_process_*. Nothing is exported while no
// backend runs.
func (c *EventCollector) ProcessCollector() prometheus.Collector {
	return promcollectors.NewProcessCollector(promcollectors.ProcessCollectorOpts{
		PidFn:     c.PID,
		Namespace: "sidecar_backend",
	})
}

func (c *EventCollector) onStarted(e events.BackendStartedEvent) {
	c.stateMu.Lock()
	if _, done := c.stoppedPIDs[e.PID]; !done {
		c.pid = e.PID
		metrics.SetRunning(true)
	}
	c.stateMu.Unlock()

	metrics.RecordSpawn(metrics.SpawnStarted)
}

func (c *EventCollector) onSpawnFailed(events.BackendSpawnFailedEvent) {
	metrics.RecordSpawn(metrics.SpawnFailed)
}

func (c *EventCollector) onSkipped(events.BackendSkippedEvent) {
	metrics.RecordSpawn(metrics.SpawnSkipped)
}

func (c *EventCollector) onStopped(e events.BackendStoppedEvent) {
	c.stateMu.Lock()
	c.stoppedPIDs[e.PID] = struct{}{}
	if c.pid == e.PID {
		c.pid = 0
	}
	metrics.SetRunning(c.pid != 0)
	c.stateMu.Unlock()

	switch {
	case e.AlreadyExited:
		metrics.RecordTerminate(metrics.TerminateAlreadyExited)
	case e.Error != "":
		metrics.RecordTerminate(metrics.TerminateFailed)
	default:
		metrics.RecordTerminate(metrics.TerminateKilled)
	}
	c.stopOnce.Do(func() { close(c.stopped) })
}
