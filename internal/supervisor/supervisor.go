package supervisor

import (
	"sync"

	"github.com/smazurov/sidecar/internal/config"
	"github.com/smazurov/sidecar/internal/events"
	"github.com/smazurov/sidecar/internal/logging"
	"github.com/smazurov/sidecar/internal/process"
)

// Resolver produces the launch spec. *config.Resolver satisfies it.
type Resolver interface {
	Resolve() config.LaunchSpec
}

// Launcher starts the backend. *process.Launcher satisfies it.
type Launcher interface {
	Launch(spec config.LaunchSpec) process.Handle
}

// Notifier tells a service manager about host lifecycle changes.
type Notifier interface {
	Ready()
	Stopping()
}

// Options wires a Supervisor. Resolver, Launcher and Logger are required.
type Options struct {
	Resolver Resolver
	Launcher Launcher
	Logger   logging.Logger

	// Registry defaults to a fresh one.
	Registry *Registry
	// Bus receives BackendStoppedEvent. Optional.
	Bus *events.Bus
	// Notifier is told when setup is done and when exit starts. Optional.
	Notifier Notifier
}

// Supervisor owns the backend for the host application's lifetime. The host
// calls OnSetupComplete once after it initialises and OnExitRequested once
// when it starts shutting down; each hook only acts on its first call.
type Supervisor struct {
	resolver Resolver
	launcher Launcher
	registry *Registry
	reaper   *Reaper
	logger   logging.Logger
	notifier Notifier

	setupOnce sync.Once
	exitOnce  sync.Once

	mu    sync.RWMutex
	state State
}

// New creates a supervisor from opts.
func New(opts Options) *Supervisor {
	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	return &Supervisor{
		resolver: opts.Resolver,
		launcher: opts.Launcher,
		registry: registry,
		reaper:   NewReaper(registry, opts.Logger, opts.Bus),
		logger:   opts.Logger,
		notifier: opts.Notifier,
		state:    StateNotStarted,
	}
}

// OnSetupComplete resolves the launch spec, starts the backend and records
// its handle. It never fails; problems are logged and leave the backend not
// running.
func (s *Supervisor) OnSetupComplete() {
	s.setupOnce.Do(func() {
		s.setState(StateSpawning)

		h := s.launcher.Launch(s.resolver.Resolve())

		if err := s.registry.Store(h); err != nil {
			// Exit already drained the registry; nobody else will kill h.
			if h != nil {
				s.logger.Warn("Backend started after exit was requested, killing it", "pid", h.Pid(), "error", err)
				s.reaper.terminate(h)
				s.setState(StateReaped)
			} else {
				s.advance(StateSpawning, StateNotStarted)
			}
			return
		}

		// Exit may already have taken h from the registry and marked it reaped.
		if h == nil {
			s.advance(StateSpawning, StateNotStarted)
		} else {
			s.advance(StateSpawning, StateRunning)
		}

		if s.notifier != nil {
			s.notifier.Ready()
		}
	})
}

// OnExitRequested kills the tracked backend, if any. It does not wait for the
// process to exit.
func (s *Supervisor) OnExitRequested() {
	s.exitOnce.Do(func() {
		if s.notifier != nil {
			s.notifier.Stopping()
		}
		if s.reaper.OnExit() {
			s.setState(StateReaped)
		}
	})
}

// State returns the backend's current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Supervisor) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// advance moves to state "to" only while the current state is "from".
func (s *Supervisor) advance(from, to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return false
	}
	s.state = to
	return true
}
