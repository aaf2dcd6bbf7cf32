package process

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/smazurov/sidecar/internal/config"
	"github.com/smazurov/sidecar/internal/events"
	"github.com/smazurov/sidecar/internal/logging"
)

// SpawnFunc starts command with args and returns a handle to the running
// process. Launcher only calls it for a non-empty command.
type SpawnFunc func(command string, args []string) (Handle, error)

// Launcher turns a LaunchSpec into a running backend process.
type Launcher struct {
	spawn       SpawnFunc
	containment Containment
	stdout      io.Writer
	stderr      io.Writer
	logger      logging.Logger
	bus         *events.Bus
}

// LauncherOption configures a Launcher.
type LauncherOption func(*Launcher)

// WithSpawnFunc replaces the os/exec spawner, e.g. with a test double.
func WithSpawnFunc(fn SpawnFunc) LauncherOption {
	return func(l *Launcher) {
		l.spawn = fn
	}
}

// WithContainment overrides DefaultContainment for the os/exec spawner.
func WithContainment(c Containment) LauncherOption {
	return func(l *Launcher) {
		l.containment = c
	}
}

// WithOutput sets where the child's stdout and stderr go. They default to the
// supervisor's own streams.
func WithOutput(stdout, stderr io.Writer) LauncherOption {
	return func(l *Launcher) {
		l.stdout = stdout
		l.stderr = stderr
	}
}

// WithEventBus publishes launch outcomes on bus.
func WithEventBus(bus *events.Bus) LauncherOption {
	return func(l *Launcher) {
		l.bus = bus
	}
}

// NewLauncher creates a launcher using os/exec and the platform containment.
func NewLauncher(logger logging.Logger, opts ...LauncherOption) *Launcher {
	l := &Launcher{
		containment: DefaultContainment(),
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.spawn == nil {
		l.spawn = l.spawnProcess
	}
	return l
}

// Launch starts the backend described by spec. It returns nil when the
// command is empty or the spawn fails; both are logged, neither is an error
// for the caller.
func (l *Launcher) Launch(spec config.LaunchSpec) Handle {
	if spec.Empty() {
		l.logger.Warn("Backend command is empty, check the launch configuration")
		l.bus.Publish(events.BackendSkippedEvent{Reason: "empty command", Timestamp: time.Now()})
		return nil
	}

	l.logger.Info("Attempting to start backend", "command", spec.Command, "args", spec.Args)

	handle, err := l.spawn(spec.Command, spec.Args)
	if err != nil {
		l.logger.Error("Failed to start backend process", "command", spec.Command, "error", err)
		l.bus.Publish(events.BackendSpawnFailedEvent{
			Command:   spec.Command,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return nil
	}
	if handle == nil {
		l.logger.Error("Failed to start backend process", "command", spec.Command, "error", "spawner returned no handle")
		l.bus.Publish(events.BackendSpawnFailedEvent{
			Command:   spec.Command,
			Error:     "spawner returned no handle",
			Timestamp: time.Now(),
		})
		return nil
	}

	contained := false
	if c, ok := handle.(interface{ Contained() bool }); ok {
		contained = c.Contained()
	}

	l.logger.Info("Backend process started", "pid", handle.Pid(), "contained", contained)
	l.bus.Publish(events.BackendStartedEvent{
		PID:       handle.Pid(),
		Command:   spec.Command,
		Args:      spec.Args,
		Contained: contained,
		Timestamp: time.Now(),
	})
	return handle
}

// spawnProcess is the default SpawnFunc. Containment failures are logged and
// otherwise ignored: the process keeps running and the explicit kill on exit
// still applies.
func (l *Launcher) spawnProcess(command string, args []string) (Handle, error) {
	cmd := exec.Command(command, args...)
	cmd.Stdout = l.stdout
	cmd.Stderr = l.stderr
	l.containment.Prepare(cmd)

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	h := &processHandle{cmd: cmd}

	container, err := l.containment.Attach(cmd.Process)
	switch {
	case err != nil:
		l.logger.Warn("Backend containment unavailable, relying on explicit kill",
			"strategy", l.containment.Name(), "pid", cmd.Process.Pid, "error", err)
	case container != nil:
		h.container = container
		h.contained = true
		l.logger.Debug("Backend process contained", "strategy", l.containment.Name(), "pid", cmd.Process.Pid)
	}

	return h, nil
}

// IsAlreadyExited reports whether a Terminate error only means the process
// had finished before the kill request.
func IsAlreadyExited(err error) bool {
	return errors.Is(err, os.ErrProcessDone)
}
