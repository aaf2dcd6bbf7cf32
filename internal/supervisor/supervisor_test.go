package supervisor

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/smazurov/sidecar/internal/config"
	"github.com/smazurov/sidecar/internal/process"
)

type staticResolver config.LaunchSpec

func (r staticResolver) Resolve() config.LaunchSpec { return config.LaunchSpec(r) }

type launcherFunc func(config.LaunchSpec) process.Handle

func (f launcherFunc) Launch(spec config.LaunchSpec) process.Handle { return f(spec) }

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) Ready()    { n.record("ready") }
func (n *recordingNotifier) Stopping() { n.record("stopping") }

func (n *recordingNotifier) record(s string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, s)
}

func writeLaunchConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backend.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSupervisorStartsAndKillsBackend(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skipf("sleep not available: %v", err)
	}
	logger, buf := testLogger()

	path := writeLaunchConfig(t, `{"linux": {"command": "sleep", "args": ["30"]}}`)
	s := New(Options{
		Resolver: config.NewResolver(path, logger, config.WithPlatform(config.PlatformLinux)),
		Launcher: process.NewLauncher(logger),
		Logger:   logger,
	})

	s.OnSetupComplete()
	if got := s.State(); got != StateRunning {
		t.Fatalf("state after setup = %s, want %s", got, StateRunning)
	}

	s.OnExitRequested()
	if got := s.State(); got != StateReaped {
		t.Fatalf("state after exit = %s, want %s", got, StateReaped)
	}
	if !strings.Contains(buf.String(), "Backend process killed") {
		t.Errorf("expected kill log, got %q", buf.String())
	}
}

func TestSupervisorMissingPlatformEntry(t *testing.T) {
	logger, buf := testLogger()

	path := writeLaunchConfig(t, `{"windows": {"command": "backend.exe"}}`)
	spawned := false
	s := New(Options{
		Resolver: config.NewResolver(path, logger, config.WithPlatform(config.PlatformLinux)),
		Launcher: process.NewLauncher(logger, process.WithSpawnFunc(func(string, []string) (process.Handle, error) {
			spawned = true
			return nil, nil
		})),
		Logger: logger,
	})

	s.OnSetupComplete()
	if spawned {
		t.Error("spawn attempted without a command")
	}
	if got := s.State(); got != StateNotStarted {
		t.Errorf("state = %s, want %s", got, StateNotStarted)
	}

	before := buf.Len()
	s.OnExitRequested()
	if buf.Len() != before {
		t.Errorf("exit with no backend logged %q", buf.String()[before:])
	}
}

func TestSupervisorCommandNotFound(t *testing.T) {
	logger, buf := testLogger()

	path := writeLaunchConfig(t, `{"linux": {"command": "/nonexistent/sidecar-backend", "args": []}}`)
	s := New(Options{
		Resolver: config.NewResolver(path, logger, config.WithPlatform(config.PlatformLinux)),
		Launcher: process.NewLauncher(logger, process.WithContainment(process.NoContainment{})),
		Logger:   logger,
	})

	s.OnSetupComplete()
	if !strings.Contains(buf.String(), "Failed to start backend process") {
		t.Errorf("expected spawn failure log, got %q", buf.String())
	}
	if got := s.State(); got != StateNotStarted {
		t.Errorf("state = %s, want %s", got, StateNotStarted)
	}

	s.OnExitRequested()
	if strings.Contains(buf.String(), "killing backend") {
		t.Errorf("exit tried to kill a backend that never started: %q", buf.String())
	}
}

func TestSupervisorHooksRunOnce(t *testing.T) {
	logger, _ := testLogger()
	h := &fakeHandle{pid: 77}
	launches := 0
	notifier := &recordingNotifier{}

	s := New(Options{
		Resolver: staticResolver{Command: "backend"},
		Launcher: launcherFunc(func(config.LaunchSpec) process.Handle {
			launches++
			return h
		}),
		Logger:   logger,
		Notifier: notifier,
	})

	s.OnSetupComplete()
	s.OnSetupComplete()
	s.OnExitRequested()
	s.OnExitRequested()

	if launches != 1 {
		t.Errorf("launched %d times, want 1", launches)
	}
	if n := h.terminated.Load(); n != 1 {
		t.Errorf("terminated %d times, want 1", n)
	}
	if got := strings.Join(notifier.calls, ","); got != "ready,stopping" {
		t.Errorf("notifier calls = %s", got)
	}
}

func TestSupervisorExitBeforeSetup(t *testing.T) {
	logger, buf := testLogger()
	h := &fakeHandle{pid: 88}

	s := New(Options{
		Resolver: staticResolver{Command: "backend"},
		Launcher: launcherFunc(func(config.LaunchSpec) process.Handle { return h }),
		Logger:   logger,
	})

	s.OnExitRequested()
	s.OnSetupComplete()

	if n := h.terminated.Load(); n != 1 {
		t.Fatalf("late backend terminated %d times, want 1", n)
	}
	if got := s.State(); got != StateReaped {
		t.Errorf("state = %s, want %s", got, StateReaped)
	}
	if !strings.Contains(buf.String(), "after exit was requested") {
		t.Errorf("expected late start warning, got %q", buf.String())
	}
}

func TestSupervisorConcurrentHooks(t *testing.T) {
	for range 50 {
		logger, _ := testLogger()
		h := &fakeHandle{pid: 99}
		s := New(Options{
			Resolver: staticResolver{Command: "backend"},
			Launcher: launcherFunc(func(config.LaunchSpec) process.Handle { return h }),
			Logger:   logger,
		})

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); s.OnSetupComplete() }()
		go func() { defer wg.Done(); s.OnExitRequested() }()
		wg.Wait()

		// Whichever hook ran first, the handle must be killed exactly once
		// or, if exit ran before the handle was stored, by setup itself.
		if n := h.terminated.Load(); n != 1 {
			t.Fatalf("terminated %d times, want 1", n)
		}
		if got := s.State(); got != StateReaped {
			t.Fatalf("state = %s, want %s", got, StateReaped)
		}
	}
}

func TestSupervisorSetupDoesNotOverwriteReaped(t *testing.T) {
	logger, _ := testLogger()
	s := New(Options{
		Resolver: staticResolver{},
		Launcher: launcherFunc(func(config.LaunchSpec) process.Handle { return nil }),
		Logger:   logger,
	})

	// Exit reaped the handle between Store and the move to running.
	s.setState(StateReaped)
	if s.advance(StateSpawning, StateRunning) {
		t.Error("advance from spawning succeeded while reaped")
	}
	if got := s.State(); got != StateReaped {
		t.Errorf("state = %s, want %s", got, StateReaped)
	}

	s.setState(StateSpawning)
	if !s.advance(StateSpawning, StateRunning) {
		t.Error("advance from spawning failed")
	}
	if got := s.State(); got != StateRunning {
		t.Errorf("state = %s, want %s", got, StateRunning)
	}
}
