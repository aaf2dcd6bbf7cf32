package process

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/sidecar/internal/config"
	"github.com/smazurov/sidecar/internal/events"
)

func testLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

type fakeHandle struct {
	pid        int
	terminated int
}

func (h *fakeHandle) Pid() int { return h.pid }

func (h *fakeHandle) Terminate() error {
	h.terminated++
	return nil
}

func TestLaunchEmptyCommandSkipsSpawn(t *testing.T) {
	logger, buf := testLogger()
	called := false
	l := NewLauncher(logger, WithSpawnFunc(func(string, []string) (Handle, error) {
		called = true
		return &fakeHandle{pid: 1}, nil
	}))

	if h := l.Launch(config.LaunchSpec{Args: []string{"ignored"}}); h != nil {
		t.Fatalf("Launch returned %v, want nil", h)
	}
	if called {
		t.Error("spawn hook invoked for empty command")
	}
	if !strings.Contains(buf.String(), "command is empty") {
		t.Errorf("expected empty command diagnostic, got %q", buf.String())
	}
}

func TestLaunchPassesSpecToSpawn(t *testing.T) {
	logger, buf := testLogger()
	var gotCmd string
	var gotArgs []string
	want := &fakeHandle{pid: 4242}

	l := NewLauncher(logger, WithSpawnFunc(func(command string, args []string) (Handle, error) {
		gotCmd, gotArgs = command, args
		return want, nil
	}))

	h := l.Launch(config.LaunchSpec{Command: "uvicorn", Args: []string{"app:app", "--port", "8000"}})
	if h != want {
		t.Fatalf("Launch returned %v, want %v", h, want)
	}
	if gotCmd != "uvicorn" || strings.Join(gotArgs, " ") != "app:app --port 8000" {
		t.Errorf("spawn got %q %v", gotCmd, gotArgs)
	}
	if !strings.Contains(buf.String(), "Backend process started") || !strings.Contains(buf.String(), "pid=4242") {
		t.Errorf("expected success log, got %q", buf.String())
	}
}

func TestLaunchSpawnFailureReturnsNil(t *testing.T) {
	logger, buf := testLogger()
	l := NewLauncher(logger, WithSpawnFunc(func(string, []string) (Handle, error) {
		return nil, errors.New("permission denied")
	}))

	if h := l.Launch(config.LaunchSpec{Command: "backend"}); h != nil {
		t.Fatalf("Launch returned %v, want nil", h)
	}
	if !strings.Contains(buf.String(), "Failed to start backend process") || !strings.Contains(buf.String(), "permission denied") {
		t.Errorf("expected failure log with cause, got %q", buf.String())
	}
}

func TestLaunchNilHandleTreatedAsFailure(t *testing.T) {
	logger, _ := testLogger()
	l := NewLauncher(logger, WithSpawnFunc(func(string, []string) (Handle, error) {
		return nil, nil
	}))
	if h := l.Launch(config.LaunchSpec{Command: "backend"}); h != nil {
		t.Fatalf("Launch returned %v, want nil", h)
	}
}

func TestLaunchPublishesEvents(t *testing.T) {
	logger, _ := testLogger()
	bus := events.New()
	ch := make(chan any, 4)
	defer events.SubscribeToChannel[events.BackendSkippedEvent](bus, ch)()
	defer events.SubscribeToChannel[events.BackendSpawnFailedEvent](bus, ch)()
	defer events.SubscribeToChannel[events.BackendStartedEvent](bus, ch)()

	fail := true
	l := NewLauncher(logger, WithEventBus(bus), WithSpawnFunc(func(string, []string) (Handle, error) {
		if fail {
			return nil, errors.New("no such file")
		}
		return &fakeHandle{pid: 9}, nil
	}))

	l.Launch(config.LaunchSpec{})
	expectEvent[events.BackendSkippedEvent](t, ch)

	l.Launch(config.LaunchSpec{Command: "missing"})
	failed := expectEvent[events.BackendSpawnFailedEvent](t, ch)
	if failed.Command != "missing" || failed.Error != "no such file" {
		t.Errorf("spawn failed event = %+v", failed)
	}

	fail = false
	l.Launch(config.LaunchSpec{Command: "ok"})
	started := expectEvent[events.BackendStartedEvent](t, ch)
	if started.PID != 9 || started.Contained {
		t.Errorf("started event = %+v", started)
	}
}

func expectEvent[T any](t *testing.T, ch <-chan any) T {
	t.Helper()
	select {
	case got := <-ch:
		ev, ok := got.(T)
		if !ok {
			t.Fatalf("got event %T, want %T", got, ev)
		}
		return ev
	case <-time.After(time.Second):
		var zero T
		t.Fatalf("timeout waiting for %T", zero)
		return zero
	}
}

type failingContainment struct{ NoContainment }

func (failingContainment) Attach(*os.Process) (io.Closer, error) {
	return nil, errors.New("job objects disabled")
}

type recordingContainment struct {
	NoContainment
	prepared bool
	closed   chan struct{}
}

func (c *recordingContainment) Prepare(*exec.Cmd) { c.prepared = true }

func (c *recordingContainment) Attach(*os.Process) (io.Closer, error) {
	return closerFunc(func() error {
		close(c.closed)
		return nil
	}), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func requireUnixTools(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not available: %v", name, err)
		}
	}
}

func TestSpawnRealProcessAndTerminate(t *testing.T) {
	requireUnixTools(t, "sleep")
	logger, _ := testLogger()

	containment := &recordingContainment{closed: make(chan struct{})}
	l := NewLauncher(logger, WithContainment(containment))

	h := l.Launch(config.LaunchSpec{Command: "sleep", Args: []string{"30"}})
	if h == nil {
		t.Fatal("Launch returned nil for sleep")
	}
	if h.Pid() <= 0 {
		t.Errorf("Pid() = %d", h.Pid())
	}
	if !containment.prepared {
		t.Error("containment Prepare not called")
	}
	if c, ok := h.(interface{ Contained() bool }); !ok || !c.Contained() {
		t.Error("handle should report containment")
	}

	if err := h.Terminate(); err != nil {
		t.Fatalf("Terminate: %v", err)
	}
	select {
	case <-containment.closed:
	case <-time.After(time.Second):
		t.Fatal("containment object not released")
	}

	// A second call is a no-op returning the first result.
	if err := h.Terminate(); err != nil {
		t.Errorf("second Terminate: %v", err)
	}
}

func TestSpawnContainmentFailureStillReturnsHandle(t *testing.T) {
	requireUnixTools(t, "sleep")
	logger, buf := testLogger()

	l := NewLauncher(logger, WithContainment(failingContainment{}))
	h := l.Launch(config.LaunchSpec{Command: "sleep", Args: []string{"30"}})
	if h == nil {
		t.Fatal("containment failure must not fail the launch")
	}
	defer h.Terminate()

	if !strings.Contains(buf.String(), "containment unavailable") || !strings.Contains(buf.String(), "job objects disabled") {
		t.Errorf("expected containment warning, got %q", buf.String())
	}
}

func TestSpawnInheritsOutput(t *testing.T) {
	requireUnixTools(t, "echo")
	logger, _ := testLogger()

	out, err := os.CreateTemp(t.TempDir(), "stdout")
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	l := NewLauncher(logger, WithOutput(out, out))
	h := l.Launch(config.LaunchSpec{Command: "echo", Args: []string{"hi"}})
	if h == nil {
		t.Fatal("Launch returned nil for echo")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		data, _ := os.ReadFile(out.Name())
		if strings.TrimSpace(string(data)) == "hi" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("child output = %q, want hi", data)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// echo has exited by now; killing it must not panic and is best effort.
	_ = h.Terminate()
}

func TestSpawnMissingExecutable(t *testing.T) {
	logger, buf := testLogger()
	l := NewLauncher(logger, WithContainment(NoContainment{}))

	if h := l.Launch(config.LaunchSpec{Command: "/nonexistent/sidecar-backend-binary"}); h != nil {
		t.Fatalf("Launch returned %v for missing executable", h)
	}
	if !strings.Contains(buf.String(), "Failed to start backend process") {
		t.Errorf("expected spawn failure log, got %q", buf.String())
	}
}

func TestIsAlreadyExited(t *testing.T) {
	if !IsAlreadyExited(os.ErrProcessDone) {
		t.Error("os.ErrProcessDone not recognised")
	}
	if IsAlreadyExited(errors.New("permission denied")) {
		t.Error("unrelated error recognised as already exited")
	}
}
