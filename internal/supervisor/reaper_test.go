package supervisor

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/sidecar/internal/events"
)

func testLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestReaperEmptyRegistryIsSilent(t *testing.T) {
	logger, buf := testLogger()
	r := NewReaper(NewRegistry(), logger, nil)

	if r.OnExit() {
		t.Error("OnExit reported a handle for an empty registry")
	}
	if buf.Len() != 0 {
		t.Errorf("expected no log output, got %q", buf.String())
	}
}

func TestReaperKillsOnce(t *testing.T) {
	logger, buf := testLogger()
	registry := NewRegistry()
	h := &fakeHandle{pid: 321}
	if err := registry.Store(h); err != nil {
		t.Fatal(err)
	}

	r := NewReaper(registry, logger, nil)
	if !r.OnExit() {
		t.Fatal("OnExit did not find the handle")
	}
	if r.OnExit() {
		t.Error("second OnExit found a handle")
	}
	if n := h.terminated.Load(); n != 1 {
		t.Errorf("Terminate called %d times, want 1", n)
	}
	if !strings.Contains(buf.String(), "Backend process killed") {
		t.Errorf("expected kill log, got %q", buf.String())
	}
}

func TestReaperTerminateOutcomes(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantLog       string
		wantLevel     string
		alreadyExited bool
		wantError     string
	}{
		{
			name:      "killed",
			wantLog:   "Backend process killed",
			wantLevel: "level=INFO",
		},
		{
			name:          "already exited",
			err:           fmt.Errorf("kill: %w", os.ErrProcessDone),
			wantLog:       "had already exited",
			wantLevel:     "level=INFO",
			alreadyExited: true,
		},
		{
			name:      "kill failed",
			err:       errors.New("operation not permitted"),
			wantLog:   "Failed to kill backend process",
			wantLevel: "level=WARN",
			wantError: "operation not permitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := testLogger()
			bus := events.New()
			ch := make(chan any, 1)
			defer events.SubscribeToChannel[events.BackendStoppedEvent](bus, ch)()

			registry := NewRegistry()
			if err := registry.Store(&fakeHandle{pid: 55, err: tt.err}); err != nil {
				t.Fatal(err)
			}
			NewReaper(registry, logger, bus).OnExit()

			var line string
			for _, l := range strings.Split(buf.String(), "\n") {
				if strings.Contains(l, tt.wantLog) {
					line = l
				}
			}
			if line == "" {
				t.Fatalf("missing %q in %q", tt.wantLog, buf.String())
			}
			if !strings.Contains(line, tt.wantLevel) {
				t.Errorf("log line %q, want %s", line, tt.wantLevel)
			}

			select {
			case got := <-ch:
				ev := got.(events.BackendStoppedEvent)
				if ev.PID != 55 || ev.AlreadyExited != tt.alreadyExited || ev.Error != tt.wantError {
					t.Errorf("stopped event = %+v", ev)
				}
			case <-time.After(time.Second):
				t.Fatal("timeout waiting for stopped event")
			}
		})
	}
}
