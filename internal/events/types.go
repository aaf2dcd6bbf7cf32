package events

import "time"

// Event type identifiers for kelindar/event.
const (
	TypeBackendStarted uint32 = iota + 1
	TypeBackendSpawnFailed
	TypeBackendSkipped
	TypeBackendStopped
)

// Event is implemented by everything published on the Bus.
type Event interface {
	Type() uint32
}

// BackendStartedEvent is published after the backend process was spawned.
type BackendStartedEvent struct {
	PID       int
	Command   string
	Args      []string
	Contained bool // assigned to an OS containment object
	Timestamp time.Time
}

// Type implements Event.
func (e BackendStartedEvent) Type() uint32 { return TypeBackendStarted }

// BackendSpawnFailedEvent is published when the OS refused to start the backend.
type BackendSpawnFailedEvent struct {
	Command   string
	Error     string
	Timestamp time.Time
}

// Type implements Event.
func (e BackendSpawnFailedEvent) Type() uint32 { return TypeBackendSpawnFailed }

// BackendSkippedEvent is published when there was no command to launch.
type BackendSkippedEvent struct {
	Reason    string
	Timestamp time.Time
}

// Type implements Event.
func (e BackendSkippedEvent) Type() uint32 { return TypeBackendSkipped }

// BackendStoppedEvent is published after a kill was requested on exit.
// Error is empty when the request succeeded; AlreadyExited means the process
// was gone before the request.
type BackendStoppedEvent struct {
	PID           int
	Error         string
	AlreadyExited bool
	Timestamp     time.Time
}

// Type implements Event.
func (e BackendStoppedEvent) Type() uint32 { return TypeBackendStopped }
