package supervisor

// State is the tracked backend's lifecycle as seen by the supervisor. A
// backend that dies on its own is indistinguishable from a Running one.
type State string

// Backend states.
const (
	StateNotStarted State = "not_started" // never launched, or the launch failed
	StateSpawning   State = "spawning"    // Launch in progress
	StateRunning    State = "running"     // handle stored in the registry
	StateReaped     State = "reaped"      // kill requested on exit
)
