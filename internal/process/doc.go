// Package process starts the backend process and hands back a Handle that can
// only be used to kill it.
//
// The child's stdout and stderr are connected to the supervisor's own streams.
// Nothing waits on the child while it runs: the supervisor learns nothing about
// it between Launch and Terminate.
//
// Each platform supplies a Containment strategy:
//
//   - windows: the child is assigned to a job object with
//     JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE, so it dies with the supervisor even
//     if the supervisor crashes.
//   - unix: the child leads its own process group and Terminate signals the
//     whole group. There is no safety net if the supervisor crashes.
//
// Containment is best effort. If it cannot be set up the process still runs
// and Launch still returns its handle.
package process
