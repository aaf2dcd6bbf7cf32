package process

import (
	"io"
	"os/exec"
	"sync"
)

// Handle references a spawned backend process. Terminate requests that the
// process be killed and returns without waiting for it to exit.
type Handle interface {
	Pid() int
	Terminate() error
}

// processHandle is the Handle for a process started through os/exec.
type processHandle struct {
	cmd       *exec.Cmd
	container io.Closer // containment object, held open for the child's lifetime
	contained bool

	once sync.Once
	err  error
}

// Pid returns the OS process id.
func (h *processHandle) Pid() int {
	return h.cmd.Process.Pid
}

// Contained reports whether the process was placed under OS containment.
func (h *processHandle) Contained() bool {
	return h.contained
}

// Terminate kills the process, releases its containment object and reaps it
// in the background. Only the first call acts; later calls return the same
// result. An already finished process yields an error matching os.ErrProcessDone.
func (h *processHandle) Terminate() error {
	h.once.Do(func() {
		h.err = killProcess(h.cmd)
		if h.container != nil {
			_ = h.container.Close()
		}
		go func() {
			_ = h.cmd.Wait()
		}()
	})
	return h.err
}
