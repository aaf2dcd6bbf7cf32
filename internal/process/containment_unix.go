//go:build unix

package process

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
)

// processGroup starts the child as the leader of a new process group so a
// kill reaches anything it forks. There is no kernel safety net on unix: if
// the supervisor dies abruptly the group keeps running.
type processGroup struct{}

// DefaultContainment returns the platform's containment strategy.
func DefaultContainment() Containment {
	return processGroup{}
}

func (processGroup) Name() string { return "process-group" }

func (processGroup) Prepare(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

func (processGroup) Attach(*os.Process) (io.Closer, error) {
	return nil, nil
}

// killProcess sends SIGKILL to the child's process group when it leads one,
// and to the child alone otherwise.
func killProcess(cmd *exec.Cmd) error {
	if cmd.SysProcAttr != nil && cmd.SysProcAttr.Setpgid {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, syscall.ESRCH):
			return os.ErrProcessDone
		}
	}
	return cmd.Process.Kill()
}
