//go:build !unix && !windows

package process

import "os/exec"

// DefaultContainment returns the platform's containment strategy.
func DefaultContainment() Containment {
	return NoContainment{}
}

func killProcess(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}
