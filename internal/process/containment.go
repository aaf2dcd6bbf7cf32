package process

import (
	"io"
	"os"
	"os/exec"
)

// Containment ties a child's lifetime to the supervisor beyond the explicit
// kill on exit. Each platform provides a default; see DefaultContainment.
type Containment interface {
	// Name identifies the strategy in logs.
	Name() string

	// Prepare adjusts cmd before it is started.
	Prepare(cmd *exec.Cmd)

	// Attach places a started process under containment. The returned closer,
	// if any, releases the containment object and must stay open while the
	// process should be protected.
	Attach(p *os.Process) (io.Closer, error)
}

// NoContainment leaves the process exactly as os/exec started it.
type NoContainment struct{}

// Name implements Containment.
func (NoContainment) Name() string { return "none" }

// Prepare implements Containment.
func (NoContainment) Prepare(*exec.Cmd) {}

// Attach implements Containment.
func (NoContainment) Attach(*os.Process) (io.Closer, error) { return nil, nil }
