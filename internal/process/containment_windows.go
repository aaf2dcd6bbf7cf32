//go:build windows

package process

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"unsafe"

	"golang.org/x/sys/windows"
)

// jobObject assigns the child to a job object flagged
// JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE. The supervisor holds the only handle, so
// when it exits for any reason, including a crash, the kernel closes the
// handle and kills every process in the job.
type jobObject struct{}

// DefaultContainment returns the platform's containment strategy.
func DefaultContainment() Containment {
	return jobObject{}
}

func (jobObject) Name() string { return "job-object" }

func (jobObject) Prepare(*exec.Cmd) {}

func (jobObject) Attach(p *os.Process) (io.Closer, error) {
	job, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create job object: %w", err)
	}

	info := windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION{
		BasicLimitInformation: windows.JOBOBJECT_BASIC_LIMIT_INFORMATION{
			LimitFlags: windows.JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE,
		},
	}
	if _, err := windows.SetInformationJobObject(
		job,
		windows.JobObjectExtendedLimitInformation,
		uintptr(unsafe.Pointer(&info)),
		uint32(unsafe.Sizeof(info)),
	); err != nil {
		_ = windows.CloseHandle(job)
		return nil, fmt.Errorf("set job object limits: %w", err)
	}

	proc, err := windows.OpenProcess(windows.PROCESS_SET_QUOTA|windows.PROCESS_TERMINATE, false, uint32(p.Pid))
	if err != nil {
		_ = windows.CloseHandle(job)
		return nil, fmt.Errorf("open process %d: %w", p.Pid, err)
	}
	defer windows.CloseHandle(proc)

	if err := windows.AssignProcessToJobObject(job, proc); err != nil {
		_ = windows.CloseHandle(job)
		return nil, fmt.Errorf("assign process %d to job object: %w", p.Pid, err)
	}

	return jobHandle(job), nil
}

// jobHandle closes the job object, which kills any process still in it.
type jobHandle windows.Handle

func (j jobHandle) Close() error {
	return windows.CloseHandle(windows.Handle(j))
}

func killProcess(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}
