package child

import (
	"time"

	"golang.org/x/sys/windows"
)

const (
	invalidHandle = uintptr(windows.InvalidHandle)

	waitObject0 = 0x00000000
	waitTimeout = 0x00000102
	// Largest finite timeout accepted by WaitForSingleObject.
	maxWaitMillis = windows.INFINITE - 1
)

// native is the process handle and, for grouped children, the job object
// the process was assigned to.
type native struct {
	process windows.Handle
	job     windows.Handle
}

func (n *native) handle() uintptr {
	if n.process == 0 {
		return invalidHandle
	}
	return uintptr(n.process)
}

func (n *native) wait(timeout time.Duration) (bool, int, error) {
	if timeout < 0 {
		return n.waitObject(windows.INFINITE)
	}
	deadline := time.Now().Add(timeout)
	for {
		ms, capped := waitMillis(time.Until(deadline), maxWaitMillis)
		exited, code, err := n.waitObject(uint32(ms))
		if err != nil || exited || !capped {
			return exited, code, err
		}
	}
}

func (n *native) waitObject(ms uint32) (bool, int, error) {
	event, err := windows.WaitForSingleObject(n.process, ms)
	switch event {
	case waitObject0:
		var code uint32
		if err := windows.GetExitCodeProcess(n.process, &code); err != nil {
			return false, 0, err
		}
		return true, int(code), nil
	case waitTimeout:
		return false, 0, nil
	default:
		return false, 0, err
	}
}

func (n *native) kill(group bool) error {
	if group && n.job != 0 {
		return windows.TerminateJobObject(n.job, 1)
	}
	err := windows.TerminateProcess(n.process, 1)
	if err == windows.ERROR_ACCESS_DENIED {
		// Returned for a process that already exited.
		if event, _ := windows.WaitForSingleObject(n.process, 0); event == waitObject0 {
			return nil
		}
	}
	return err
}

func (n *native) release() {
	if n.process != 0 {
		_ = windows.CloseHandle(n.process)
		n.process = 0
	}
	if n.job != 0 {
		_ = windows.CloseHandle(n.job)
		n.job = 0
	}
}

func exitCode(status int) int { return status }
