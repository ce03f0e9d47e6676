//go:build unix

package child

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
)

// wait4 is the only way this package reaps children.
var wait4 = unix.Wait4

func reap(pid int, block bool) (bool, int, error) {
	opts := unix.WNOHANG
	if block {
		opts = 0
	}
	for {
		var ws unix.WaitStatus
		wpid, err := wait4(pid, &ws, opts, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, 0, err
		}
		if wpid == 0 {
			return false, 0, nil
		}
		return true, int(ws), nil
	}
}

// reapPolling reaps with WNOHANG until the child is gone or timeout passes.
func reapPolling(pid int, timeout time.Duration) (bool, int, error) {
	deadline := time.Now().Add(timeout)
	backoff := time.Millisecond
	for {
		exited, status, err := reap(pid, false)
		if err != nil || exited {
			return exited, status, err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, 0, nil
		}
		time.Sleep(min(backoff, remaining))
		backoff = min(backoff*2, 50*time.Millisecond)
	}
}

func exitCode(status int) int {
	ws := unix.WaitStatus(status)
	switch {
	case ws.Exited():
		return ws.ExitStatus()
	case ws.Signaled():
		return int(ws.Signal())
	default:
		return status
	}
}

func killPid(pid int, group bool) error {
	target := pid
	if group {
		target = -pid
	}
	err := unix.Kill(target, unix.SIGKILL)
	if err == unix.ESRCH {
		return nil
	}
	return err
}

func notOurChild(err error) bool { return errors.Is(err, unix.ECHILD) }

// probePid checks that pid exists and may be signalled by the caller.
func probePid(pid int) error {
	switch err := unix.Kill(pid, 0); err {
	case nil:
		return nil
	case unix.ESRCH:
		return lib.ErrNotFound
	case unix.EPERM:
		return lib.ErrAccessDenied
	default:
		return err
	}
}
