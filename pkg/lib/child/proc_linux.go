package child

import (
	"math"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
	"github.com/SanjoDeundiak/childproc/pkg/lib/launch"
)

const invalidHandle = ^uintptr(0)

// native is the pid plus, when the kernel supports it, a pidfd. The pidfd
// keeps signals and readiness polling bound to this exact process even
// after its pid is recycled.
type native struct {
	pid   int
	pidfd int
}

func newNative(pid, pidfd int) *native {
	return &native{pid: pid, pidfd: pidfd}
}

// attachNative opens a pidfd for an existing process when the kernel
// supports it.
func attachNative(pid int) (*native, error) {
	if err := probePid(pid); err != nil {
		return nil, err
	}
	fd, err := unix.PidfdOpen(pid, 0)
	switch err {
	case nil:
	case unix.ESRCH:
		return nil, lib.ErrNotFound
	default:
		fd = -1
	}
	return newNative(pid, fd), nil
}

func sysProcAttr(req *launch.Request, pidfd *int) (*syscall.SysProcAttr, func(), error) {
	sys := baseSysProcAttr(req)
	sys.PidFD = pidfd
	if dir := req.Cgroup(); dir != "" {
		f, err := os.Open(dir)
		if err != nil {
			return nil, nil, err
		}
		sys.UseCgroupFD = true
		sys.CgroupFD = int(f.Fd())
		return sys, func() { _ = f.Close() }, nil
	}
	return sys, func() {}, nil
}

func (n *native) handle() uintptr {
	if n.pidfd >= 0 {
		return uintptr(n.pidfd)
	}
	return uintptr(n.pid)
}

func (n *native) wait(timeout time.Duration) (bool, int, error) {
	switch {
	case timeout < 0:
		return reap(n.pid, true)
	case timeout == 0:
		return reap(n.pid, false)
	case n.pidfd < 0:
		return reapPolling(n.pid, timeout)
	}
	ready, err := pollPidfd(n.pidfd, timeout)
	if err != nil || !ready {
		return false, 0, err
	}
	return reap(n.pid, false)
}

// pollPidfd waits until the pidfd turns readable, which happens when the
// process exits.
func pollPidfd(fd int, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		ms, capped := waitMillis(time.Until(deadline), math.MaxInt32)
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, int(ms))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		if n > 0 || !capped {
			return n > 0, nil
		}
	}
}

func (n *native) kill(group bool) error {
	if group || n.pidfd < 0 {
		return killPid(n.pid, group)
	}
	err := unix.PidfdSendSignal(n.pidfd, unix.SIGKILL, nil, 0)
	if err == unix.ESRCH {
		return nil
	}
	return err
}

func (n *native) release() {
	if n.pidfd >= 0 {
		_ = unix.Close(n.pidfd)
		n.pidfd = -1
	}
}
