//go:build unix && !linux

package child

import (
	"syscall"
	"time"

	"github.com/SanjoDeundiak/childproc/pkg/lib/launch"
)

const invalidHandle = ^uintptr(0)

// native is just the pid: these systems have no process descriptor that
// the launcher could hold.
type native struct {
	pid int
}

func newNative(pid, _ int) *native {
	return &native{pid: pid}
}

func attachNative(pid int) (*native, error) {
	if err := probePid(pid); err != nil {
		return nil, err
	}
	return newNative(pid, -1), nil
}

func sysProcAttr(req *launch.Request, _ *int) (*syscall.SysProcAttr, func(), error) {
	return baseSysProcAttr(req), func() {}, nil
}

func (n *native) handle() uintptr { return uintptr(n.pid) }

func (n *native) wait(timeout time.Duration) (bool, int, error) {
	switch {
	case timeout < 0:
		return reap(n.pid, true)
	case timeout == 0:
		return reap(n.pid, false)
	default:
		return reapPolling(n.pid, timeout)
	}
}

func (n *native) kill(group bool) error { return killPid(n.pid, group) }

func (n *native) release() {}
