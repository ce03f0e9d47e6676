package child

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
	"github.com/SanjoDeundiak/childproc/pkg/lib/launch"
)

// Launcher starts the process described by a request.
type Launcher interface {
	Launch(req *launch.Request) (*Child, error)
}

// Default returns the launch strategy compiled for this platform.
func Default() Launcher { return strategy{} }

// Launch starts req with the platform strategy.
func Launch(req *launch.Request) (*Child, error) {
	return Default().Launch(req)
}

// Spawn starts req and detaches it immediately.
func Spawn(req *launch.Request) (int, error) {
	c, err := Launch(req)
	if err != nil {
		return 0, err
	}
	pid := c.Pid()
	return pid, c.Detach()
}

// Attach takes ownership of a running process by pid, as if Launch had
// started it: Close and the GC cleanup terminate it while it still runs.
// Attaching never signals the process. The process is not treated as a
// group leader.
//
// On unix only the caller's own children can be waited for, such as a pid
// returned by Spawn. Any other process can be terminated, but Running and
// Wait on it fail with a WaitError wrapping ECHILD and its exit code stays
// unknown. A child that already
// exited is collected right away and the handle starts out Exited.
func Attach(pid int) (*Child, error) {
	if pid <= 0 {
		return nil, fmt.Errorf("attach pid %d: %w", pid, lib.ErrNotFound)
	}
	n, err := attachNative(pid)
	if err != nil {
		return nil, fmt.Errorf("attach pid %d: %w", pid, err)
	}
	c := newChild(pid, n, false, "")
	if _, err := c.p.waitOnce(0); err != nil {
		if !notOurChild(err) {
			c.cleanup.Stop()
			c.p.release()
			return nil, err
		}
		c.p.foreign = true
	}
	lib.Logger().Debug("attached process", "pid", pid, "foreign", c.p.foreign, "state", c.p.state)
	return c, nil
}

// System starts req, waits for it and returns its exit code. If ctx ends
// first the child is killed and ctx.Err() is returned.
func System(ctx context.Context, req *launch.Request) (int, error) {
	c, err := Launch(req)
	if err != nil {
		return -1, err
	}
	defer c.Close()
	if err := c.Wait(ctx); err != nil {
		return -1, err
	}
	return c.ExitCode(), nil
}

func (s strategy) Launch(req *launch.Request) (*Child, error) {
	if req == nil {
		return nil, &lib.LaunchError{Err: fmt.Errorf("%w: nil request", lib.ErrInvalid)}
	}
	c, err := s.start(req)
	if err != nil {
		lib.Logger().Debug("launch failed", "strategy", s.Name(), "cmd", req.String(), "err", err)
		req.NotifyError(err)
		return nil, err
	}
	lib.Logger().Debug("launched child", "strategy", s.Name(), "cmd", req.String(), "pid", c.Pid())
	req.NotifySuccess(c.Pid())
	return c, nil
}

// lookExecutable resolves a bare command name through PATH. Paths with a
// directory part are returned unchanged and left for the OS to reject.
func lookExecutable(path string) (string, error) {
	if filepath.Base(path) != path {
		return path, nil
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %w", fs.ErrNotExist, err)
		}
		return "", err
	}
	return resolved, nil
}
