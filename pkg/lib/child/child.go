package child

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
)

// waitSlice bounds a single OS wait while a cancellable context is being
// watched.
const waitSlice = 100 * time.Millisecond

// proc holds everything a Child owns. It never points back to the Child, so
// it can be handed to the GC cleanup.
type proc struct {
	pid    int
	group  bool
	path   string
	state  lib.State
	status int
	native *native
	// foreign is set for an attached process that is not a child of the
	// caller; it can be terminated but never reaped.
	foreign bool
}

// Child is the handle of one launched process.
type Child struct {
	p       *proc
	cleanup runtime.Cleanup
}

func newChild(pid int, n *native, group bool, path string) *Child {
	p := &proc{pid: pid, group: group, path: path, state: lib.StateRunning, status: -1, native: n}
	c := &Child{p: p}
	c.cleanup = runtime.AddCleanup(c, finalize, p)
	return c
}

// Valid reports whether the handle holds, or held, a process.
func (c *Child) Valid() bool { return c != nil && c.p != nil }

// Pid returns the process id, or 0 for an invalid handle.
func (c *Child) Pid() int {
	if !c.Valid() {
		return 0
	}
	return c.p.pid
}

// NativeHandle returns the OS handle of the process: a pidfd on Linux (or
// the pid when the kernel has no pidfd support), a process HANDLE on
// Windows and the pid elsewhere. It is only meaningful while the child is
// running or terminated and not yet reaped.
func (c *Child) NativeHandle() uintptr {
	if !c.Valid() || c.p.native == nil {
		return invalidHandle
	}
	return c.p.native.handle()
}

func (c *Child) State() lib.State {
	if !c.Valid() {
		return lib.StateUnspecified
	}
	return c.p.state
}

// Joinable reports whether the child is running and owned by this handle.
func (c *Child) Joinable() bool { return c.State() == lib.StateRunning }

// InGroup reports whether the child was started in its own process group.
func (c *Child) InGroup() bool { return c.Valid() && c.p.group }

// ExitCode returns the exit status of a normally exited child, or the signal
// number of a child killed by a signal. It is -1 until a wait observed the
// exit.
func (c *Child) ExitCode() int {
	if c.State() != lib.StateExited {
		return -1
	}
	return exitCode(c.p.status)
}

// NativeExitStatus returns the raw status reported by the OS wait call
// (the wait status word on unix, the process exit code on Windows), or -1.
func (c *Child) NativeExitStatus() int {
	if c.State() != lib.StateExited {
		return -1
	}
	return c.p.status
}

func (c *Child) reapable() error {
	switch c.State() {
	case lib.StateRunning, lib.StateTerminated:
		return nil
	default:
		return fmt.Errorf("pid %d is %s: %w", c.Pid(), c.State(), lib.ErrNotJoinable)
	}
}

// Running polls the child without blocking. When the child has already
// ended its exit status is collected and the handle moves to Exited.
func (c *Child) Running() (bool, error) {
	if c.State() == lib.StateExited {
		return false, nil
	}
	if err := c.reapable(); err != nil {
		return false, err
	}
	exited, err := c.p.waitOnce(0)
	if err != nil {
		return false, err
	}
	return !exited, nil
}

// Wait blocks until the child exits or ctx is done. Waiting on a child that
// already exited returns immediately without calling into the OS. When ctx
// ends first, ctx.Err() is returned and the child stays in its state.
func (c *Child) Wait(ctx context.Context) error {
	if c.State() == lib.StateExited {
		return nil
	}
	if err := c.reapable(); err != nil {
		return err
	}
	if ctx.Done() == nil {
		_, err := c.p.waitOnce(-1)
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		slice := waitSlice
		if deadline, ok := ctx.Deadline(); ok {
			if remaining := time.Until(deadline); remaining < slice {
				slice = max(remaining, 0)
			}
		}
		exited, err := c.p.waitOnce(slice)
		if err != nil || exited {
			return err
		}
	}
}

// WaitFor waits at most d for the child to exit and reports whether it did.
// A false result leaves the child untouched.
func (c *Child) WaitFor(d time.Duration) (bool, error) {
	if c.State() == lib.StateExited {
		return true, nil
	}
	if err := c.reapable(); err != nil {
		return false, err
	}
	return c.p.waitOnce(max(d, 0))
}

// WaitUntil is WaitFor with an absolute deadline.
func (c *Child) WaitUntil(t time.Time) (bool, error) {
	return c.WaitFor(time.Until(t))
}

// Terminate forcefully stops the child (its whole group when started with
// one). It does not wait: the child moves to Terminated and a later Wait or
// Close reaps it. Terminating an exited child is a no-op.
func (c *Child) Terminate() error {
	switch c.State() {
	case lib.StateExited:
		return nil
	case lib.StateRunning, lib.StateTerminated:
	default:
		return fmt.Errorf("terminate pid %d: %w", c.Pid(), lib.ErrNotJoinable)
	}
	if err := c.p.native.kill(c.p.group); err != nil {
		return fmt.Errorf("terminate pid %d: %w", c.p.pid, err)
	}
	lib.Logger().Debug("terminated child", "pid", c.p.pid, "group", c.p.group)
	c.p.state = lib.StateTerminated
	return nil
}

// Detach gives up ownership. The process keeps running and is neither
// waited for nor terminated by this handle afterwards. A terminated child
// is reaped instead of released, so it ends up Exited rather than left as
// a zombie nobody waits for.
func (c *Child) Detach() error {
	switch c.State() {
	case lib.StateExited, lib.StateDetached:
		return nil
	case lib.StateTerminated:
		_, err := c.p.waitOnce(-1)
		return err
	case lib.StateRunning:
	default:
		return fmt.Errorf("detach: %w", lib.ErrNotJoinable)
	}
	c.p.release()
	c.p.state = lib.StateDetached
	c.cleanup.Stop()
	lib.Logger().Debug("detached child", "pid", c.p.pid)
	return nil
}

// Close releases the handle. A child that is still owned is killed and
// reaped first; use Wait or Detach beforehand to avoid that. Close is
// idempotent.
func (c *Child) Close() error {
	if !c.Valid() {
		return nil
	}
	c.cleanup.Stop()
	err := c.p.shutdown()
	if err != nil {
		lib.Logger().Warn("failed to stop owned child", "pid", c.p.pid, "path", c.p.path, "err", err)
	}
	return err
}

func (c *Child) String() string {
	if !c.Valid() {
		return "child(invalid)"
	}
	return fmt.Sprintf("child(pid=%d, %s)", c.p.pid, c.p.state)
}

// waitOnce runs one OS wait bounded by timeout (negative blocks, zero polls)
// and records the exit when it is observed.
func (p *proc) waitOnce(timeout time.Duration) (bool, error) {
	exited, status, err := p.native.wait(timeout)
	if err != nil {
		return false, &lib.WaitError{Pid: p.pid, Err: err}
	}
	if !exited {
		return false, nil
	}
	p.status = status
	p.state = lib.StateExited
	p.release()
	lib.Logger().Debug("child exited", "pid", p.pid, "status", status)
	return true, nil
}

func (p *proc) release() {
	if p.native != nil {
		p.native.release()
	}
}

// shutdown applies the release policy: kill if still running, reap if not
// yet reaped.
func (p *proc) shutdown() error {
	switch p.state {
	case lib.StateRunning:
		if err := p.native.kill(p.group); err != nil {
			p.release()
			return err
		}
		p.state = lib.StateTerminated
		fallthrough
	case lib.StateTerminated:
		if p.foreign {
			p.release()
			return nil
		}
		_, err := p.waitOnce(-1)
		if err != nil {
			p.release()
		}
		return err
	default:
		p.release()
		return nil
	}
}

func finalize(p *proc) {
	if p.state == lib.StateRunning {
		lib.Logger().Warn("child handle dropped while running, killing it", "pid", p.pid, "path", p.path)
	}
	if err := p.shutdown(); err != nil {
		lib.Logger().Warn("failed to stop dropped child", "pid", p.pid, "path", p.path, "err", err)
	}
}
