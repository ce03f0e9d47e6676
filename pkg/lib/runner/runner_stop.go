package runner

import (
	"context"
	"fmt"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
	"github.com/SanjoDeundiak/childproc/pkg/lib/child"
)

// reapStopped collects a child Stop has just killed.
var reapStopped = func(c *child.Child) error {
	return c.Wait(context.Background())
}

// StopResult returns process info and its final status after Stop.
type StopResult struct {
	Command *lib.Command
	Status  *lib.ProcessStatus
}

// Stop kills the process group (the whole cgroup when there is one), reaps
// the child and returns its final status. Stopping a process that already
// ended returns its status unchanged.
func (runner *Runner) Stop(id string) (*StopResult, error) {
	pe, err := runner.getProcess(id)
	if err != nil {
		return nil, err
	}

	pe.ctl.Lock()
	defer pe.ctl.Unlock()

	if pe.child.Joinable() {
		if killed, err := killCgroup(pe.cgroup); err != nil {
			lib.Logger().Debug("cgroup kill failed, falling back to group kill", "id", id, "err", err)
		} else if killed {
			lib.Logger().Debug("killed cgroup", "id", id)
		}
		if err := pe.child.Terminate(); err != nil {
			return nil, fmt.Errorf("stop %s: %w", id, err)
		}
		err := reapStopped(pe.child)
		// The child is no longer joinable, so the watcher has given up on
		// it; finish here even when the reap failed so Wait returns.
		pe.finish(true)
		if err != nil {
			return nil, fmt.Errorf("stop %s: %w", id, err)
		}
	}

	status := pe.lockAndGetStatus()
	return &StopResult{Command: &pe.command, Status: &status}, nil
}

// Detach gives up ownership of the process. It keeps running, is no longer
// stopped by Stop or Close and its exit code is never collected.
func (runner *Runner) Detach(id string) (*StatusResult, error) {
	pe, err := runner.getProcess(id)
	if err != nil {
		return nil, err
	}

	pe.ctl.Lock()
	defer pe.ctl.Unlock()

	if pe.child.Joinable() {
		if err := pe.child.Detach(); err != nil {
			return nil, fmt.Errorf("detach %s: %w", id, err)
		}
		pe.finish(false)
	}

	status := pe.lockAndGetStatus()
	return &StatusResult{Command: &pe.command, Status: &status}, nil
}
