// Package runner keeps a registry of children launched on behalf of remote
// callers. Each child gets a private working directory, captured output and,
// when running as root on Linux, its own cgroup.
package runner

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
	"github.com/SanjoDeundiak/childproc/pkg/lib/child"
	"github.com/SanjoDeundiak/childproc/pkg/lib/output_storage"
)

// pollSlice bounds how long the watcher holds a child between checks, and
// with it how long Stop and Detach may have to wait for the handle.
const pollSlice = 50 * time.Millisecond

// Runner manages processes started through it.
type Runner struct {
	mu        sync.RWMutex
	processes map[string]*processEntry
	closed    bool

	baseDir  string
	launcher child.Launcher
	limits   Limits
}

type processEntry struct {
	id      string
	command lib.Command
	workDir string
	cgroup  string

	// ctl serializes every call into child.
	ctl   sync.Mutex
	child *child.Child

	mu       sync.RWMutex
	state    lib.State
	exitCode *int
	start    time.Time
	end      *time.Time
	done     chan struct{}

	stdout *output_storage.Storage
	stderr *output_storage.Storage
	pid    int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLauncher replaces the platform launch strategy.
func WithLauncher(l child.Launcher) Option {
	return func(r *Runner) { r.launcher = l }
}

// WithLimits sets the cgroup limits applied to every child. They only take
// effect as root on Linux.
func WithLimits(l Limits) Option {
	return func(r *Runner) { r.limits = l }
}

// NewRunner creates a Runner with a fresh base directory for the working
// directories of its children.
func NewRunner(opts ...Option) (*Runner, error) {
	baseDir, err := os.MkdirTemp("", "prn-*")
	if err != nil {
		return nil, err
	}
	r := &Runner{
		processes: make(map[string]*processEntry),
		baseDir:   baseDir,
		launcher:  child.Default(),
		limits:    DefaultLimits,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Close kills every child that is still owned, waits for it and removes the
// working directories. The Runner must not be used afterwards.
func (runner *Runner) Close() error {
	runner.mu.Lock()
	runner.closed = true
	entries := make([]*processEntry, 0, len(runner.processes))
	for _, pe := range runner.processes {
		entries = append(entries, pe)
	}
	runner.mu.Unlock()

	var errs []error
	for _, pe := range entries {
		pe.ctl.Lock()
		wasOwned := pe.child.Joinable()
		if err := pe.child.Close(); err != nil {
			errs = append(errs, fmt.Errorf("process %s: %w", pe.id, err))
		}
		if wasOwned {
			pe.finish(true)
		}
		pe.ctl.Unlock()
	}
	if err := os.RemoveAll(runner.baseDir); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (runner *Runner) getProcess(id string) (*processEntry, error) {
	runner.mu.RLock()
	pe := runner.processes[id]
	runner.mu.RUnlock()
	if pe == nil {
		return nil, fmt.Errorf("process %s: %w", id, os.ErrNotExist)
	}
	return pe, nil
}

// watch reaps the child once it exits. It gives up the handle between
// slices so that Stop and Detach can get in.
func (runner *Runner) watch(pe *processEntry) {
	for {
		pe.ctl.Lock()
		if !pe.child.Joinable() {
			pe.ctl.Unlock()
			return
		}
		exited, err := pe.child.WaitFor(pollSlice)
		if err != nil {
			lib.Logger().Warn("waiting for process failed", "id", pe.id, "pid", pe.pid, "err", err)
		}
		if exited || err != nil {
			pe.finish(false)
			pe.ctl.Unlock()
			return
		}
		pe.ctl.Unlock()
	}
}

// finish records the final state of the child. Callers hold ctl.
func (pe *processEntry) finish(stopped bool) {
	pe.mu.Lock()
	defer pe.mu.Unlock()
	if pe.end != nil {
		return
	}

	now := time.Now()
	pe.end = &now
	switch st := pe.child.State(); {
	case st == lib.StateDetached:
		pe.state = lib.StateDetached
	case stopped:
		pe.state = lib.StateTerminated
	default:
		pe.state = st
	}
	if pe.child.State() == lib.StateExited {
		code := pe.child.ExitCode()
		pe.exitCode = &code
	}
	close(pe.done)

	if err := cleanupCgroup(pe.cgroup); err != nil {
		lib.Logger().Debug("cgroup cleanup failed", "id", pe.id, "err", err)
	}
	lib.Logger().Info("process finished", "id", pe.id, "pid", pe.pid, "state", pe.state, "exit_code", pe.child.ExitCode())
}

func (pe *processEntry) lockAndGetStatus() lib.ProcessStatus {
	pe.mu.RLock()
	defer pe.mu.RUnlock()

	st := lib.ProcessStatus{Pid: pe.pid, State: pe.state, StartTime: pe.start}
	if pe.exitCode != nil {
		code := *pe.exitCode
		st.ExitCode = &code
	}
	if pe.end != nil {
		t := *pe.end
		st.EndTime = &t
	}
	return st
}
