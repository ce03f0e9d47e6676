package runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
	"github.com/SanjoDeundiak/childproc/pkg/lib/launch"
	"github.com/SanjoDeundiak/childproc/pkg/lib/output_storage"
)

var errRunnerClosed = errors.New("runner is closed")

type StartResult struct {
	ID     string
	Status *lib.ProcessStatus
}

// Start launches command in its own process group with stdin from the null
// device and stdout and stderr captured. It returns the generated
// identifier and the initial status.
func (runner *Runner) Start(command string, args ...string) (*StartResult, error) {
	if command == "" {
		return nil, fmt.Errorf("%w: command is required", lib.ErrInvalid)
	}
	runner.mu.RLock()
	closed := runner.closed
	runner.mu.RUnlock()
	if closed {
		return nil, errRunnerClosed
	}

	id := lib.NewID()
	workDir := filepath.Join(runner.baseDir, id)
	if err := os.MkdirAll(workDir, 0o700); err != nil {
		return nil, err
	}

	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return nil, err
	}

	b := launch.NewBuilder(command).
		Args(args...).
		Dir(workDir).
		Stdin(launch.Discard()).
		Stdout(launch.Pipe(outW)).
		Stderr(launch.Pipe(errW)).
		Group()

	cgroup, err := setupCgroup(id, runner.limits)
	if err != nil {
		lib.Logger().Warn("cgroup setup failed, starting without one", "id", id, "err", err)
	} else if cgroup != "" {
		b.Cgroup(cgroup)
	}

	pe := &processEntry{
		id:      id,
		command: lib.Command{Command: command, Args: append([]string(nil), args...)},
		workDir: workDir,
		cgroup:  cgroup,
		state:   lib.StateRunning,
		done:    make(chan struct{}),
		stdout:  output_storage.New(),
		stderr:  output_storage.New(),
	}

	req, err := b.Build()
	if err == nil {
		pe.start = time.Now()
		pe.child, err = runner.launcher.Launch(req)
	}
	// The child holds its own copies of the write ends.
	outW.Close()
	errW.Close()
	if err != nil {
		outR.Close()
		errR.Close()
		_ = cleanupCgroup(cgroup)
		lib.Logger().Info("failed to start process", "id", id, "cmd", command, "err", err)
		return nil, err
	}
	pe.pid = pe.child.Pid()

	go pump(id, outR, pe.stdout)
	go pump(id, errR, pe.stderr)

	runner.mu.Lock()
	if runner.closed {
		runner.mu.Unlock()
		// Close ran while the child was launching and did not see it.
		pe.ctl.Lock()
		if err := pe.child.Close(); err != nil {
			lib.Logger().Warn("failed to stop process started during close", "id", id, "pid", pe.pid, "err", err)
		}
		pe.finish(true)
		pe.ctl.Unlock()
		_ = os.RemoveAll(workDir)
		return nil, errRunnerClosed
	}
	runner.processes[id] = pe
	runner.mu.Unlock()

	go runner.watch(pe)

	lib.Logger().Info("started process", "id", id, "pid", pe.pid, "cmd", command)
	status := pe.lockAndGetStatus()
	return &StartResult{ID: id, Status: &status}, nil
}

func pump(id string, r *os.File, s *output_storage.Storage) {
	if err := output_storage.Pump(r, s); err != nil {
		lib.Logger().Warn("output capture ended early", "id", id, "err", err)
	}
}
