package runner

import (
	"context"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
)

type StatusResult struct {
	Command *lib.Command
	Status  *lib.ProcessStatus
}

// Status returns the current process and status by identifier.
func (runner *Runner) Status(id string) (*StatusResult, error) {
	pe, err := runner.getProcess(id)
	if err != nil {
		return nil, err
	}

	status := pe.lockAndGetStatus()
	return &StatusResult{Command: &pe.command, Status: &status}, nil
}

// Wait blocks until the process has ended (or was detached) or ctx is done.
// On ctx expiry the current status is returned along with ctx.Err().
func (runner *Runner) Wait(ctx context.Context, id string) (*StatusResult, error) {
	pe, err := runner.getProcess(id)
	if err != nil {
		return nil, err
	}

	select {
	case <-pe.done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	status := pe.lockAndGetStatus()
	return &StatusResult{Command: &pe.command, Status: &status}, err
}

// List returns the identifiers of all known processes.
func (runner *Runner) List() []string {
	runner.mu.RLock()
	defer runner.mu.RUnlock()
	ids := make([]string, 0, len(runner.processes))
	for id := range runner.processes {
		ids = append(ids, id)
	}
	return ids
}
