//go:build openbsd || netbsd || solaris || aix

package cmdline

import (
	"errors"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
)

func args(pid int) ([]string, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return nil, &lib.QueryError{Pid: pid, Kind: lib.ErrNotFound, Err: err}
		}
		return nil, queryError(pid, err)
	}
	argv, err := p.CmdlineSlice()
	if err != nil {
		return nil, queryError(pid, err)
	}
	return argv, nil
}

func handleArgs(handle uintptr) ([]string, error) {
	return Args(int(handle))
}

func processArgs(p Process) ([]string, error) {
	return Args(p.Pid())
}
