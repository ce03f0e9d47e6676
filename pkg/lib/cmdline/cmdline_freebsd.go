package cmdline

import (
	"github.com/SanjoDeundiak/childproc/pkg/lib"
	"golang.org/x/sys/unix"
)

func args(pid int) ([]string, error) {
	data, err := unix.SysctlRaw("kern.proc.args", pid)
	if err != nil {
		return nil, queryError(pid, err)
	}
	if len(data) == 0 {
		// kern.proc.args is empty for exiting processes.
		return nil, &lib.QueryError{Pid: pid, Kind: lib.ErrNotFound}
	}
	return splitNul(data), nil
}

func handleArgs(handle uintptr) ([]string, error) {
	return Args(int(handle))
}

func processArgs(p Process) ([]string, error) {
	return Args(p.Pid())
}
