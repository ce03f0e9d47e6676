//go:build !linux && !darwin && !freebsd && !windows && !openbsd && !netbsd && !solaris && !aix

package cmdline

import "github.com/SanjoDeundiak/childproc/pkg/lib"

func args(pid int) ([]string, error) {
	return nil, &lib.QueryError{Pid: pid, Kind: lib.ErrUnsupported}
}

func handleArgs(uintptr) ([]string, error) {
	return nil, &lib.QueryError{Pid: -1, Kind: lib.ErrUnsupported}
}

func processArgs(p Process) ([]string, error) {
	return Args(p.Pid())
}
