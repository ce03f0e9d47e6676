package cmdline

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
)

// Process is satisfied by *child.Child.
type Process interface {
	Pid() int
	NativeHandle() uintptr
}

// Args returns the argument vector of process pid, argv[0] included.
func Args(pid int) ([]string, error) {
	if pid <= 0 {
		return nil, &lib.QueryError{Pid: pid, Kind: lib.ErrNotFound}
	}
	return args(pid)
}

// ArgsFromHandle is Args for a native process handle: a pidfd on Linux, a
// process HANDLE on Windows and the pid itself elsewhere.
func ArgsFromHandle(handle uintptr) ([]string, error) {
	return handleArgs(handle)
}

// ArgsOf is Args for a process handle object such as a *child.Child.
func ArgsOf(p Process) ([]string, error) {
	return processArgs(p)
}

// MustArgs is like Args but panics on error.
func MustArgs(pid int) []string {
	return must(Args(pid))
}

// MustArgsFromHandle is like ArgsFromHandle but panics on error.
func MustArgsFromHandle(handle uintptr) []string {
	return must(ArgsFromHandle(handle))
}

// MustArgsOf is like ArgsOf but panics on error.
func MustArgsOf(p Process) []string {
	return must(ArgsOf(p))
}

func must(args []string, err error) []string {
	if err != nil {
		panic(err)
	}
	return args
}

// queryError classifies an OS failure. A read that fails after the process
// was located is a NotFound as well: the process went away underneath us.
func queryError(pid int, err error) error {
	var qe *lib.QueryError
	if errors.As(err, &qe) {
		return err
	}
	if errors.Is(err, fs.ErrPermission) {
		return &lib.QueryError{Pid: pid, Kind: lib.ErrAccessDenied, Err: err}
	}
	return &lib.QueryError{Pid: pid, Kind: lib.ErrNotFound, Err: err}
}

func parseError(pid int, format string, args ...any) error {
	return &lib.QueryError{Pid: pid, Kind: lib.ErrParse, Err: fmt.Errorf(format, args...)}
}
