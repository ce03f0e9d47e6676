package lib

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLaunch matches every *LaunchError.
	ErrLaunch = errors.New("launch failure")
	// ErrConflict matches every *ConflictError.
	ErrConflict = errors.New("configuration conflict")
	// ErrWait matches every *WaitError. It reports a failing OS wait call,
	// never a non-zero exit code of the child.
	ErrWait = errors.New("wait failure")
	// ErrNotJoinable is returned when waiting on a handle that was detached
	// or never held a process.
	ErrNotJoinable = errors.New("process is not joinable")
	// ErrUnsupported is returned for features the current platform lacks.
	ErrUnsupported = errors.New("not supported on this platform")

	ErrNotFound     = errors.New("process not found")
	ErrAccessDenied = errors.New("access denied")
	ErrParse        = errors.New("malformed process information")
)

// LaunchError describes a failed launch.
//
// Started reports whether an OS process was created before the failure. A
// started process has always been killed and reaped again by the time the
// error is returned, but it did consume resources (and may have run briefly).
type LaunchError struct {
	Path    string
	Started bool
	Err     error
}

func (e *LaunchError) Error() string {
	if e.Started {
		return fmt.Sprintf("launch %s: started then failed: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("launch %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

func (e *LaunchError) Is(target error) bool { return target == ErrLaunch }

// ConflictError lists the contradictory initializers found while building a
// launch request.
type ConflictError struct {
	Field  string
	Values []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting %s: %s", e.Field, strings.Join(e.Values, " vs "))
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// WaitError wraps an error returned by the OS wait primitive.
type WaitError struct {
	Pid int
	Err error
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("wait for pid %d: %v", e.Pid, e.Err)
}

func (e *WaitError) Unwrap() error { return e.Err }

func (e *WaitError) Is(target error) bool { return target == ErrWait }

// QueryError is returned by foreign process introspection. Kind is one of
// ErrNotFound, ErrAccessDenied, ErrParse or ErrUnsupported.
type QueryError struct {
	Pid  int
	Kind error
	Err  error
}

func (e *QueryError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("pid %d: %v", e.Pid, e.Kind)
	}
	return fmt.Sprintf("pid %d: %v: %v", e.Pid, e.Kind, e.Err)
}

func (e *QueryError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ErrInvalid is returned by the launch builder for values that are wrong on
// their own, independent of other initializers.
var ErrInvalid = errors.New("invalid launch configuration")
