package lib

import "time"

// State is the lifecycle state of a launched child process.
type State int

const (
	StateUnspecified State = iota
	// StateRunning is the state right after a successful launch. Only a
	// running child may be joined.
	StateRunning
	// StateExited means a wait observed the termination and the exit code
	// has been collected.
	StateExited
	// StateDetached means ownership was given up; the process keeps running
	// and is never waited for or terminated by its former handle.
	StateDetached
	// StateTerminated means a forceful stop was requested. The process still
	// has to be reaped by a wait before its exit code is known.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateExited:
		return "Exited"
	case StateDetached:
		return "Detached"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unspecified"
	}
}

// Command captures command metadata used to start a process.
type Command struct {
	Command string
	Args    []string
}

// ProcessStatus captures runtime state and timestamps.
type ProcessStatus struct {
	Pid       int
	State     State
	ExitCode  *int
	StartTime time.Time
	EndTime   *time.Time
}
