// Package apiv1 holds the wire types and the gRPC service of the process
// runner. Messages travel as JSON through the codec registered by this
// package.
package apiv1

import "time"

type ProcessState string

const (
	ProcessStateUnspecified ProcessState = "PROCESS_STATE_UNSPECIFIED"
	ProcessStateRunning     ProcessState = "PROCESS_STATE_RUNNING"
	ProcessStateExited      ProcessState = "PROCESS_STATE_EXITED"
	ProcessStateDetached    ProcessState = "PROCESS_STATE_DETACHED"
	ProcessStateTerminated  ProcessState = "PROCESS_STATE_TERMINATED"
)

type Process struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

func (p *Process) GetCommand() string {
	if p == nil {
		return ""
	}
	return p.Command
}

func (p *Process) GetArgs() []string {
	if p == nil {
		return nil
	}
	return p.Args
}

type ProcessStatus struct {
	Pid       int32        `json:"pid"`
	State     ProcessState `json:"state"`
	ExitCode  *int32       `json:"exit_code,omitempty"`
	StartTime time.Time    `json:"start_time"`
	EndTime   *time.Time   `json:"end_time,omitempty"`
}

func (s *ProcessStatus) GetState() ProcessState {
	if s == nil {
		return ProcessStateUnspecified
	}
	return s.State
}

func (s *ProcessStatus) GetPid() int32 {
	if s == nil {
		return 0
	}
	return s.Pid
}

// GetExitCode returns the exit code and whether one is known.
func (s *ProcessStatus) GetExitCode() (int32, bool) {
	if s == nil || s.ExitCode == nil {
		return 0, false
	}
	return *s.ExitCode, true
}

type StartRequest struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

type StartResponse struct {
	ProcessIdentifier string         `json:"process_identifier"`
	Status            *ProcessStatus `json:"status"`
}

func (r *StartResponse) GetProcessIdentifier() string {
	if r == nil {
		return ""
	}
	return r.ProcessIdentifier
}

func (r *StartResponse) GetStatus() *ProcessStatus {
	if r == nil {
		return nil
	}
	return r.Status
}

type StatusRequest struct {
	ProcessIdentifier string `json:"process_identifier"`
}

type StatusResponse struct {
	Process *Process       `json:"process"`
	Status  *ProcessStatus `json:"status"`
}

func (r *StatusResponse) GetProcess() *Process {
	if r == nil {
		return nil
	}
	return r.Process
}

func (r *StatusResponse) GetStatus() *ProcessStatus {
	if r == nil {
		return nil
	}
	return r.Status
}

type StopRequest struct {
	ProcessIdentifier string `json:"process_identifier"`
}

type StopResponse = StatusResponse

type GetOutputRequest struct {
	ProcessIdentifier string `json:"process_identifier"`
}

type OutputType string

const (
	OutputTypeStdout OutputType = "stdout"
	OutputTypeStderr OutputType = "stderr"
)

type GetOutputResponse struct {
	Type OutputType `json:"type"`
	Data []byte     `json:"data"`
}

func (r *GetOutputResponse) GetType() OutputType {
	if r == nil {
		return ""
	}
	return r.Type
}

func (r *GetOutputResponse) GetData() []byte {
	if r == nil {
		return nil
	}
	return r.Data
}

// CmdlineRequest asks for the argument vector of any process on the server
// host, not only of processes started through the service.
type CmdlineRequest struct {
	Pid int32 `json:"pid"`
}

type CmdlineResponse struct {
	Args []string `json:"args"`
}

func (r *CmdlineResponse) GetArgs() []string {
	if r == nil {
		return nil
	}
	return r.Args
}
