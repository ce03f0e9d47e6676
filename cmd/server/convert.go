package main

import (
	apiv1 "github.com/SanjoDeundiak/childproc/api/v1"
	"github.com/SanjoDeundiak/childproc/pkg/lib"
)

func toAPIProcess(p *lib.Command) *apiv1.Process {
	return &apiv1.Process{Command: p.Command, Args: p.Args}
}

func toAPIProcessStatus(st *lib.ProcessStatus) *apiv1.ProcessStatus {
	ps := &apiv1.ProcessStatus{
		Pid:       int32(st.Pid),
		State:     toAPIProcessState(st.State),
		StartTime: st.StartTime,
	}
	if st.ExitCode != nil {
		v := int32(*st.ExitCode)
		ps.ExitCode = &v
	}
	if st.EndTime != nil {
		t := *st.EndTime
		ps.EndTime = &t
	}
	return ps
}

func toAPIProcessState(s lib.State) apiv1.ProcessState {
	switch s {
	case lib.StateRunning:
		return apiv1.ProcessStateRunning
	case lib.StateExited:
		return apiv1.ProcessStateExited
	case lib.StateDetached:
		return apiv1.ProcessStateDetached
	case lib.StateTerminated:
		return apiv1.ProcessStateTerminated
	default:
		return apiv1.ProcessStateUnspecified
	}
}
