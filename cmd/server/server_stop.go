package main

import (
	"context"

	apiv1 "github.com/SanjoDeundiak/childproc/api/v1"
)

func (s *ProcessRunnerServiceServer) Stop(ctx context.Context, request *apiv1.StopRequest) (*apiv1.StopResponse, error) {
	processIdentifier := request.ProcessIdentifier

	if err := s.owners.check(ctx, processIdentifier); err != nil {
		return nil, err
	}

	res, err := s.runner.Stop(processIdentifier)
	if err != nil {
		return nil, toStatus(err, "error stopping process")
	}
	return &apiv1.StopResponse{Process: toAPIProcess(res.Command), Status: toAPIProcessStatus(res.Status)}, nil
}
