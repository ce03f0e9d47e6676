package main

import (
	"context"

	apiv1 "github.com/SanjoDeundiak/childproc/api/v1"
)

func (s *ProcessRunnerServiceServer) Status(ctx context.Context, request *apiv1.StatusRequest) (*apiv1.StatusResponse, error) {
	processIdentifier := request.ProcessIdentifier

	if err := s.owners.check(ctx, processIdentifier); err != nil {
		return nil, err
	}

	statusResult, err := s.runner.Status(processIdentifier)
	if err != nil {
		return nil, toStatus(err, "error getting status")
	}
	return &apiv1.StatusResponse{
		Process: toAPIProcess(statusResult.Command),
		Status:  toAPIProcessStatus(statusResult.Status),
	}, nil
}
