package main

import (
	"context"

	apiv1 "github.com/SanjoDeundiak/childproc/api/v1"
	"github.com/SanjoDeundiak/childproc/pkg/lib"
)

func (s *ProcessRunnerServiceServer) Start(ctx context.Context, request *apiv1.StartRequest) (*apiv1.StartResponse, error) {
	client, ok := clientFrom(ctx)
	if !ok {
		return nil, errUnauthenticated
	}

	startResult, err := s.runner.Start(request.Command, request.Args...)
	if err != nil {
		lib.Logger().Info("start rejected", "client", client, "cmd", request.Command, "err", err)
		return nil, toStatus(err, "error starting process")
	}

	s.owners.set(startResult.ID, client)

	return &apiv1.StartResponse{
		ProcessIdentifier: startResult.ID,
		Status:            toAPIProcessStatus(startResult.Status),
	}, nil
}
