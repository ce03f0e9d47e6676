package main

import (
	"context"

	apiv1 "github.com/SanjoDeundiak/childproc/api/v1"
	"github.com/SanjoDeundiak/childproc/pkg/lib/cmdline"
)

// Cmdline reads the argument vector of any process on the host. Any
// authenticated client may call it; ownership only applies to processes
// started through the service.
func (s *ProcessRunnerServiceServer) Cmdline(ctx context.Context, request *apiv1.CmdlineRequest) (*apiv1.CmdlineResponse, error) {
	if _, ok := clientFrom(ctx); !ok {
		return nil, errUnauthenticated
	}

	args, err := cmdline.Args(int(request.Pid))
	if err != nil {
		return nil, toStatus(err, "error reading command line")
	}
	return &apiv1.CmdlineResponse{Args: args}, nil
}
