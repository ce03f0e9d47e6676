package main

import (
	apiv1 "github.com/SanjoDeundiak/childproc/api/v1"
	"github.com/SanjoDeundiak/childproc/pkg/lib/runner"
)

type ProcessRunnerServiceServer struct {
	apiv1.UnimplementedProcessRunnerServiceServer
	runner *runner.Runner
	owners *owners
}

func NewProcessRunnerServiceServer(opts ...runner.Option) (*ProcessRunnerServiceServer, error) {
	r, err := runner.NewRunner(opts...)
	if err != nil {
		return nil, err
	}

	return &ProcessRunnerServiceServer{
		runner: r,
		owners: newOwners(),
	}, nil
}

func (s *ProcessRunnerServiceServer) Close() error {
	return s.runner.Close()
}
