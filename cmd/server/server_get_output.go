package main

import (
	apiv1 "github.com/SanjoDeundiak/childproc/api/v1"
	"google.golang.org/grpc"
)

func (s *ProcessRunnerServiceServer) GetOutput(request *apiv1.GetOutputRequest, streaming grpc.ServerStreamingServer[apiv1.GetOutputResponse]) error {
	ctx := streaming.Context()
	if err := s.owners.check(ctx, request.ProcessIdentifier); err != nil {
		return err
	}

	stdout, stderr, err := s.runner.Output(ctx, request.ProcessIdentifier)
	if err != nil {
		return toStatus(err, "error subscribing to output")
	}

	for stdout != nil || stderr != nil {
		select {
		case <-ctx.Done():
			return nil
		case chunk, ok := <-stdout:
			if !ok {
				stdout = nil
				continue
			}
			if err := streaming.Send(&apiv1.GetOutputResponse{Type: apiv1.OutputTypeStdout, Data: chunk}); err != nil {
				return err
			}
		case chunk, ok := <-stderr:
			if !ok {
				stderr = nil
				continue
			}
			if err := streaming.Send(&apiv1.GetOutputResponse{Type: apiv1.OutputTypeStderr, Data: chunk}); err != nil {
				return err
			}
		}
	}
	return nil
}
