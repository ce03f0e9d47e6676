package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	apiv1 "github.com/SanjoDeundiak/childproc/api/v1"
)

type outputReceiver interface {
	Recv() (*apiv1.GetOutputResponse, error)
}

// copyOutput writes every chunk of the stream to stdout or stderr, as
// captured on the server, until the stream ends.
func copyOutput(stream outputReceiver, stdout, stderr io.Writer) error {
	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		w := stdout
		switch msg.GetType() {
		case apiv1.OutputTypeStdout:
		case apiv1.OutputTypeStderr:
			w = stderr
		default:
			continue
		}
		if _, err := w.Write(msg.GetData()); err != nil {
			return err
		}
	}
}

func newLogsCmd(r *remote) *cobra.Command {
	return &cobra.Command{
		Use:   "logs <process_id>",
		Short: "Stream stdout and stderr of a process from the beginning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := r.call(cmd, 0, func(ctx context.Context, client apiv1.ProcessRunnerServiceClient) error {
				stream, err := client.GetOutput(ctx, &apiv1.GetOutputRequest{ProcessIdentifier: args[0]})
				if err != nil {
					return err
				}
				return copyOutput(stream, cmd.OutOrStdout(), cmd.ErrOrStderr())
			})
			return forbidden(cmd, err, "read its output")
		},
	}
}
