package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	apiv1 "github.com/SanjoDeundiak/childproc/api/v1"
)

func newStopCmd(r *remote) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <process_id>",
		Short: "Kill a process started on the server and wait for it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := r.call(cmd, 15*time.Second, func(ctx context.Context, client apiv1.ProcessRunnerServiceClient) error {
				resp, err := client.Stop(ctx, &apiv1.StopRequest{ProcessIdentifier: args[0]})
				if err != nil {
					return err
				}
				printStatusTable(cmd.OutOrStdout(), args[0], resp.GetStatus(), resp.GetProcess())
				return nil
			})
			return forbidden(cmd, err, "stop it")
		},
	}
}
