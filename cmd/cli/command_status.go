package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	apiv1 "github.com/SanjoDeundiak/childproc/api/v1"
)

func newStatusCmd(r *remote) *cobra.Command {
	return &cobra.Command{
		Use:   "status <process_id>",
		Short: "Show the state of a process started on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := r.call(cmd, 10*time.Second, func(ctx context.Context, client apiv1.ProcessRunnerServiceClient) error {
				resp, err := client.Status(ctx, &apiv1.StatusRequest{ProcessIdentifier: args[0]})
				if err != nil {
					return err
				}
				printStatusTable(cmd.OutOrStdout(), args[0], resp.GetStatus(), resp.GetProcess())
				return nil
			})
			return forbidden(cmd, err, "get its status")
		},
	}
}
