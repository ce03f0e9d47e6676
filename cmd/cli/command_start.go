package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apiv1 "github.com/SanjoDeundiak/childproc/api/v1"
)

func newStartCmd(r *remote) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "start [--quiet] -- <command> [args...]",
		Short: "Start a process on the server",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("command to execute is required; use -- to separate CLI flags from the command")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.call(cmd, 15*time.Second, func(ctx context.Context, client apiv1.ProcessRunnerServiceClient) error {
				resp, err := client.Start(ctx, &apiv1.StartRequest{Command: args[0], Args: args[1:]})
				if err != nil {
					return err
				}
				if quiet {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.GetProcessIdentifier())
					return err
				}
				printStatusTable(cmd.OutOrStdout(), resp.GetProcessIdentifier(), resp.GetStatus(),
					&apiv1.Process{Command: args[0], Args: args[1:]})
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the process identifier")
	return cmd
}
