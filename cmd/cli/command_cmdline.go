package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	apiv1 "github.com/SanjoDeundiak/childproc/api/v1"
)

func newCmdlineCmd(r *remote) *cobra.Command {
	return &cobra.Command{
		Use:   "cmdline <pid>",
		Short: "Print the arguments of any process on the server host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := strconv.ParseInt(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid pid %q: %w", args[0], err)
			}
			return r.call(cmd, 10*time.Second, func(ctx context.Context, client apiv1.ProcessRunnerServiceClient) error {
				resp, err := client.Cmdline(ctx, &apiv1.CmdlineRequest{Pid: int32(pid)})
				if err != nil {
					return err
				}
				return printArgs(cmd.OutOrStdout(), resp.GetArgs())
			})
		},
	}
}
