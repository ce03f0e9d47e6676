package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
)

func NewRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "prn",
		Short:         "Process Runner CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			lib.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log library activity to stderr")

	r := newRemote(os.Getenv)
	root.PersistentFlags().StringVar(&r.address, "address", r.address, "server address (PRN_ADDRESS)")

	root.AddCommand(newStartCmd(r))
	root.AddCommand(newStatusCmd(r))
	root.AddCommand(newStopCmd(r))
	root.AddCommand(newLogsCmd(r))
	root.AddCommand(newCmdlineCmd(r))
	root.AddCommand(newRunCmd())
	root.AddCommand(newInspectCmd())

	return root
}
