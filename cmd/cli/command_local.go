package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SanjoDeundiak/childproc/pkg/lib/child"
	"github.com/SanjoDeundiak/childproc/pkg/lib/cmdline"
	"github.com/SanjoDeundiak/childproc/pkg/lib/launch"
)

// exitError carries a child's exit code out of a local run.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func newRunCmd() *cobra.Command {
	var (
		dir     string
		env     []string
		clean   bool
		group   bool
		detach  bool
		timeout time.Duration
		stdin   string
		stdout  string
		stderr  string
	)
	cmd := &cobra.Command{
		Use:   "run [flags] -- <command> [args...]",
		Short: "Run a command locally without a server",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("command to execute is required; use -- to separate CLI flags from the command")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			b := launch.NewBuilder(args[0]).Args(args[1:]...)
			if dir != "" {
				b.Dir(dir)
			}
			if clean {
				b.Env(map[string]string{})
			}
			for _, kv := range env {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("invalid --env %q, want KEY=VALUE", kv)
				}
				b.SetEnv(k, v)
			}
			if group {
				b.Group()
			}
			for _, r := range []struct {
				path string
				set  func(launch.Redirect) *launch.Builder
			}{{stdin, b.Stdin}, {stdout, b.Stdout}, {stderr, b.Stderr}} {
				if r.path != "" {
					r.set(redirectFor(r.path))
				}
			}

			req, err := b.Build()
			if err != nil {
				return err
			}

			if detach {
				pid, err := child.Spawn(req)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), pid)
				return err
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			code, err := child.System(ctx, req)
			if err != nil {
				return err
			}
			if code != 0 {
				return &exitError{code: code}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "working directory of the command")
	cmd.Flags().StringArrayVarP(&env, "env", "e", nil, "set an environment variable (KEY=VALUE), repeatable")
	cmd.Flags().BoolVar(&clean, "clean-env", false, "start from an empty environment")
	cmd.Flags().BoolVar(&group, "group", false, "start the command in its own process group")
	cmd.Flags().BoolVar(&detach, "detach", false, "print the pid and leave the command running")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "kill the command after this long")
	cmd.Flags().StringVar(&stdin, "stdin", "", "read stdin from a file, or \"null\"")
	cmd.Flags().StringVar(&stdout, "stdout", "", "write stdout to a file, or \"null\"")
	cmd.Flags().StringVar(&stderr, "stderr", "", "write stderr to a file, or \"null\"")
	return cmd
}

func redirectFor(path string) launch.Redirect {
	if path == "null" {
		return launch.Discard()
	}
	return launch.File(path)
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <pid>",
		Short: "Print the arguments of a local process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid pid %q: %w", args[0], err)
			}
			argv, err := cmdline.Args(pid)
			if err != nil {
				return err
			}
			return printArgs(cmd.OutOrStdout(), argv)
		},
	}
	return cmd
}

// printArgs prints one argument per line, quoted so that empty arguments and
// whitespace stay visible.
func printArgs(w io.Writer, args []string) error {
	for i, a := range args {
		if _, err := fmt.Fprintf(w, "%d\t%s\n", i, strconv.Quote(a)); err != nil {
			return err
		}
	}
	return nil
}
