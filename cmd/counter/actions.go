package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/chaincounter/executor"
)

// withSession builds the core, connects, runs fn and prints its result.
func withSession(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app) (any, error)) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	return a.RunTask(cmd.Context(), func(ctx context.Context) error {
		if err := a.connect(ctx); err != nil {
			return err
		}
		out, err := fn(ctx, a)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	})
}

func statusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Connect and print the counter, owner and network status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, func(ctx context.Context, a *app) (any, error) {
				return a.sessions.Refresh(ctx), nil
			})
		},
	}
}

func actionCmd(opts *rootOptions, name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, err := executor.ParseKind(name)
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, a *app) (any, error) {
				return a.exec.Run(ctx, kind)
			})
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
