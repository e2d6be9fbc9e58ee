package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/chaincounter/api"
	"github.com/kbukum/chaincounter/component"
	"github.com/kbukum/chaincounter/logger"
	"github.com/kbukum/chaincounter/server"
	"github.com/kbukum/chaincounter/session"
	"github.com/kbukum/chaincounter/sse"
)

const eventsPath = "/api/events"

func serveCmd(opts *rootOptions) *cobra.Command {
	var autoConnect bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP bridge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}

			events := sse.NewComponent(eventsPath)
			srv := server.New(cfg.Server, a.log)
			srv.ApplyMiddleware()
			srv.RegisterDefaultEndpoints(cfg.Name, a.Components.HealthAll)

			handler := api.New(a.sessions, a.exec, events.Hub(), api.WithActionTimeout(cfg.Executor.ActionTimeout))
			handler.Register(srv.GinEngine().Group("/api"))
			unsubscribe := handler.ForwardNotifications()
			a.OnStop(func(context.Context) error {
				unsubscribe()
				return nil
			})

			for _, c := range []component.Component{
				events,
				session.NewRefresher(a.sessions, cfg.Executor.RefreshInterval),
				server.NewComponent(srv),
			} {
				if err := a.RegisterComponent(c); err != nil {
					return err
				}
			}

			if autoConnect {
				a.OnReady(func(ctx context.Context) error {
					if err := a.connect(ctx); err != nil {
						a.log.Warn("auto-connect failed", logger.ErrorFields("connect", err))
					}
					return nil
				})
			}
			return a.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&autoConnect, "connect", false, "connect to the wallet on startup")
	return cmd
}
